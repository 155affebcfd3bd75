package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/landlordd/internal/room"
	"github.com/lox/landlordd/internal/server"
)

var CLI struct {
	Config   string `short:"c" default:"landlordd.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     int64  `short:"s" help:"Deck shuffle seed for all configured rooms (overrides config)"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Seed != 0 {
		for i := range cfg.Rooms {
			cfg.Rooms[i].Seed = CLI.Seed
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	// Setup logging
	logWriter := os.Stderr
	if cfg.Server.LogFile != "" {
		f, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Printf("Error opening log file: %v\n", err)
			ctx.Exit(1)
		}
		defer f.Close()
		logWriter = f
	}

	logger := log.New(logWriter)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.Info("Starting landlord server",
		"addr", cfg.GetServerAddress(),
		"rooms", len(cfg.Rooms))

	wsServer := server.NewServer(cfg.GetServerAddress(), logger)
	manager := room.NewManager(logger, nil, wsServer, nil, nil)
	wsServer.SetManager(manager)

	// Open rooms from configuration
	for _, roomConfig := range cfg.Rooms {
		r, err := manager.OpenRoom(roomConfig.RoomOptions())
		if err != nil {
			logger.Error("Failed to open room", "error", err, "name", roomConfig.Name)
			ctx.Exit(1)
		}
		logger.Info("Opened room",
			"id", r.ID(),
			"name", roomConfig.Name,
			"rounds", roomConfig.Rounds,
			"bidMode", roomConfig.BidMode)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("Shutting down server...")
		cancel()
		_ = wsServer.Stop()
		os.Exit(0)
	}()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		return manager.Run(groupCtx, cfg.GetTickInterval())
	})
	group.Go(func() error {
		return wsServer.Start()
	})

	if err := group.Wait(); err != nil && groupCtx.Err() == nil {
		logger.Error("Server failed", "error", err)
		ctx.Exit(1)
	}
}
