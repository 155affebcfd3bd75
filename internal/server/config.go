package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/landlordd/internal/game"
	"github.com/lox/landlordd/internal/room"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Rooms  []RoomConfig   `hcl:"room,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address      string `hcl:"address,optional"`
	Port         int    `hcl:"port,optional"`
	LogLevel     string `hcl:"log_level,optional"`
	LogFile      string `hcl:"log_file,optional"`
	TickInterval int    `hcl:"tick_interval_ms,optional"`
}

// RoomConfig defines a room opened at startup
type RoomConfig struct {
	Name          string `hcl:"name,label"`
	Rounds        int    `hcl:"rounds,optional"`
	BidMode       string `hcl:"bid_mode,optional"` // "call" or "score"
	MaxCall       int    `hcl:"max_call,optional"`
	LastChance    bool   `hcl:"last_chance,optional"`
	MultiplierCap int    `hcl:"multiplier_cap,optional"`
	EntryCost     int    `hcl:"entry_cost,optional"`
	EntryKind     string `hcl:"entry_kind,optional"`
	DismissSecs   int    `hcl:"dismiss_window_secs,optional"`
	IdleMins      int    `hcl:"idle_expiry_mins,optional"`
	Seed          int64  `hcl:"seed,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:      "localhost",
			Port:         8080,
			LogLevel:     "info",
			TickInterval: 1000,
		},
		Rooms: []RoomConfig{
			{
				Name:    "main",
				Rounds:  3,
				BidMode: "call",
			},
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.TickInterval == 0 {
		config.Server.TickInterval = 1000
	}
	for i := range config.Rooms {
		if config.Rooms[i].BidMode == "" {
			config.Rooms[i].BidMode = "call"
		}
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.TickInterval < 0 {
		return fmt.Errorf("tick interval must not be negative")
	}

	for _, rc := range c.Rooms {
		if rc.BidMode != "call" && rc.BidMode != "score" {
			return fmt.Errorf("room %s: invalid bid mode %q", rc.Name, rc.BidMode)
		}
		if rc.Rounds < 0 {
			return fmt.Errorf("room %s: rounds must not be negative", rc.Name)
		}
		if rc.EntryCost < 0 {
			return fmt.Errorf("room %s: entry cost must not be negative", rc.Name)
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetTickInterval returns the room tick cadence
func (c *ServerConfig) GetTickInterval() time.Duration {
	return time.Duration(c.Server.TickInterval) * time.Millisecond
}

// RoomOptions converts a room block to room options.
func (rc RoomConfig) RoomOptions() room.Options {
	opts := room.DefaultOptions()
	if rc.Rounds > 0 {
		opts.RoundLimit = rc.Rounds
	}
	if rc.BidMode == "score" {
		opts.BidMode = game.BidModeScore
	}
	if rc.MaxCall > 0 {
		opts.MaxCall = rc.MaxCall
	}
	opts.LastChance = rc.LastChance
	if rc.MultiplierCap > 0 {
		opts.MultiplierCap = rc.MultiplierCap
	}
	opts.EntryCost = rc.EntryCost
	if rc.EntryKind != "" {
		opts.EntryKind = rc.EntryKind
	}
	if rc.DismissSecs > 0 {
		opts.DismissWindow = time.Duration(rc.DismissSecs) * time.Second
	}
	if rc.IdleMins > 0 {
		opts.IdleExpiry = time.Duration(rc.IdleMins) * time.Minute
	}
	opts.Seed = rc.Seed
	return opts
}
