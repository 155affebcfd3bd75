package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/landlordd/internal/game"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServerConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", config.GetServerAddress())
	assert.Equal(t, time.Second, config.GetTickInterval())
	require.Len(t, config.Rooms, 1)
	assert.Equal(t, "main", config.Rooms[0].Name)
	require.NoError(t, config.Validate())
}

func TestLoadServerConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  address          = "0.0.0.0"
  port             = 9000
  log_level        = "debug"
  tick_interval_ms = 250
}

room "casual" {
  rounds   = 5
  bid_mode = "call"
}

room "high_stakes" {
  rounds              = 10
  bid_mode            = "score"
  max_call            = 3
  multiplier_cap      = 128
  entry_cost          = 20
  entry_kind          = "coin"
  dismiss_window_secs = 30
  idle_expiry_mins    = 5
}
`)

	config, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "0.0.0.0:9000", config.GetServerAddress())
	assert.Equal(t, 250*time.Millisecond, config.GetTickInterval())
	require.Len(t, config.Rooms, 2)

	opts := config.Rooms[1].RoomOptions()
	assert.Equal(t, 10, opts.RoundLimit)
	assert.Equal(t, game.BidModeScore, opts.BidMode)
	assert.Equal(t, 128, opts.MultiplierCap)
	assert.Equal(t, 20, opts.EntryCost)
	assert.Equal(t, "coin", opts.EntryKind)
	assert.Equal(t, 30*time.Second, opts.DismissWindow)
	assert.Equal(t, 5*time.Minute, opts.IdleExpiry)
}

func TestLoadServerConfigBadHCL(t *testing.T) {
	path := writeConfig(t, `server { address = `)
	_, err := LoadServerConfig(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"bad port", func(c *ServerConfig) { c.Server.Port = 70000 }},
		{"bad bid mode", func(c *ServerConfig) { c.Rooms[0].BidMode = "auction" }},
		{"negative rounds", func(c *ServerConfig) { c.Rooms[0].Rounds = -1 }},
		{"negative entry cost", func(c *ServerConfig) { c.Rooms[0].EntryCost = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultServerConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}
