package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestParseOverridesDefaults(t *testing.T) {
	t.Parallel()

	src := `
ledger {
  backend = "sqlite"
  path    = "casino.db"
}

economy {
  start_coins        = 500
  daily_reward       = 0
  persist_on_balance = false
  max_bet            = 250
}

games {
  blackjack_move_timeout = "45s"
  crash_tick             = "50ms"
  slots_spins            = 5
}

server {
  address   = ":9000"
  log_level = "debug"
}
`
	cfg, err := Parse([]byte(src), "test.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, BackendSQLite, cfg.Ledger.Backend)
	assert.Equal(t, "casino.db", cfg.Ledger.Path)
	assert.Equal(t, int64(500), cfg.Economy.StartCoins)
	assert.Zero(t, cfg.Economy.DailyReward)
	assert.False(t, cfg.Economy.PersistOnBalance)
	assert.Equal(t, 10, cfg.Economy.LeaderboardSize)
	assert.Equal(t, int64(250), cfg.Economy.MaxBet)
	assert.Equal(t, 45*time.Second, cfg.Games.Blackjack.MoveTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Games.Blackjack.DealerDelay)
	assert.Equal(t, 50*time.Millisecond, cfg.Games.Crash.Tick)
	assert.Equal(t, 5, cfg.Games.Slots.Spins)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoadReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wagerbot.hcl")
	require.NoError(t, os.WriteFile(path, []byte("ledger {\n  backend = \"memory\"\n}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Ledger.Backend)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`games { crash_tick = "fast" }`), "bad.hcl")
	assert.ErrorContains(t, err, "games.crash_tick")

	_, err = Parse([]byte(`ledger {`), "broken.hcl")
	assert.ErrorContains(t, err, "failed to parse HCL file")

	_, err = Parse([]byte(`casino { open = true }`), "unknown.hcl")
	assert.ErrorContains(t, err, "failed to decode HCL")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Ledger.Backend = "csv" }, "unknown ledger backend"},
		{"file without path", func(c *Config) { c.Ledger.Path = "" }, "ledger.path is required"},
		{"redis without addr", func(c *Config) { c.Ledger.Backend = BackendRedis; c.Ledger.RedisAddr = "" }, "redis_addr"},
		{"negative start", func(c *Config) { c.Economy.StartCoins = -1 }, "start_coins"},
		{"empty leaderboard", func(c *Config) { c.Economy.LeaderboardSize = 0 }, "leaderboard_size"},
		{"zero tick", func(c *Config) { c.Games.Crash.Tick = 0 }, "crash_tick"},
		{"bad level", func(c *Config) { c.Server.LogLevel = "loud" }, "log_level"},
		{"two auth modes", func(c *Config) { c.Server.AuthToken = "x"; c.Server.AuthURL = "http://auth" }, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
