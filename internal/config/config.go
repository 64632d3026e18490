// Package config loads wagerbot settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/wagerbot/internal/wager"
)

// Ledger backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultFile is read when no --config flag is given.
const DefaultFile = "wagerbot.hcl"

type Config struct {
	Ledger  Ledger
	Economy Economy
	Games   wager.Games
	Server  Server
}

type Ledger struct {
	Backend string
	// Path is the JSON file or SQLite database.
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type Economy struct {
	StartCoins       int64
	DailyReward      int64
	LeaderboardSize  int
	PersistOnBalance bool
	// MaxBet caps a single wager, zero for no cap.
	MaxBet int64
}

type Server struct {
	Address  string
	LogLevel string
	// AuthToken is a shared token bridge adapters must present.
	AuthToken string
	// AuthURL validates adapter tokens against an external service instead.
	AuthURL    string
	AuthSecret string
}

func Default() *Config {
	return &Config{
		Ledger: Ledger{
			Backend:     BackendFile,
			Path:        "economy.json",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "wagerbot",
		},
		Economy: Economy{
			StartCoins:       1000,
			DailyReward:      100,
			LeaderboardSize:  10,
			PersistOnBalance: true,
		},
		Games: wager.DefaultGames(),
		Server: Server{
			Address:  "localhost:8080",
			LogLevel: "info",
		},
	}
}

type fileConfig struct {
	Ledger  *ledgerBlock  `hcl:"ledger,block"`
	Economy *economyBlock `hcl:"economy,block"`
	Games   *gamesBlock   `hcl:"games,block"`
	Server  *serverBlock  `hcl:"server,block"`
}

type ledgerBlock struct {
	Backend       string `hcl:"backend,optional"`
	Path          string `hcl:"path,optional"`
	RedisAddr     string `hcl:"redis_addr,optional"`
	RedisPassword string `hcl:"redis_password,optional"`
	RedisDB       int    `hcl:"redis_db,optional"`
	RedisPrefix   string `hcl:"redis_prefix,optional"`
}

type economyBlock struct {
	StartCoins       *int64 `hcl:"start_coins,optional"`
	DailyReward      *int64 `hcl:"daily_reward,optional"`
	LeaderboardSize  int    `hcl:"leaderboard_size,optional"`
	PersistOnBalance *bool  `hcl:"persist_on_balance,optional"`
	MaxBet           int64  `hcl:"max_bet,optional"`
}

type gamesBlock struct {
	BlackjackMoveTimeout  string `hcl:"blackjack_move_timeout,optional"`
	DealerDrawDelay       string `hcl:"dealer_draw_delay,optional"`
	MinesTimeout          string `hcl:"mines_timeout,optional"`
	CoinflipAcceptTimeout string `hcl:"coinflip_accept_timeout,optional"`
	CoinflipFlipDelay     string `hcl:"coinflip_flip_delay,optional"`
	CrashTick             string `hcl:"crash_tick,optional"`
	CrashMaxDuration      string `hcl:"crash_max_duration,optional"`
	SlotsSpins            int    `hcl:"slots_spins,optional"`
	SlotsSpinDelay        string `hcl:"slots_spin_delay,optional"`
	RouletteFrameBase     string `hcl:"roulette_frame_base,optional"`
	RouletteFrameStep     string `hcl:"roulette_frame_step,optional"`
}

type serverBlock struct {
	Address    string `hcl:"address,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	AuthToken  string `hcl:"auth_token,optional"`
	AuthURL    string `hcl:"auth_url,optional"`
	AuthSecret string `hcl:"auth_secret,optional"`
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source over the defaults.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if b := fc.Ledger; b != nil {
		setString(&cfg.Ledger.Backend, b.Backend)
		setString(&cfg.Ledger.Path, b.Path)
		setString(&cfg.Ledger.RedisAddr, b.RedisAddr)
		setString(&cfg.Ledger.RedisPassword, b.RedisPassword)
		setString(&cfg.Ledger.RedisPrefix, b.RedisPrefix)
		cfg.Ledger.RedisDB = b.RedisDB
	}
	if b := fc.Economy; b != nil {
		if b.StartCoins != nil {
			cfg.Economy.StartCoins = *b.StartCoins
		}
		if b.DailyReward != nil {
			cfg.Economy.DailyReward = *b.DailyReward
		}
		if b.LeaderboardSize != 0 {
			cfg.Economy.LeaderboardSize = b.LeaderboardSize
		}
		if b.PersistOnBalance != nil {
			cfg.Economy.PersistOnBalance = *b.PersistOnBalance
		}
		cfg.Economy.MaxBet = b.MaxBet
	}
	if b := fc.Games; b != nil {
		if err := b.apply(&cfg.Games); err != nil {
			return nil, err
		}
	}
	if b := fc.Server; b != nil {
		setString(&cfg.Server.Address, b.Address)
		setString(&cfg.Server.LogLevel, b.LogLevel)
		setString(&cfg.Server.AuthToken, b.AuthToken)
		setString(&cfg.Server.AuthURL, b.AuthURL)
		setString(&cfg.Server.AuthSecret, b.AuthSecret)
	}
	return cfg, nil
}

func (b *gamesBlock) apply(g *wager.Games) error {
	durations := []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"blackjack_move_timeout", b.BlackjackMoveTimeout, &g.Blackjack.MoveTimeout},
		{"dealer_draw_delay", b.DealerDrawDelay, &g.Blackjack.DealerDelay},
		{"mines_timeout", b.MinesTimeout, &g.Mines.Timeout},
		{"coinflip_accept_timeout", b.CoinflipAcceptTimeout, &g.Coinflip.AcceptWindow},
		{"coinflip_flip_delay", b.CoinflipFlipDelay, &g.Coinflip.FlipDelay},
		{"crash_tick", b.CrashTick, &g.Crash.Tick},
		{"crash_max_duration", b.CrashMaxDuration, &g.Crash.MaxDuration},
		{"slots_spin_delay", b.SlotsSpinDelay, &g.Slots.SpinDelay},
		{"roulette_frame_base", b.RouletteFrameBase, &g.Roulette.FrameBase},
		{"roulette_frame_step", b.RouletteFrameStep, &g.Roulette.FrameStep},
	}
	for _, d := range durations {
		if d.src == "" {
			continue
		}
		v, err := time.ParseDuration(d.src)
		if err != nil {
			return fmt.Errorf("games.%s: %w", d.name, err)
		}
		*d.dst = v
	}
	if b.SlotsSpins != 0 {
		g.Slots.Spins = b.SlotsSpins
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate rejects settings the bot cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Ledger.Backend {
	case BackendFile, BackendSQLite:
		if c.Ledger.Path == "" {
			errs = append(errs, fmt.Errorf("ledger.path is required for the %s backend", c.Ledger.Backend))
		}
	case BackendRedis:
		if c.Ledger.RedisAddr == "" {
			errs = append(errs, errors.New("ledger.redis_addr is required for the redis backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend))
	}

	if c.Economy.StartCoins < 0 {
		errs = append(errs, fmt.Errorf("economy.start_coins must not be negative: %d", c.Economy.StartCoins))
	}
	if c.Economy.DailyReward < 0 {
		errs = append(errs, fmt.Errorf("economy.daily_reward must not be negative: %d", c.Economy.DailyReward))
	}
	if c.Economy.LeaderboardSize < 1 {
		errs = append(errs, fmt.Errorf("economy.leaderboard_size must be positive: %d", c.Economy.LeaderboardSize))
	}
	if c.Economy.MaxBet < 0 {
		errs = append(errs, fmt.Errorf("economy.max_bet must not be negative: %d", c.Economy.MaxBet))
	}

	g := c.Games
	for name, d := range map[string]time.Duration{
		"blackjack_move_timeout":  g.Blackjack.MoveTimeout,
		"dealer_draw_delay":       g.Blackjack.DealerDelay,
		"mines_timeout":           g.Mines.Timeout,
		"coinflip_accept_timeout": g.Coinflip.AcceptWindow,
		"coinflip_flip_delay":     g.Coinflip.FlipDelay,
		"crash_tick":              g.Crash.Tick,
		"crash_max_duration":      g.Crash.MaxDuration,
		"slots_spin_delay":        g.Slots.SpinDelay,
		"roulette_frame_base":     g.Roulette.FrameBase,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("games.%s must be positive: %s", name, d))
		}
	}
	if g.Roulette.FrameStep < 0 {
		errs = append(errs, fmt.Errorf("games.roulette_frame_step must not be negative: %s", g.Roulette.FrameStep))
	}
	if g.Slots.Spins < 0 {
		errs = append(errs, fmt.Errorf("games.slots_spins must not be negative: %d", g.Slots.Spins))
	}

	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("server.log_level: %w", err))
	}
	if c.Server.AuthToken != "" && c.Server.AuthURL != "" {
		errs = append(errs, errors.New("server.auth_token and server.auth_url are mutually exclusive"))
	}
	return errors.Join(errs...)
}
