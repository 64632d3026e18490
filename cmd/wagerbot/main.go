package main

import (
	"errors"
	"io"
	"io/fs"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/lox/wagerbot/cmd/wagerbot/shared"
	"github.com/lox/wagerbot/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"${config_file}" env:"WAGERBOT_CONFIG" help:"HCL config file"`
	LogLevel string `env:"WAGERBOT_LOG_LEVEL" help:"Override the configured log level (debug, info, warn, error)"`
}

// load reads the config file and builds a logger writing to w.
func (g *Globals) load(w io.Writer) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := shared.SetupLogger(w, cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

type CLI struct {
	Globals

	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Play        PlayCmd          `cmd:"" help:"Chat with the bot in a terminal console"`
	Serve       ServeCmd         `cmd:"" help:"Run the websocket bridge for chat adapters"`
	Simulate    SimulateCmd      `cmd:"" help:"Estimate the return to player of every game"`
	Balance     BalanceCmd       `cmd:"" help:"Show a user's balance"`
	Daily       DailyCmd         `cmd:"" help:"Claim a user's daily reward"`
	Leaderboard LeaderboardCmd   `cmd:"" help:"Show the richest users"`
}

func main() {
	// A missing .env is normal; anything else is worth reporting.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("Failed to load .env", "error", err)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("wagerbot"),
		kong.Description("Chat-bot casino: coin ledger, wagering coordinator and games"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_file": config.DefaultFile,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
