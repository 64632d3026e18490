package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/lox/wagerbot/cmd/wagerbot/shared"
	"github.com/lox/wagerbot/internal/auth"
	"github.com/lox/wagerbot/internal/bridge"
	"github.com/lox/wagerbot/internal/config"
	"github.com/lox/wagerbot/internal/metrics"
	"github.com/lox/wagerbot/internal/present"
)

type ServeCmd struct {
	Addr      string `env:"WAGERBOT_ADDR" help:"Override the configured listen address"`
	AuthToken string `env:"WAGERBOT_AUTH_TOKEN" help:"Shared token adapters must present"`
}

func validator(cfg config.Server) auth.Validator {
	switch {
	case cfg.AuthURL != "":
		return auth.NewHTTPValidator(cfg.AuthURL, cfg.AuthSecret)
	case cfg.AuthToken != "":
		return auth.NewStaticValidator(cfg.AuthToken, "adapter")
	default:
		return auth.NewNoopValidator()
	}
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, logger, err := g.load(os.Stderr)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.AuthToken != "" {
		cfg.Server.AuthToken = c.AuthToken
		cfg.Server.AuthURL = ""
	}
	ctx := shared.SetupSignalHandler(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	presenters := present.NewMulti(present.NewLogger(logger))
	rt, err := shared.Open(ctx, cfg, logger, presenters, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("Failed to close runtime", "error", err)
		}
	}()

	srv := bridge.NewServer(bridge.Options{
		Handler:   rt.Dispatcher,
		Metrics:   m,
		Gatherer:  reg,
		Logger:    logger,
		Validator: validator(cfg.Server),
	})
	presenters.Add(srv)

	logger.Info("Starting wagerbot bridge",
		"address", cfg.Server.Address,
		"ledger", cfg.Ledger.Backend,
		"start_coins", cfg.Economy.StartCoins,
		"daily_reward", cfg.Economy.DailyReward,
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Server.Address)
	})
	return eg.Wait()
}
