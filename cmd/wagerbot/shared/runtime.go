// Package shared wires the wagering core together for the CLI commands.
package shared

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/wagerbot/internal/command"
	"github.com/lox/wagerbot/internal/config"
	"github.com/lox/wagerbot/internal/ledger"
	"github.com/lox/wagerbot/internal/ledger/redisstore"
	"github.com/lox/wagerbot/internal/ledger/sqlstore"
	"github.com/lox/wagerbot/internal/metrics"
	"github.com/lox/wagerbot/internal/present"
	"github.com/lox/wagerbot/internal/wager"
)

// OpenStore opens the configured ledger backend.
func OpenStore(ctx context.Context, cfg config.Ledger, logger *log.Logger) (ledger.Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return ledger.OpenFileStore(cfg.Path, logger)
	case config.BackendSQLite:
		return sqlstore.Open(cfg.Path)
	case config.BackendRedis:
		prefix := cfg.RedisPrefix
		if prefix != "" && !strings.HasSuffix(prefix, ":") {
			prefix += ":"
		}
		return redisstore.Open(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   prefix,
		})
	case config.BackendMemory:
		return ledger.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}

// Runtime is a ledger, a coordinator and a dispatcher built from one config.
type Runtime struct {
	Ledger      *ledger.Ledger
	Coordinator *wager.Coordinator
	Dispatcher  *command.Dispatcher
}

// Open builds a Runtime. Session updates go to presenter; metrics may be nil.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger, presenter present.Presenter, m *metrics.Metrics) (*Runtime, error) {
	store, err := OpenStore(ctx, cfg.Ledger, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s ledger: %w", cfg.Ledger.Backend, err)
	}
	logger.Debug("Ledger opened", "backend", cfg.Ledger.Backend, "path", cfg.Ledger.Path)

	l := ledger.New(store, logger,
		ledger.WithStartCoins(cfg.Economy.StartCoins),
		ledger.WithDailyReward(cfg.Economy.DailyReward),
		ledger.WithConflictHook(m.LedgerConflict),
	)
	clock := quartz.NewReal()
	coord := wager.New(l, cfg.Games.Factories(), logger,
		wager.WithClock(clock),
		wager.WithPresenter(presenter),
		wager.WithMetrics(m),
		wager.WithMaxBet(cfg.Economy.MaxBet),
	)
	d := command.New(coord, l, clock, logger, command.Config{
		LeaderboardSize:  cfg.Economy.LeaderboardSize,
		PersistOnBalance: cfg.Economy.PersistOnBalance,
	})
	return &Runtime{Ledger: l, Coordinator: coord, Dispatcher: d}, nil
}

// Close refunds running sessions and then closes the ledger.
func (r *Runtime) Close() error {
	if err := r.Coordinator.Close(); err != nil {
		return err
	}
	return r.Ledger.Close()
}
