package wager

import (
	"time"

	"github.com/coder/quartz"

	"github.com/lox/wagerbot/internal/metrics"
	"github.com/lox/wagerbot/internal/present"
	"github.com/lox/wagerbot/internal/randutil"
	"github.com/lox/wagerbot/internal/sessionid"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the clock that drives ticks, idle timeouts and settlement
// backoff.
func WithClock(clock quartz.Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// WithPresenter sets where session updates are sent.
func WithPresenter(p present.Presenter) Option {
	return func(c *Coordinator) { c.presenter = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithMaxBet rejects wagers above n. Zero means no limit.
func WithMaxBet(n int64) Option {
	return func(c *Coordinator) { c.maxBet = n }
}

// WithSeeder fixes the sequence of per-session seeds, making a run
// reproducible.
func WithSeeder(s *randutil.Seeder) Option {
	return func(c *Coordinator) { c.seeder = s }
}

// WithIDs sets the session id generator.
func WithIDs(g sessionid.Generator) Option {
	return func(c *Coordinator) { c.ids = g }
}

// WithSettleRetries bounds how often a failed settlement credit is retried.
// Retry k waits k*backoff on the coordinator's clock.
func WithSettleRetries(n int, backoff time.Duration) Option {
	return func(c *Coordinator) {
		c.settleRetries = n
		c.settleBackoff = backoff
	}
}

// WithFinishedLimit sets how many settled sessions stay addressable by id.
func WithFinishedLimit(n int) Option {
	return func(c *Coordinator) { c.finishedLimit = n }
}
