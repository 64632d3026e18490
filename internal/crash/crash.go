// Package crash implements a rising multiplier that busts at a hidden point.
// Multipliers are integers in hundredths: 100 is 1.00x.
package crash

import (
	"fmt"
	"math"
	"time"

	"github.com/lox/wagerbot/internal/game"
)

const (
	// Start is the opening multiplier.
	Start = 100
	// Step is the increase per tick.
	Step = 1
	// MinPoint and MaxPoint bound the crash point.
	MinPoint = 1.02
	MaxPoint = 20.0
)

// capMargin is the number of spare ticks allowed past the highest crash point.
const capMargin = 100

type Config struct {
	Tick time.Duration
	// MaxDuration caps a round that is somehow still running. It is raised to
	// the time needed to climb to MaxPoint when set lower.
	MaxDuration time.Duration
}

func DefaultConfig() Config {
	return Config{Tick: 100 * time.Millisecond, MaxDuration: 200 * time.Second}
}

// Cap is the effective safety cap: MaxDuration, but never shorter than the
// ticks a round needs to reach MaxPoint plus a margin.
func (c Config) Cap() time.Duration {
	const ticks = (MaxPoint*100-Start)/Step + capMargin
	return max(c.MaxDuration, ticks*c.Tick)
}

// DrawPoint picks a crash point uniformly from (MinPoint, MaxPoint) and
// returns the first multiplier, in hundredths, at or above it.
func DrawPoint(rng game.RandSource) int64 {
	p := MinPoint + rng.Float64()*(MaxPoint-MinPoint)
	return int64(math.Ceil(p*100 - 1e-9))
}

// Game is one crash round.
type Game struct {
	game.Base

	cfg        Config
	multiplier int64
	point      int64
	cashedOut  bool
}

var _ game.Engine = (*Game)(nil)

func New(owner string, bet int64, rng game.RandSource, cfg Config) (*Game, error) {
	if rng == nil {
		panic("crash: rng is required")
	}
	return NewWithPoint(owner, bet, DrawPoint(rng), cfg)
}

// NewWithPoint starts a round with a known crash point, in hundredths.
func NewWithPoint(owner string, bet int64, point int64, cfg Config) (*Game, error) {
	base, err := game.NewBase(owner, bet)
	if err != nil {
		return nil, err
	}
	if point <= Start {
		return nil, fmt.Errorf("%w: crash point %s must exceed %s", game.ErrInvalidParams,
			game.FormatHundredths(point), game.FormatHundredths(Start))
	}
	return &Game{Base: base, cfg: cfg, multiplier: Start, point: point}, nil
}

func Factory(cfg Config) game.Factory {
	return func(owner string, bet int64, _ game.Params, rng game.RandSource) (game.Engine, error) {
		return New(owner, bet, rng, cfg)
	}
}

func (g *Game) Kind() game.Kind { return game.Crash }

// Multiplier returns the running multiplier in hundredths.
func (g *Game) Multiplier() int64 { return g.multiplier }

// Apply cashes out at the current multiplier. Only the bettor may cash out.
func (g *Game) Apply(m game.Move) error {
	if err := g.CheckMove(m); err != nil {
		return err
	}
	if m.Action != game.ActionCashOut {
		return game.ErrInvalidMove
	}
	g.cashedOut = true
	g.Pay(game.StatusWon, g.Bet()*g.multiplier/100)
	return nil
}

// Tick raises the multiplier and busts the round once it reaches the crash
// point.
func (g *Game) Tick() {
	if g.Terminal() {
		return
	}
	g.multiplier += Step
	if g.multiplier >= g.point {
		g.Pay(game.StatusLost, 0)
		return
	}
	g.Advance()
}

func (g *Game) Timeout() {
	if g.Terminal() {
		return
	}
	g.Pay(game.StatusTimedOut, 0)
}

func (g *Game) Schedule() game.Schedule {
	if g.Terminal() {
		return game.Schedule{}
	}
	return game.Schedule{Tick: g.cfg.Tick, Timeout: g.cfg.Cap()}
}

func (g *Game) Snapshot() game.Snapshot {
	s := g.Header(game.Crash)
	view := &game.CrashView{Multiplier: g.multiplier, CashedOut: g.cashedOut}
	if g.Terminal() {
		view.CrashPoint = g.point
	}
	s.Crash = view
	return s
}
