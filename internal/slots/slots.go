// Package slots implements a three-reel slot machine.
package slots

import (
	"time"

	"github.com/lox/wagerbot/internal/game"
)

// Symbols are the reel faces, drawn uniformly.
var Symbols = []string{"🍒", "🍋", "🔔", "💎", "7️⃣"}

// Reels is one draw.
type Reels [3]string

// Draw spins all three reels.
func Draw(rng game.RandSource) Reels {
	var r Reels
	for i := range r {
		r[i] = Symbols[rng.IntN(len(Symbols))]
	}
	return r
}

// Net returns the win for a final draw: five times the bet for three of a
// kind, one and a half times (floored) for a pair, minus the bet otherwise.
func Net(r Reels, bet int64) int64 {
	switch {
	case r[0] == r[1] && r[1] == r[2]:
		return 5 * bet
	case r[0] == r[1] || r[1] == r[2] || r[0] == r[2]:
		return bet * 3 / 2
	}
	return -bet
}

type Config struct {
	// Spins is the number of cosmetic spins before the scored draw.
	Spins int
	// SpinDelay paces every spin.
	SpinDelay time.Duration
}

func DefaultConfig() Config {
	return Config{Spins: 3, SpinDelay: 500 * time.Millisecond}
}

// Game is one pull of the lever.
type Game struct {
	game.Base

	cfg   Config
	rng   game.RandSource
	reels Reels
	spin  int
}

var _ game.Engine = (*Game)(nil)

func New(owner string, bet int64, rng game.RandSource, cfg Config) (*Game, error) {
	base, err := game.NewBase(owner, bet)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		panic("slots: rng is required")
	}
	return &Game{Base: base, cfg: cfg, rng: rng}, nil
}

func Factory(cfg Config) game.Factory {
	return func(owner string, bet int64, _ game.Params, rng game.RandSource) (game.Engine, error) {
		return New(owner, bet, rng, cfg)
	}
}

func (g *Game) Kind() game.Kind { return game.Slots }

func (g *Game) Apply(m game.Move) error {
	if err := g.CheckMove(m); err != nil {
		return err
	}
	return game.ErrInvalidMove
}

// Tick shows a cosmetic spin, or scores the final one.
func (g *Game) Tick() {
	if g.Terminal() {
		return
	}
	g.reels = Draw(g.rng)
	g.spin++
	if g.spin <= g.cfg.Spins {
		g.Advance()
		return
	}

	net := Net(g.reels, g.Bet())
	if net > 0 {
		g.Pay(game.StatusWon, g.Bet()+net)
		return
	}
	g.Pay(game.StatusLost, 0)
}

func (g *Game) Timeout() {}

func (g *Game) Schedule() game.Schedule {
	if g.Terminal() {
		return game.Schedule{}
	}
	return game.Schedule{Tick: g.cfg.SpinDelay}
}

func (g *Game) Snapshot() game.Snapshot {
	s := g.Header(game.Slots)
	view := &game.SlotsView{Spin: g.spin, Spins: g.cfg.Spins + 1}
	if g.spin > 0 {
		view.Reels = g.reels[:]
	}
	s.Slots = view
	return s
}
