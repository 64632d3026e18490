// Package roulette implements a single-zero color wheel: 36 alternating red
// and black pockets with one green pocket dropped in at a random position.
package roulette

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/wagerbot/internal/game"
)

const (
	// Pockets on the wheel.
	Pockets = 37
	// WindowSize is the number of pockets visible in one animation frame.
	WindowSize = 9
	// Pointer is the window index the ball lands under.
	Pointer = 4
	// MinFrames is the fixed part of every spin.
	MinFrames = 20
)

// Color is a pocket color and a bettable choice.
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
	Green Color = "green"
)

// ParseColor accepts red, black or green in any case.
func ParseColor(s string) (Color, error) {
	switch c := Color(strings.ToLower(strings.TrimSpace(s))); c {
	case Red, Black, Green:
		return c, nil
	}
	return "", fmt.Errorf("%w: choose red, black or green, not %q", game.ErrInvalidParams, s)
}

// Multiplier is the net win multiple for a correct call.
func (c Color) Multiplier() int64 {
	if c == Green {
		return 14
	}
	return 2
}

// Wheel is the pocket sequence, index 0 at the top of the first frame.
type Wheel []Color

// NewWheel lays out 36 alternating pockets starting with red and inserts the
// green pocket at a uniformly random position.
func NewWheel(rng game.RandSource) Wheel {
	w := make(Wheel, 0, Pockets)
	for i := 0; i < Pockets-1; i++ {
		if i%2 == 0 {
			w = append(w, Red)
		} else {
			w = append(w, Black)
		}
	}
	at := rng.IntN(Pockets)
	w = append(w, "")
	copy(w[at+1:], w[at:])
	w[at] = Green
	return w
}

// Window returns the visible pockets after rotating by offset.
func (w Wheel) Window(offset int) []Color {
	out := make([]Color, WindowSize)
	for i := range out {
		out[i] = w[(offset+i)%len(w)]
	}
	return out
}

// Config controls frame pacing. Frame i waits FrameBase + i*FrameStep.
type Config struct {
	FrameBase time.Duration
	FrameStep time.Duration
}

func DefaultConfig() Config {
	return Config{FrameBase: 50 * time.Millisecond, FrameStep: 30 * time.Millisecond}
}

// Game is one spin.
type Game struct {
	game.Base

	cfg    Config
	rng    game.RandSource
	choice Color
	wheel  Wheel
	frame  int
	frames int
	result Color
	number int
}

var _ game.Engine = (*Game)(nil)

// New validates the choice, builds the wheel and picks the spin length. The
// spin runs MinFrames plus a uniform extra 0..36 frames, so every pocket is
// equally likely to end under the pointer.
func New(owner string, bet int64, choice string, rng game.RandSource, cfg Config) (*Game, error) {
	base, err := game.NewBase(owner, bet)
	if err != nil {
		return nil, err
	}
	c, err := ParseColor(choice)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		panic("roulette: rng is required")
	}

	g := &Game{Base: base, cfg: cfg, rng: rng, choice: c}
	g.wheel = NewWheel(rng)
	g.frames = MinFrames + rng.IntN(Pockets)
	return g, nil
}

func Factory(cfg Config) game.Factory {
	return func(owner string, bet int64, p game.Params, rng game.RandSource) (game.Engine, error) {
		return New(owner, bet, p.Choice, rng, cfg)
	}
}

func (g *Game) Kind() game.Kind { return game.Roulette }

// Apply rejects all input; the wheel runs on its own.
func (g *Game) Apply(m game.Move) error {
	if err := g.CheckMove(m); err != nil {
		return err
	}
	return game.ErrInvalidMove
}

// Tick rotates the wheel one pocket and settles after the last frame.
func (g *Game) Tick() {
	if g.Terminal() {
		return
	}
	g.frame++
	g.Advance()
	if g.frame < g.frames {
		return
	}

	g.result = g.wheel[(g.frame+Pointer)%Pockets]
	if g.result != Green {
		// The display number is not tied to the pocket.
		g.number = 1 + g.rng.IntN(36)
	}
	if g.result == g.choice {
		g.Pay(game.StatusWon, g.Bet()*(1+g.result.Multiplier()))
		return
	}
	g.Pay(game.StatusLost, 0)
}

// Timeout is a no-op; a spin never waits on the player.
func (g *Game) Timeout() {}

func (g *Game) Schedule() game.Schedule {
	if g.Terminal() {
		return game.Schedule{}
	}
	return game.Schedule{Tick: g.cfg.FrameBase + time.Duration(g.frame)*g.cfg.FrameStep}
}

func (g *Game) Snapshot() game.Snapshot {
	s := g.Header(game.Roulette)
	window := g.wheel.Window(g.frame)
	colors := make([]string, len(window))
	for i, c := range window {
		colors[i] = string(c)
	}
	s.Roulette = &game.RouletteView{
		Choice:       string(g.choice),
		Window:       colors,
		PointerIndex: Pointer,
		Frame:        g.frame,
		Frames:       g.frames,
		Result:       string(g.result),
		Number:       g.number,
	}
	return s
}
