// Package mines implements a 5x5 minefield where each safe reveal raises a
// fair-odds payout multiplier.
//
// After k safe reveals with m mines the multiplier is the product over
// i < k of (25-i)/(25-m-i), the inverse of the probability of surviving k
// draws without replacement. It is kept as an exact fraction so cashing out
// pays floor(bet * multiplier) with no rounding drift.
package mines

import (
	"fmt"
	"math/big"
	"time"

	"github.com/lox/wagerbot/internal/game"
)

const (
	// Size is the grid width and height.
	Size = 5
	// Tiles on the grid.
	Tiles = Size * Size
)

type Config struct {
	// Timeout ends the game if it is still running this long after it
	// started. Reveals do not extend it.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{Timeout: 120 * time.Second}
}

// Field is the hidden mine layout.
type Field [Tiles]bool

// NewField places count mines uniformly without replacement.
func NewField(count int, rng game.RandSource) Field {
	var f Field
	idx := make([]int, Tiles)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < count; i++ {
		j := i + rng.IntN(Tiles-i)
		idx[i], idx[j] = idx[j], idx[i]
		f[idx[i]] = true
	}
	return f
}

// Game is one minefield.
type Game struct {
	game.Base

	cfg         Config
	field       Field
	count       int
	revealed    [Tiles]bool
	exploded    int
	safeReveals int
	multiplier  *big.Rat
}

var _ game.Engine = (*Game)(nil)

// New validates 0 < count < 25 and lays the field.
func New(owner string, bet int64, count int, rng game.RandSource, cfg Config) (*Game, error) {
	base, err := game.NewBase(owner, bet)
	if err != nil {
		return nil, err
	}
	if count <= 0 || count >= Tiles {
		return nil, fmt.Errorf("%w: mines must be between 1 and %d, got %d", game.ErrInvalidParams, Tiles-1, count)
	}
	if rng == nil {
		panic("mines: rng is required")
	}
	return &Game{
		Base:       base,
		cfg:        cfg,
		field:      NewField(count, rng),
		count:      count,
		exploded:   -1,
		multiplier: big.NewRat(1, 1),
	}, nil
}

func Factory(cfg Config) game.Factory {
	return func(owner string, bet int64, p game.Params, rng game.RandSource) (game.Engine, error) {
		return New(owner, bet, p.Mines, rng, cfg)
	}
}

func (g *Game) Kind() game.Kind { return game.Mines }

// Multiplier returns a copy of the current exact multiplier.
func (g *Game) Multiplier() *big.Rat { return new(big.Rat).Set(g.multiplier) }

// CashOutValue is floor(bet * multiplier).
func (g *Game) CashOutValue() int64 {
	n := new(big.Int).Mul(big.NewInt(g.Bet()), g.multiplier.Num())
	n.Quo(n, g.multiplier.Denom())
	return n.Int64()
}

func (g *Game) Apply(m game.Move) error {
	if err := g.CheckMove(m); err != nil {
		return err
	}
	switch m.Action {
	case game.ActionReveal:
		return g.reveal(m.Cell)
	case game.ActionCashOut:
		g.Pay(game.StatusWon, g.CashOutValue())
		return nil
	}
	return game.ErrInvalidMove
}

func (g *Game) reveal(cell int) error {
	if cell < 0 || cell >= Tiles || g.revealed[cell] {
		return game.ErrInvalidMove
	}
	g.revealed[cell] = true

	if g.field[cell] {
		g.exploded = cell
		g.Pay(game.StatusLost, 0)
		return nil
	}

	tilesLeft := int64(Tiles - g.safeReveals)
	safeLeft := int64(Tiles - g.count - g.safeReveals)
	g.multiplier.Mul(g.multiplier, big.NewRat(tilesLeft, safeLeft))
	g.safeReveals++
	g.Advance()

	if g.safeReveals == Tiles-g.count {
		g.Pay(game.StatusWon, g.CashOutValue())
	}
	return nil
}

func (g *Game) Tick() {}

// Timeout ends the game without a payout.
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
	return game.Schedule{Timeout: g.cfg.Timeout}
}

// Snapshot discloses every mine once the game is over; until then only
// revealed cells are shown.
func (g *Game) Snapshot() game.Snapshot {
	s := g.Header(game.Mines)
	cells := make([]game.Cell, Tiles)
	over := g.Terminal()
	for i := range cells {
		switch {
		case i == g.exploded:
			cells[i] = game.CellExploded
		case g.revealed[i]:
			cells[i] = game.CellSafe
		case over && g.field[i]:
			cells[i] = game.CellMine
		case over:
			cells[i] = game.CellDisabled
		default:
			cells[i] = game.CellHidden
		}
	}
	mult, _ := g.multiplier.Float64()
	s.Mines = &game.MinesView{
		Cells:       cells,
		Mines:       g.count,
		SafeReveals: g.safeReveals,
		Multiplier:  mult,
		CashOut:     g.CashOutValue(),
	}
	return s
}

// CellIndex converts 1-based x, y coordinates into a cell index.
func CellIndex(x, y int) (int, error) {
	if x < 1 || x > Size || y < 1 || y > Size {
		return 0, fmt.Errorf("%w: coordinates must be 1-%d", game.ErrInvalidMove, Size)
	}
	return (y-1)*Size + (x - 1), nil
}
