// Package coinflip implements an open duel: a challenger posts a bet, the
// first other player to accept matches it, and a fair coin decides who takes
// both stakes.
package coinflip

import (
	"fmt"
	"time"

	"github.com/lox/wagerbot/internal/game"
)

var (
	ErrOwnChallenge    = fmt.Errorf("%w: you can't accept your own challenge", game.ErrInvalidMove)
	ErrAlreadyAccepted = fmt.Errorf("%w: someone already accepted this challenge", game.ErrInvalidMove)
)

const (
	Heads = "Heads"
	Tails = "Tails"
)

// Frames are shown while the coin is in the air.
var Frames = []string{"Heads...", "Tails...", "Heads...", "Tails...", "Settling..."}

type Config struct {
	// AcceptWindow is how long the challenge stays open.
	AcceptWindow time.Duration
	// FlipDelay paces each animation frame.
	FlipDelay time.Duration
}

func DefaultConfig() Config {
	return Config{AcceptWindow: 60 * time.Second, FlipDelay: 500 * time.Millisecond}
}

// Game is one duel. The challenger is the session owner.
type Game struct {
	game.Base

	cfg      Config
	rng      game.RandSource
	acceptor string
	sides    map[string]string
	frame    int
	result   string
	winner   string
}

var (
	_ game.Engine = (*Game)(nil)
	_ game.Staker = (*Game)(nil)
)

func New(challenger string, bet int64, rng game.RandSource, cfg Config) (*Game, error) {
	base, err := game.NewBase(challenger, bet)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		panic("coinflip: rng is required")
	}
	return &Game{Base: base, cfg: cfg, rng: rng}, nil
}

func Factory(cfg Config) game.Factory {
	return func(owner string, bet int64, _ game.Params, rng game.RandSource) (game.Engine, error) {
		return New(owner, bet, rng, cfg)
	}
}

func (g *Game) Kind() game.Kind { return game.Coinflip }

// Acceptor returns the matched opponent, if any.
func (g *Game) Acceptor() string { return g.acceptor }

func (g *Game) check(m game.Move) error {
	if g.Terminal() {
		return game.ErrSessionTerminal
	}
	if m.Action != game.ActionAccept {
		return game.ErrInvalidMove
	}
	if g.acceptor != "" {
		return ErrAlreadyAccepted
	}
	if m.Player == "" || m.Player == g.Owner() {
		return ErrOwnChallenge
	}
	return nil
}

// Stake reports that an acceptance puts the bet at risk for the acceptor.
func (g *Game) Stake(m game.Move) (int64, error) {
	if err := g.check(m); err != nil {
		return 0, err
	}
	return g.Bet(), nil
}

// Apply accepts the challenge and assigns sides at random.
func (g *Game) Apply(m game.Move) error {
	if err := g.check(m); err != nil {
		return err
	}
	g.acceptor = m.Player
	first, second := Heads, Tails
	if g.rng.IntN(2) == 1 {
		first, second = Tails, Heads
	}
	g.sides = map[string]string{g.Owner(): first, g.acceptor: second}
	g.Advance()
	return nil
}

// Tick plays the flip animation and then tosses the coin.
func (g *Game) Tick() {
	if g.Terminal() || g.acceptor == "" {
		return
	}
	g.frame++
	if g.frame <= len(Frames) {
		g.Advance()
		return
	}

	g.result = Heads
	if g.rng.IntN(2) == 1 {
		g.result = Tails
	}
	g.winner = g.acceptor
	status := game.StatusLost
	if g.sides[g.Owner()] == g.result {
		g.winner = g.Owner()
		status = game.StatusWon
	}
	g.Finish(status, map[string]int64{g.winner: 2 * g.Bet()})
}

// Timeout withdraws an unaccepted challenge and refunds the challenger.
func (g *Game) Timeout() {
	if g.Terminal() || g.acceptor != "" {
		return
	}
	g.Finish(game.StatusTimedOut, map[string]int64{g.Owner(): g.Bet()})
}

// Cancel refunds every stake taken so far.
func (g *Game) Cancel() {
	if g.Terminal() {
		return
	}
	credits := map[string]int64{g.Owner(): g.Bet()}
	if g.acceptor != "" {
		credits[g.acceptor] = g.Bet()
	}
	g.Finish(game.StatusCancelled, credits)
}

func (g *Game) Schedule() game.Schedule {
	switch {
	case g.Terminal():
		return game.Schedule{}
	case g.acceptor == "":
		return game.Schedule{Timeout: g.cfg.AcceptWindow}
	}
	return game.Schedule{Tick: g.cfg.FlipDelay}
}

func (g *Game) Snapshot() game.Snapshot {
	s := g.Header(game.Coinflip)
	view := &game.CoinflipView{
		Challenger: g.Owner(),
		Acceptor:   g.acceptor,
		Result:     g.result,
		Winner:     g.winner,
	}
	if g.acceptor != "" {
		view.ChallengerSide = g.sides[g.Owner()]
		view.AcceptorSide = g.sides[g.acceptor]
	}
	if g.frame > 0 && g.frame <= len(Frames) {
		view.Frame = Frames[g.frame-1]
	}
	s.Coinflip = view
	return s
}
