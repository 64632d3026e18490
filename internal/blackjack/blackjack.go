// Package blackjack implements a single-deck, single-player blackjack round
// against a dealer who draws to 17.
package blackjack

import (
	"errors"
	"time"

	"github.com/lox/wagerbot/internal/deck"
	"github.com/lox/wagerbot/internal/game"
)

// Config controls blackjack pacing.
type Config struct {
	// MoveTimeout is how long the player may take per decision.
	MoveTimeout time.Duration
	// DealerDelay paces each dealer draw.
	DealerDelay time.Duration
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		MoveTimeout: 30 * time.Second,
		DealerDelay: 1500 * time.Millisecond,
	}
}

type phase int

const (
	phasePlayer phase = iota
	phaseDealer
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phasePlayer:
		return "player"
	case phaseDealer:
		return "dealer"
	}
	return "done"
}

// Game is one blackjack round.
type Game struct {
	game.Base

	cfg    Config
	deck   *deck.Deck
	player deck.Hand
	dealer deck.Hand
	phase  phase
}

var _ game.Engine = (*Game)(nil)

// New deals a round from d. Two cards go to the player, then two to the
// dealer. A player natural resolves immediately.
func New(owner string, bet int64, d *deck.Deck, cfg Config) (*Game, error) {
	base, err := game.NewBase(owner, bet)
	if err != nil {
		return nil, err
	}
	if d == nil {
		panic("blackjack: deck is required")
	}

	g := &Game{Base: base, cfg: cfg, deck: d}
	if !g.draw(&g.player) || !g.draw(&g.player) || !g.draw(&g.dealer) || !g.draw(&g.dealer) {
		return g, nil
	}

	if g.player.Score() == 21 {
		if g.dealer.Score() == 21 {
			g.resolve(game.StatusTied)
		} else {
			g.resolve(game.StatusWon)
		}
	}
	return g, nil
}

// Factory builds rounds on a freshly shuffled deck.
func Factory(cfg Config) game.Factory {
	return func(owner string, bet int64, _ game.Params, rng game.RandSource) (game.Engine, error) {
		return New(owner, bet, deck.NewDeck(rng), cfg)
	}
}

func (g *Game) Kind() game.Kind { return game.Blackjack }

// draw deals one card into h. An exhausted deck cancels the round with a
// refund.
func (g *Game) draw(h *deck.Hand) bool {
	c, err := g.deck.Deal()
	if errors.Is(err, deck.ErrEmptyDeck) {
		g.phase = phaseDone
		g.Cancel()
		return false
	}
	*h = append(*h, c)
	return true
}

func (g *Game) resolve(s game.Status) {
	g.phase = phaseDone
	switch s {
	case game.StatusWon:
		g.Pay(s, 2*g.Bet())
	case game.StatusTied:
		g.Pay(s, g.Bet())
	default:
		g.Pay(s, 0)
	}
}

// Apply handles hit and stand.
func (g *Game) Apply(m game.Move) error {
	if err := g.CheckMove(m); err != nil {
		return err
	}
	if g.phase != phasePlayer {
		return game.ErrInvalidMove
	}

	switch m.Action {
	case game.ActionHit:
		if !g.draw(&g.player) {
			return nil
		}
		switch score := g.player.Score(); {
		case score > 21:
			g.resolve(game.StatusLost)
			return nil
		case score == 21:
			g.phase = phaseDealer
		}
	case game.ActionStand:
		g.phase = phaseDealer
	default:
		return game.ErrInvalidMove
	}
	g.Advance()
	return nil
}

// Tick plays one dealer step: draw below 17, then settle.
func (g *Game) Tick() {
	if g.Terminal() || g.phase != phaseDealer {
		return
	}
	if g.dealer.Score() < 17 {
		if !g.draw(&g.dealer) {
			return
		}
		g.Advance()
	}
	if g.dealer.Score() < 17 {
		return
	}

	player, dealer := g.player.Score(), g.dealer.Score()
	switch {
	case dealer > 21, dealer < player:
		g.resolve(game.StatusWon)
	case dealer > player:
		g.resolve(game.StatusLost)
	default:
		g.resolve(game.StatusTied)
	}
}

// Timeout forfeits the escrowed bet when the player stops responding.
func (g *Game) Timeout() {
	if g.Terminal() || g.phase != phasePlayer {
		return
	}
	g.phase = phaseDone
	g.Pay(game.StatusTimedOut, 0)
}

func (g *Game) Schedule() game.Schedule {
	if g.Terminal() {
		return game.Schedule{}
	}
	if g.phase == phaseDealer {
		return game.Schedule{Tick: g.cfg.DealerDelay}
	}
	return game.Schedule{Timeout: g.cfg.MoveTimeout, Rearm: true}
}

func (g *Game) Snapshot() game.Snapshot {
	s := g.Header(game.Blackjack)
	hidden := !g.Terminal() && g.phase == phasePlayer
	dealer := append([]deck.Card(nil), g.dealer...)
	dealerScore := g.dealer.Score()
	if hidden && len(dealer) > 1 {
		// The hole card is the dealer's first card.
		dealer = dealer[1:]
		dealerScore = deck.Hand(dealer).Score()
	}
	s.Blackjack = &game.BlackjackView{
		Player:       append([]deck.Card(nil), g.player...),
		Dealer:       dealer,
		PlayerScore:  g.player.Score(),
		DealerScore:  dealerScore,
		DealerHidden: hidden,
		Phase:        g.phase.String(),
	}
	return s
}
