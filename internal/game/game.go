package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNonPositiveBet  = errors.New("bet must be positive")
	ErrInvalidParams   = errors.New("invalid game parameters")
	ErrNotOwner        = errors.New("move not allowed for this player")
	ErrSessionTerminal = errors.New("session already finished")
	ErrInvalidMove     = errors.New("invalid move")
)

// Kind names a game.
type Kind string

const (
	Blackjack Kind = "blackjack"
	Roulette  Kind = "roulette"
	Slots     Kind = "slots"
	Mines     Kind = "mines"
	Crash     Kind = "crash"
	Coinflip  Kind = "coinflip"
)

// Kinds lists every game in display order.
var Kinds = []Kind{Blackjack, Roulette, Slots, Mines, Crash, Coinflip}

// ParseKind resolves a game name, case-insensitively. "bj" and "flip" are
// accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Blackjack, Roulette, Slots, Mines, Crash, Coinflip:
		return k, nil
	case "bj":
		return Blackjack, nil
	case "flip", "cf":
		return Coinflip, nil
	}
	return "", fmt.Errorf("unknown game %q", s)
}

// Status is the lifecycle state of a session.
type Status int

const (
	StatusActive Status = iota
	StatusWon
	StatusLost
	StatusTied
	StatusCancelled
	StatusTimedOut
)

var statusNames = [...]string{"active", "won", "lost", "tied", "cancelled", "timed_out"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool { return s != StatusActive }

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Action is a player input.
type Action string

const (
	ActionHit     Action = "hit"
	ActionStand   Action = "stand"
	ActionReveal  Action = "reveal"
	ActionCashOut Action = "cashout"
	ActionAccept  Action = "accept"
)

// Move is one player input addressed to a session.
type Move struct {
	Player string `json:"player"`
	Action Action `json:"action"`
	// Cell is the mines tile index (0..24) for ActionReveal.
	Cell int `json:"cell,omitempty"`
}

// Params carries the per-game wager options.
type Params struct {
	// Choice is the roulette color.
	Choice string
	// Mines is the number of mines on the mines grid.
	Mines int
}

// Outcome is the settlement instruction produced once an engine reaches a
// terminal status. Credits holds the gross amount returned to each user;
// escrowed stakes not listed are forfeited.
type Outcome struct {
	Status  Status
	Credits map[string]int64
}

// Schedule tells the driver which timers the engine currently wants.
type Schedule struct {
	// Tick is the delay before the next Tick call, zero when none is wanted.
	Tick time.Duration
	// Timeout is the idle window, zero when the engine is not waiting on a
	// player.
	Timeout time.Duration
	// Rearm restarts the idle window after every accepted move.
	Rearm bool
}

// Engine is a single game session's state machine.
type Engine interface {
	Kind() Kind
	Owner() string
	Bet() int64
	Apply(m Move) error
	Tick()
	Timeout()
	Cancel()
	Schedule() Schedule
	Snapshot() Snapshot
	Outcome() (Outcome, bool)
}

// Staker is implemented by engines where a move puts a second player's coins
// at risk. Stake validates the move and returns the amount to escrow from
// m.Player before Apply is called.
type Staker interface {
	Stake(m Move) (int64, error)
}

// RandSource is the randomness an engine draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
	Float64() float64
}

// Factory builds an engine for a validated wager.
type Factory func(owner string, bet int64, p Params, rng RandSource) (Engine, error)
