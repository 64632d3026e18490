package game

import "fmt"

// Base holds the bookkeeping every single-player engine shares. Engines embed
// it and call Finish once.
type Base struct {
	owner   string
	bet     int64
	status  Status
	step    int
	credits map[string]int64
}

// NewBase validates the owner and bet.
func NewBase(owner string, bet int64) (Base, error) {
	if owner == "" {
		return Base{}, fmt.Errorf("%w: missing owner", ErrInvalidParams)
	}
	if bet <= 0 {
		return Base{}, ErrNonPositiveBet
	}
	return Base{owner: owner, bet: bet}, nil
}

func (b *Base) Owner() string  { return b.owner }
func (b *Base) Bet() int64     { return b.bet }
func (b *Base) Status() Status { return b.status }

// Terminal reports whether Finish has been called.
func (b *Base) Terminal() bool { return b.status.Terminal() }

// Step counts state transitions, for presenters that want to drop stale
// frames.
func (b *Base) Step() int { return b.step }

// Advance records a state transition.
func (b *Base) Advance() { b.step++ }

// Finish moves to a terminal status. Later calls are ignored.
func (b *Base) Finish(s Status, credits map[string]int64) {
	if b.Terminal() || !s.Terminal() {
		return
	}
	b.status = s
	b.credits = credits
	b.step++
}

// Pay finishes the session crediting gross coins to the owner.
func (b *Base) Pay(s Status, gross int64) {
	credits := map[string]int64{}
	if gross > 0 {
		credits[b.owner] = gross
	}
	b.Finish(s, credits)
}

// Cancel ends an active session and refunds the owner's stake.
func (b *Base) Cancel() { b.Pay(StatusCancelled, b.bet) }

// Outcome returns the settlement once terminal.
func (b *Base) Outcome() (Outcome, bool) {
	if !b.Terminal() {
		return Outcome{}, false
	}
	credits := make(map[string]int64, len(b.credits))
	for user, amount := range b.credits {
		credits[user] = amount
	}
	return Outcome{Status: b.status, Credits: credits}, true
}

// CheckMove rejects moves on finished sessions and from non-owners.
func (b *Base) CheckMove(m Move) error {
	if b.Terminal() {
		return ErrSessionTerminal
	}
	if m.Player != b.owner {
		return ErrNotOwner
	}
	return nil
}

// Header fills the fields of a Snapshot common to all games.
func (b *Base) Header(kind Kind) Snapshot {
	s := Snapshot{
		Kind:   kind,
		Status: b.status,
		Owner:  b.owner,
		Bet:    b.bet,
		Step:   b.step,
	}
	if b.Terminal() {
		s.Payout = b.credits[b.owner]
		s.Net = s.Payout - b.bet
	}
	return s
}
