// Package wager runs game sessions against the ledger.
//
// The Coordinator escrows a bet when a wager is accepted, drives the engine
// from its own goroutine until it reaches a terminal status, and then credits
// the outcome exactly once. A user may hold at most one active session per
// game.
package wager

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/wagerbot/internal/game"
	"github.com/lox/wagerbot/internal/ledger"
	"github.com/lox/wagerbot/internal/metrics"
	"github.com/lox/wagerbot/internal/present"
	"github.com/lox/wagerbot/internal/randutil"
	"github.com/lox/wagerbot/internal/sessionid"
)

var (
	ErrSessionActive  = errors.New("you already have an active session for this game")
	ErrUnknownSession = errors.New("unknown session")
	ErrUnknownGame    = errors.New("unknown game")
	ErrClosed         = errors.New("coordinator closed")
)

// Ledger is the part of the ledger the coordinator needs.
type Ledger interface {
	Debit(ctx context.Context, userID string, amount int64) (ledger.Account, error)
	Credit(ctx context.Context, userID string, amount int64) (ledger.Account, error)
}

// Wager is a request to start a session.
type Wager struct {
	User   string
	Kind   game.Kind
	Bet    int64
	Params game.Params
}

type slot struct {
	user string
	kind game.Kind
}

// Coordinator owns every active session.
type Coordinator struct {
	ledger    Ledger
	factories map[game.Kind]game.Factory
	logger    *log.Logger
	clock     quartz.Clock
	presenter present.Presenter
	metrics   *metrics.Metrics
	seeder    *randutil.Seeder
	ids       sessionid.Generator

	maxBet        int64
	settleRetries int
	settleBackoff time.Duration
	finishedLimit int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	active   map[slot]*Session
	sessions map[string]*Session
	finished map[string]*Session
	order    []string
}

// New creates a Coordinator for the given engine factories.
func New(l Ledger, factories map[game.Kind]game.Factory, logger *log.Logger, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		ledger:        l,
		factories:     factories,
		logger:        logger.WithPrefix("wager"),
		clock:         quartz.NewReal(),
		presenter:     present.Discard,
		settleRetries: 3,
		settleBackoff: 250 * time.Millisecond,
		finishedLimit: 128,
		ctx:           ctx,
		cancel:        cancel,
		active:        make(map[slot]*Session),
		sessions:      make(map[string]*Session),
		finished:      make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.seeder == nil {
		seed, err := randutil.NewSeed()
		if err != nil {
			seed = c.clock.Now().UnixNano()
		}
		c.seeder = randutil.NewSeeder(seed)
	}
	return c
}

// Submit validates a wager, escrows the bet and starts the session.
func (c *Coordinator) Submit(ctx context.Context, w Wager) (*Session, error) {
	s, err := c.submit(ctx, w)
	if err != nil {
		c.metrics.Rejected(string(w.Kind), Reason(err))
		c.logger.Debug("wager rejected", "user", w.User, "game", w.Kind, "bet", w.Bet, "error", err)
		return nil, err
	}
	c.metrics.WagerAccepted(string(s.kind), s.bet)
	c.logger.Info("wager accepted", "session", s.id, "user", s.owner, "game", s.kind, "bet", s.bet, "seed", s.seed)
	return s, nil
}

func (c *Coordinator) submit(ctx context.Context, w Wager) (*Session, error) {
	if w.Bet <= 0 {
		return nil, game.ErrNonPositiveBet
	}
	if c.maxBet > 0 && w.Bet > c.maxBet {
		return nil, fmt.Errorf("%w: the maximum bet is %d", game.ErrInvalidParams, c.maxBet)
	}
	factory, ok := c.factories[w.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGame, w.Kind)
	}

	rng, seed := c.seeder.NextRand()
	engine, err := factory(w.User, w.Bet, w.Params, rng)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:     c.ids.New(),
		kind:   w.Kind,
		owner:  w.User,
		bet:    w.Bet,
		seed:   seed,
		engine: engine,
		moves:  make(chan moveRequest),
		done:   make(chan struct{}),
		last:   engine.Snapshot(),
	}

	key := slot{user: w.User, kind: w.Kind}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if _, busy := c.active[key]; busy {
		c.mu.Unlock()
		return nil, ErrSessionActive
	}
	c.active[key] = s
	c.mu.Unlock()

	if _, err := c.ledger.Debit(ctx, w.User, w.Bet); err != nil {
		c.mu.Lock()
		delete(c.active, key)
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		delete(c.active, key)
		c.mu.Unlock()
		c.credit(s, w.User, w.Bet, c.logger)
		return nil, ErrClosed
	}
	c.sessions[s.id] = s
	c.wg.Add(1)
	c.mu.Unlock()

	go c.drive(s)
	return s, nil
}

// Apply sends a move to a session and returns the state after it.
func (c *Coordinator) Apply(ctx context.Context, id string, m game.Move) (game.Snapshot, error) {
	s, err := c.Session(id)
	if err != nil {
		return game.Snapshot{}, err
	}

	req := moveRequest{ctx: ctx, move: m, reply: make(chan moveResult, 1)}
	select {
	case s.moves <- req:
	case <-s.done:
		return s.Snapshot(), game.ErrSessionTerminal
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.snap, res.err
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Session finds an active or recently settled session.
func (c *Coordinator) Session(id string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[id]; ok {
		return s, nil
	}
	if s, ok := c.finished[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
}

// Active returns the user's running session for a game.
func (c *Coordinator) Active(user string, kind game.Kind) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.active[slot{user: user, kind: kind}]
	if !ok || c.sessions[s.id] == nil {
		return nil, false
	}
	return s, true
}

// Sessions lists active sessions, oldest first.
func (c *Coordinator) Sessions() []*Session {
	c.mu.Lock()
	out := slices.Collect(maps.Values(c.sessions))
	c.mu.Unlock()
	slices.SortFunc(out, func(a, b *Session) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Close cancels every active session, refunding escrow, and waits for the
// drivers to settle.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}

// drive runs one session until it settles. The tick timer is armed whenever
// the engine wants one and none is pending. The idle timer is armed when the
// engine starts waiting on a player and, if the engine asks for it, rearmed
// after every accepted move.
func (c *Coordinator) drive(s *Session) {
	defer c.wg.Done()
	logger := c.logger.With("session", s.id, "game", s.kind)

	var (
		tick, idle   *quartz.Timer
		tickC, idleC <-chan time.Time
		moved        bool
		lastStep     = -1
	)
	defer func() {
		if tick != nil {
			tick.Stop()
		}
		if idle != nil {
			idle.Stop()
		}
	}()

	for {
		if out, ok := s.engine.Outcome(); ok {
			c.settle(s, out, logger)
			return
		}

		sched := s.engine.Schedule()
		switch {
		case sched.Tick > 0 && tick == nil:
			tick = c.clock.NewTimer(sched.Tick, "wager", "tick")
			tickC = tick.C
		case sched.Tick == 0 && tick != nil:
			tick.Stop()
			tick, tickC = nil, nil
		}
		switch {
		case sched.Timeout == 0:
			if idle != nil {
				idle.Stop()
				idle, idleC = nil, nil
			}
		case idle == nil || (moved && sched.Rearm):
			if idle != nil {
				idle.Stop()
			}
			idle = c.clock.NewTimer(sched.Timeout, "wager", "idle")
			idleC = idle.C
		}
		moved = false

		snap := s.engine.Snapshot()
		if snap.Step != lastStep {
			lastStep = snap.Step
			s.setSnapshot(snap)
			c.presenter.Present(present.Update{SessionID: s.id, Snapshot: snap})
		}

		select {
		case req := <-s.moves:
			err := c.move(s, req, logger)
			moved = err == nil
			req.reply <- moveResult{snap: s.engine.Snapshot(), err: err}
		case <-tickC:
			tick, tickC = nil, nil
			s.engine.Tick()
		case <-idleC:
			idle, idleC = nil, nil
			logger.Warn("session timed out", "user", s.owner)
			s.engine.Timeout()
		case <-c.ctx.Done():
			logger.Info("cancelling session on shutdown", "user", s.owner)
			s.engine.Cancel()
		}
	}
}

// move applies one player input. Moves that put a second player's coins at
// risk escrow the stake first and refund it if the engine rejects the move.
func (c *Coordinator) move(s *Session, req moveRequest, logger *log.Logger) error {
	m := req.move
	staker, ok := s.engine.(game.Staker)
	if !ok {
		if err := s.engine.Apply(m); err != nil {
			logger.Debug("move rejected", "player", m.Player, "action", m.Action, "error", err)
			return err
		}
		logger.Debug("move applied", "player", m.Player, "action", m.Action)
		return nil
	}

	stake, err := staker.Stake(m)
	if err != nil {
		return err
	}
	if stake > 0 {
		if _, err := c.ledger.Debit(req.ctx, m.Player, stake); err != nil {
			return err
		}
	}
	if err := s.engine.Apply(m); err != nil {
		if stake > 0 {
			c.credit(s, m.Player, stake, logger)
		}
		return err
	}
	if stake > 0 {
		c.metrics.Staked(string(s.kind), stake)
		logger.Info("stake escrowed", "player", m.Player, "stake", stake)
	}
	return nil
}

func (c *Coordinator) settle(s *Session, out game.Outcome, logger *log.Logger) {
	var paid, unpaid int64
	for _, user := range slices.Sorted(maps.Keys(out.Credits)) {
		amount := out.Credits[user]
		if amount <= 0 {
			continue
		}
		if c.credit(s, user, amount, logger) {
			paid += amount
			continue
		}
		if user == s.owner {
			unpaid += amount
		}
	}

	final := s.engine.Snapshot()
	if unpaid > 0 {
		final.Payout -= unpaid
		final.Net = final.Payout - final.Bet
		final.Unpaid = unpaid
	}
	c.metrics.Settled(string(s.kind), out.Status.String(), paid)
	logger.Info("session settled", "user", s.owner, "status", out.Status, "bet", s.bet, "paid", paid)

	c.mu.Lock()
	key := slot{user: s.owner, kind: s.kind}
	if c.active[key] == s {
		delete(c.active, key)
	}
	delete(c.sessions, s.id)
	c.finished[s.id] = s
	c.order = append(c.order, s.id)
	for len(c.order) > c.finishedLimit {
		delete(c.finished, c.order[0])
		c.order = c.order[1:]
	}
	c.mu.Unlock()

	s.setSnapshot(final)
	close(s.done)
	c.presenter.Present(present.Update{SessionID: s.id, Snapshot: final, Final: true})
}

// credit pays amount to user, retrying failed writes on the clock.
func (c *Coordinator) credit(s *Session, user string, amount int64, logger *log.Logger) bool {
	for attempt := 0; ; attempt++ {
		_, err := c.ledger.Credit(context.Background(), user, amount)
		if err == nil {
			return true
		}
		if attempt >= c.settleRetries || errors.Is(err, ledger.ErrClosed) {
			c.metrics.Unpaid(string(s.kind), amount)
			logger.Error("settlement credit failed", "user", user, "amount", amount, "error", err)
			return false
		}
		c.metrics.SettleRetry()
		logger.Warn("settlement credit failed, retrying", "user", user, "amount", amount, "attempt", attempt+1, "error", err)
		if c.settleBackoff > 0 {
			t := c.clock.NewTimer(time.Duration(attempt+1)*c.settleBackoff, "wager", "settle")
			<-t.C
		}
	}
}

// Reason maps an error to a short label for metrics and logs.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, game.ErrNonPositiveBet):
		return "non_positive_bet"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, game.ErrInvalidParams):
		return "invalid_params"
	case errors.Is(err, ErrSessionActive):
		return "session_active"
	case errors.Is(err, ErrUnknownGame):
		return "unknown_game"
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, game.ErrNotOwner):
		return "not_owner"
	case errors.Is(err, game.ErrSessionTerminal):
		return "session_terminal"
	case errors.Is(err, game.ErrInvalidMove):
		return "invalid_move"
	case errors.Is(err, ErrUnknownSession):
		return "unknown_session"
	}
	return "error"
}
