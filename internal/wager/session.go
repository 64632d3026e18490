package wager

import (
	"context"
	"sync"

	"github.com/lox/wagerbot/internal/game"
)

// Session is the handle for one accepted wager. All engine access happens on
// the session's driver goroutine; the handle only exposes the last published
// snapshot.
type Session struct {
	id    string
	kind  game.Kind
	owner string
	bet   int64
	seed  int64

	engine game.Engine
	moves  chan moveRequest
	done   chan struct{}

	mu   sync.RWMutex
	last game.Snapshot
}

type moveRequest struct {
	ctx   context.Context
	move  game.Move
	reply chan moveResult
}

type moveResult struct {
	snap game.Snapshot
	err  error
}

func (s *Session) ID() string      { return s.id }
func (s *Session) Kind() game.Kind { return s.kind }
func (s *Session) Owner() string   { return s.owner }
func (s *Session) Bet() int64      { return s.bet }

// Seed is the random seed the engine was built from.
func (s *Session) Seed() int64 { return s.seed }

// Snapshot returns the most recently published state.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Session) setSnapshot(snap game.Snapshot) {
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
}

// Done is closed once the session has settled.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session settles and returns its final snapshot.
func (s *Session) Wait(ctx context.Context) (game.Snapshot, error) {
	select {
	case <-s.done:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

func (s *Session) finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
