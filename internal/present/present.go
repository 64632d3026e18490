// Package present turns session snapshots into something a host can show.
//
// The wagering core only knows the Presenter interface. Present is called on
// the session's own goroutine, so implementations must return quickly and
// never block on the session they are rendering.
package present

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/wagerbot/internal/game"
)

// Update is one rendered frame of a session.
type Update struct {
	SessionID string        `json:"session_id"`
	Snapshot  game.Snapshot `json:"snapshot"`
	// Final marks the settled snapshot; no further updates follow.
	Final bool `json:"final"`
}

// Presenter receives session updates.
type Presenter interface {
	Present(u Update)
}

// Func adapts a function to Presenter.
type Func func(Update)

func (f Func) Present(u Update) { f(u) }

// Discard drops every update.
var Discard Presenter = Func(func(Update) {})

// Multi fans updates out to a changing set of presenters.
type Multi struct {
	mu         sync.RWMutex
	next       int
	presenters map[int]Presenter
}

func NewMulti(ps ...Presenter) *Multi {
	m := &Multi{presenters: make(map[int]Presenter)}
	for _, p := range ps {
		m.Add(p)
	}
	return m
}

// Add registers p and returns a function that removes it.
func (m *Multi) Add(p Presenter) (remove func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.presenters[id] = p
	return func() {
		m.mu.Lock()
		delete(m.presenters, id)
		m.mu.Unlock()
	}
}

func (m *Multi) Present(u Update) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.presenters {
		p.Present(u)
	}
}

// Logger writes lifecycle updates to a logger: every final snapshot at info,
// intermediate frames at debug.
type Logger struct {
	logger *log.Logger
}

func NewLogger(logger *log.Logger) *Logger {
	return &Logger{logger: logger.WithPrefix("present")}
}

func (l *Logger) Present(u Update) {
	s := u.Snapshot
	if !u.Final {
		l.logger.Debug("session frame", "session", u.SessionID, "game", s.Kind, "step", s.Step)
		return
	}
	l.logger.Info("session finished",
		"session", u.SessionID,
		"game", s.Kind,
		"user", s.Owner,
		"status", s.Status,
		"bet", s.Bet,
		"net", s.Net,
	)
}
