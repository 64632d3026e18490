package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/wagerbot/internal/present"
)

// UpdateMsg carries a session update into the Bubble Tea loop.
type UpdateMsg struct {
	Update present.Update
}

// Presenter queues coordinator updates for the console. Intermediate frames
// are dropped when the queue is full; final frames wait for room until Stop.
type Presenter struct {
	updates  chan present.Update
	done     chan struct{}
	stopOnce sync.Once
	logger   *log.Logger
}

func NewPresenter(buffer int, logger *log.Logger) *Presenter {
	return &Presenter{
		updates: make(chan present.Update, buffer),
		done:    make(chan struct{}),
		logger:  logger.WithPrefix("tui"),
	}
}

func (p *Presenter) Present(u present.Update) {
	if !u.Final {
		select {
		case p.updates <- u:
		default:
			p.logger.Debug("Dropping frame, console is behind", "session", u.SessionID, "step", u.Snapshot.Step)
		}
		return
	}
	select {
	case p.updates <- u:
	case <-p.done:
	}
}

// Stop releases any Present call waiting on a console that has exited.
func (p *Presenter) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
}

// Listen returns a command that waits for the next update.
func (p *Presenter) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case u := <-p.updates:
			return UpdateMsg{Update: u}
		case <-p.done:
			return nil
		}
	}
}
