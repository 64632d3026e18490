// Package tui is a terminal chat console for the wagering bot. Each line
// typed is sent to the command dispatcher as the current user, and running
// sessions redraw in place as their frames arrive.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/wagerbot/internal/command"
	"github.com/lox/wagerbot/internal/present"
)

// Handler answers one chat message.
type Handler interface {
	Handle(ctx context.Context, user, text string) command.Reply
}

type entryKind int

const (
	entryEcho entryKind = iota
	entryReply
	entryFrame
	entryNotice
)

type entry struct {
	kind entryKind
	text string
}

// ReplyMsg is the dispatcher's answer to a submitted line.
type ReplyMsg struct {
	User  string
	Reply command.Reply
}

type activeSession struct {
	id    string
	title string
}

// Model is the Bubble Tea model for the console.
type Model struct {
	ctx       context.Context
	handler   Handler
	presenter *Presenter
	text      *present.Text
	logger    *log.Logger

	logViewport viewport.Model
	input       textinput.Model
	focusedPane int // 0 = log, 1 = input

	user    string
	entries []entry
	// frames maps a running session to the entry holding its latest frame.
	frames   map[string]int
	sessions []activeSession

	width, height int
	initialized   bool
	quitting      bool
}

func NewModel(ctx context.Context, h Handler, p *Presenter, text *present.Text, user string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "balance, daily, blackjack 100, hit, stand, help..."
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 100
	ti.PromptStyle = EchoStyle
	ti.TextStyle = ReplyStyle
	ti.Prompt = "> "

	return &Model{
		ctx:         ctx,
		handler:     h,
		presenter:   p,
		text:        text,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		focusedPane: 1,
		user:        user,
		frames:      make(map[string]int),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.presenter.Listen())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case ReplyMsg:
		if msg.Reply.Text != "" {
			m.add(entry{kind: entryReply, text: msg.Reply.Text})
		}
		return m, nil

	case UpdateMsg:
		m.present(msg.Update)
		return m, m.presenter.Listen()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.input.Focus()
			} else {
				m.focusedPane = 0
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				return m, m.submit(line)
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles one input line. Lines starting with a slash are console
// commands; everything else goes to the dispatcher.
func (m *Model) submit(line string) tea.Cmd {
	if line == "" {
		return nil
	}
	if fields := strings.Fields(line); fields[0] == "/as" || fields[0] == "/quit" {
		switch {
		case fields[0] == "/quit":
			m.quitting = true
			return tea.Sequence(tea.ClearScreen, tea.Quit)
		case len(fields) != 2:
			m.add(entry{kind: entryNotice, text: "Usage: /as <user>"})
		default:
			m.user = fields[1]
			m.add(entry{kind: entryNotice, text: "Now playing as " + m.user})
		}
		return nil
	}

	user := m.user
	m.add(entry{kind: entryEcho, text: user + "> " + line})
	return func() tea.Msg {
		return ReplyMsg{User: user, Reply: m.handler.Handle(m.ctx, user, line)}
	}
}

// present draws a session frame, replacing the previous frame of the same
// session so a running game animates in place.
func (m *Model) present(u present.Update) {
	rendered := m.text.Render(u)
	if i, ok := m.frames[u.SessionID]; ok {
		m.entries[i].text = rendered
		m.refresh(false)
	} else {
		m.frames[u.SessionID] = len(m.entries)
		m.add(entry{kind: entryFrame, text: rendered})
	}

	idx := slices.IndexFunc(m.sessions, func(s activeSession) bool { return s.id == u.SessionID })
	if u.Final {
		delete(m.frames, u.SessionID)
		if idx >= 0 {
			m.sessions = slices.Delete(m.sessions, idx, idx+1)
		}
		return
	}
	if idx < 0 {
		m.sessions = append(m.sessions, activeSession{
			id:    u.SessionID,
			title: fmt.Sprintf("%s %s (%d)", u.Snapshot.Kind, u.Snapshot.Owner, u.Snapshot.Bet),
		})
	}
}

func (m *Model) add(e entry) {
	m.entries = append(m.entries, e)
	m.refresh(true)
}

func (m *Model) refresh(bottom bool) {
	m.logViewport.SetContent(m.renderLogPane())
	if bottom && m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// User is the name commands are currently sent as.
func (m *Model) User() string { return m.user }

// Log returns the unstyled console lines.
func (m *Model) Log() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.text
	}
	return out
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderInputPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.border(1)).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(m.renderLogPane())
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.border(0)).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *Model) border(pane int) lipgloss.Color {
	if m.focusedPane == pane {
		return lipgloss.Color("#04B575")
	}
	return lipgloss.Color("#626262")
}

func (m *Model) renderLogPane() string {
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		switch e.kind {
		case entryEcho:
			lines = append(lines, EchoStyle.Render(e.text))
		case entryFrame:
			lines = append(lines, FrameStyle.Render(e.text))
		case entryNotice:
			lines = append(lines, NoticeStyle.Render(e.text))
		default:
			lines = append(lines, ReplyStyle.Render(e.text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSidebarPane() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(" " + m.user + " "))
	b.WriteString("\n\n")
	if len(m.sessions) == 0 {
		b.WriteString(InfoStyle.Render("No games running"))
		return b.String()
	}
	b.WriteString(InfoStyle.Render("Running:"))
	for _, s := range m.sessions {
		b.WriteString("\n  " + s.title)
	}
	return b.String()
}

func (m *Model) renderInputPane() string {
	help := "Tab to scroll log • /as <user> to switch • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	}
	return m.input.View() + "\n" + InfoStyle.Render(help)
}
