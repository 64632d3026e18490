package tui

import "github.com/charmbracelet/lipgloss"

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	EchoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	ReplyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	FrameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4"))

	NoticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)
