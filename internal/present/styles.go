package present

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type styles struct {
	header  lipgloss.Style
	win     lipgloss.Style
	loss    lipgloss.Style
	neutral lipgloss.Style
	prompt  lipgloss.Style
	red     lipgloss.Style
	black   lipgloss.Style
	info    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true),
		win: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		loss: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		neutral: r.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true),
		prompt: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")),
		red: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		black: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true),
		info: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
	}
}

// plainRenderer produces lipgloss output without escape codes, for chat
// platforms that do their own formatting.
func plainRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}
