package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/wagerbot/cmd/wagerbot/shared"
	"github.com/lox/wagerbot/internal/present"
	"github.com/lox/wagerbot/internal/tui"
)

type PlayCmd struct {
	User    string `short:"u" default:"player" env:"WAGERBOT_USER" help:"User to play as"`
	LogFile string `type:"path" help:"Write logs to this file instead of discarding them"`
}

func (c *PlayCmd) Run(g *Globals) error {
	var w io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	cfg, logger, err := g.load(w)
	if err != nil {
		return err
	}
	ctx := shared.SetupSignalHandler(logger)

	presenter := tui.NewPresenter(64, logger)
	rt, err := shared.Open(ctx, cfg, logger, present.NewMulti(presenter, present.NewLogger(logger)), nil)
	if err != nil {
		return err
	}

	text := present.NewText(lipgloss.NewRenderer(os.Stdout))
	model := tui.NewModel(ctx, rt.Dispatcher, presenter, text, c.User, logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, runErr := program.Run()
	presenter.Stop()
	if err := rt.Close(); err != nil {
		logger.Error("Failed to close runtime", "error", err)
	}
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}
