package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lox/wagerbot/cmd/wagerbot/shared"
	"github.com/lox/wagerbot/internal/present"
)

// runCommand sends one chat command through the dispatcher and prints the
// reply.
func runCommand(g *Globals, user, text string) error {
	cfg, logger, err := g.load(os.Stderr)
	if err != nil {
		return err
	}
	ctx := context.Background()
	rt, err := shared.Open(ctx, cfg, logger, present.Discard, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	reply := rt.Dispatcher.Handle(ctx, user, text)
	fmt.Println(reply.Text)
	return nil
}

type BalanceCmd struct {
	User string `arg:"" help:"User id"`
}

func (c *BalanceCmd) Run(g *Globals) error { return runCommand(g, c.User, "balance") }

type DailyCmd struct {
	User string `arg:"" help:"User id"`
}

func (c *DailyCmd) Run(g *Globals) error { return runCommand(g, c.User, "daily") }

type LeaderboardCmd struct{}

func (c *LeaderboardCmd) Run(g *Globals) error { return runCommand(g, "cli", "leaderboard") }
