package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/wagerbot/cmd/wagerbot/shared"
	"github.com/lox/wagerbot/internal/game"
	"github.com/lox/wagerbot/internal/randutil"
	"github.com/lox/wagerbot/internal/simulator"
)

type SimulateCmd struct {
	Rounds    int      `default:"100000" help:"Rounds per game"`
	Bet       int64    `default:"100" help:"Bet per round"`
	Seed      *int64   `help:"Deterministic RNG seed (optional)"`
	Games     []string `help:"Games to simulate (default all)"`
	StandOn   int      `default:"17" help:"Blackjack total to stand on"`
	Choice    string   `default:"red" enum:"red,black,green" help:"Roulette color"`
	Mines     int      `default:"3" help:"Mines per grid"`
	Reveals   int      `default:"2" help:"Safe tiles to reveal before cashing out"`
	CashOutAt float64  `default:"2.0" help:"Crash multiplier to cash out at"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, logger, err := g.load(os.Stderr)
	if err != nil {
		return err
	}
	ctx := shared.SetupSignalHandler(logger)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		if seed, err = randutil.NewSeed(); err != nil {
			return err
		}
		logger.Info("Using random seed", "seed", seed)
	}

	kinds := make([]game.Kind, 0, len(c.Games))
	for _, name := range c.Games {
		k, err := game.ParseKind(name)
		if err != nil {
			return err
		}
		kinds = append(kinds, k)
	}

	start := time.Now()
	results, err := simulator.Run(ctx, simulator.Config{
		Rounds:    c.Rounds,
		Bet:       c.Bet,
		Seed:      seed,
		Kinds:     kinds,
		Factories: cfg.Games.Factories(),
		Policy: simulator.Policy{
			StandOn:   c.StandOn,
			Choice:    c.Choice,
			Mines:     c.Mines,
			Reveals:   c.Reveals,
			CashOutAt: int64(c.CashOutAt*100 + 0.5),
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	fmt.Println(renderResults(results))
	logger.Info("Simulation complete", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func renderResults(results []simulator.Result) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Game", "Rounds", "Won", "Lost", "Tied", "Other", "Staked", "Paid", "RTP", "95% CI", "Best").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, r := range simulator.Sorted(results) {
		lo, hi := r.ConfidenceInterval95()
		t.Row(
			string(r.Kind),
			strconv.Itoa(r.Rounds),
			strconv.Itoa(r.Won),
			strconv.Itoa(r.Lost),
			strconv.Itoa(r.Tied),
			strconv.Itoa(r.Other),
			strconv.FormatInt(r.Staked, 10),
			strconv.FormatInt(r.Paid, 10),
			fmt.Sprintf("%.2f%%", r.RTP()*100),
			fmt.Sprintf("%.2f%%..%.2f%%", lo*100, hi*100),
			fmt.Sprintf("%.2fx", r.Best),
		)
	}
	return t.Render()
}
