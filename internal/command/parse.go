// Package command parses the bot's chat commands and runs them against the
// wager coordinator and the ledger.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/wagerbot/internal/game"
	"github.com/lox/wagerbot/internal/mines"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// DefaultMines is used when a mines wager names no count.
const DefaultMines = 3

type Name string

const (
	Balance     Name = "balance"
	Daily       Name = "daily"
	Leaderboard Name = "leaderboard"
	Help        Name = "help"
	Sessions    Name = "sessions"
	Play        Name = "play"
	Move        Name = "move"
)

// Command is one parsed chat message.
type Command struct {
	Name Name

	// Play
	Kind   game.Kind
	Bet    int64
	Params game.Params

	// Move
	Action game.Action
	Cell   int
	// Session addresses a specific session, only used by accept.
	Session string
}

var usage = map[game.Kind]string{
	game.Blackjack: "blackjack <bet>",
	game.Roulette:  "roulette <bet> <red|black|green>",
	game.Slots:     "slots <bet>",
	game.Mines:     "mines <bet> [mines]",
	game.Crash:     "crash <bet>",
	game.Coinflip:  "coinflip <bet>",
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// Parse reads a chat message. A leading "!" or "/" is ignored.
func Parse(text string) (Command, error) {
	text = strings.TrimLeft(strings.TrimSpace(text), "!/")
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return Command{}, ErrUnknownCommand
	}
	head, args := fields[0], fields[1:]

	switch head {
	case "balance", "bal":
		return Command{Name: Balance}, nil
	case "daily":
		return Command{Name: Daily}, nil
	case "leaderboard", "lb", "top":
		return Command{Name: Leaderboard}, nil
	case "help":
		return Command{Name: Help}, nil
	case "sessions", "games":
		return Command{Name: Sessions}, nil
	case "hit":
		return Command{Name: Move, Action: game.ActionHit}, nil
	case "stand":
		return Command{Name: Move, Action: game.ActionStand}, nil
	case "cashout":
		return Command{Name: Move, Action: game.ActionCashOut}, nil
	case "cash":
		if len(args) == 1 && args[0] == "out" {
			return Command{Name: Move, Action: game.ActionCashOut}, nil
		}
		return Command{}, usageErr("cash out")
	case "reveal":
		return parseReveal(args)
	case "accept":
		cmd := Command{Name: Move, Action: game.ActionAccept}
		if len(args) > 0 {
			cmd.Session = args[0]
		}
		return cmd, nil
	}

	kind, err := game.ParseKind(head)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, head)
	}
	return parsePlay(kind, args)
}

func parsePlay(kind game.Kind, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, usageErr("%s", usage[kind])
	}
	bet, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return Command{}, usageErr("%s", usage[kind])
	}
	cmd := Command{Name: Play, Kind: kind, Bet: bet}
	args = args[1:]

	switch kind {
	case game.Roulette:
		if len(args) != 1 {
			return Command{}, usageErr("%s", usage[kind])
		}
		cmd.Params.Choice = args[0]
	case game.Mines:
		cmd.Params.Mines = DefaultMines
		if len(args) > 1 {
			return Command{}, usageErr("%s", usage[kind])
		}
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return Command{}, usageErr("%s", usage[kind])
			}
			cmd.Params.Mines = n
		}
	default:
		if len(args) != 0 {
			return Command{}, usageErr("%s", usage[kind])
		}
	}
	return cmd, nil
}

// parseReveal accepts a tile number 1-25 or 1-based x y coordinates.
func parseReveal(args []string) (Command, error) {
	const help = "reveal <1-25> or reveal <x> <y>"
	cmd := Command{Name: Move, Action: game.ActionReveal}

	switch len(args) {
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > mines.Tiles {
			return Command{}, usageErr(help)
		}
		cmd.Cell = n - 1
	case 2:
		x, errX := strconv.Atoi(args[0])
		y, errY := strconv.Atoi(args[1])
		if errX != nil || errY != nil {
			return Command{}, usageErr(help)
		}
		cell, err := mines.CellIndex(x, y)
		if err != nil {
			return Command{}, usageErr(help)
		}
		cmd.Cell = cell
	default:
		return Command{}, usageErr(help)
	}
	return cmd, nil
}
