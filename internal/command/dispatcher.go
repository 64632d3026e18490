package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/wagerbot/internal/coinflip"
	"github.com/lox/wagerbot/internal/game"
	"github.com/lox/wagerbot/internal/ledger"
	"github.com/lox/wagerbot/internal/wager"
)

type Config struct {
	// LeaderboardSize is the number of entries the leaderboard shows.
	LeaderboardSize int
	// PersistOnBalance stores a new user's default account the first time
	// they check their balance.
	PersistOnBalance bool
}

func DefaultConfig() Config {
	return Config{LeaderboardSize: 10, PersistOnBalance: true}
}

// Reply is the dispatcher's answer to one message. Session output is
// delivered through the coordinator's presenter, so Text is empty when the
// command only started or moved a session.
type Reply struct {
	Text    string `json:"text,omitempty"`
	Session string `json:"session,omitempty"`
}

// Dispatcher runs commands for a single chat surface.
type Dispatcher struct {
	coord  *wager.Coordinator
	ledger *ledger.Ledger
	clock  quartz.Clock
	cfg    Config
	logger *log.Logger
}

func New(coord *wager.Coordinator, l *ledger.Ledger, clock quartz.Clock, logger *log.Logger, cfg Config) *Dispatcher {
	return &Dispatcher{
		coord:  coord,
		ledger: l,
		clock:  clock,
		cfg:    cfg,
		logger: logger.WithPrefix("command"),
	}
}

// Handle parses and runs one message from user.
func (d *Dispatcher) Handle(ctx context.Context, user, text string) Reply {
	cmd, err := Parse(text)
	if err != nil {
		return Reply{Text: d.describe(user, err)}
	}
	d.logger.Debug("command", "user", user, "name", cmd.Name, "game", cmd.Kind, "action", cmd.Action)

	reply, err := d.run(ctx, user, cmd)
	if err != nil {
		return Reply{Text: d.describe(user, err)}
	}
	return reply
}

func (d *Dispatcher) run(ctx context.Context, user string, cmd Command) (Reply, error) {
	switch cmd.Name {
	case Balance:
		return d.balance(ctx, user)
	case Daily:
		acct, err := d.ledger.ClaimDaily(ctx, user, ledger.DateOf(d.clock.Now()))
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: fmt.Sprintf("💰 %s, you've claimed your daily coins! You now have **%d coins**!", user, acct.Coins)}, nil
	case Leaderboard:
		return d.leaderboard(ctx)
	case Help:
		return Reply{Text: helpText}, nil
	case Sessions:
		return d.sessions(user), nil
	case Play:
		s, err := d.coord.Submit(ctx, wager.Wager{User: user, Kind: cmd.Kind, Bet: cmd.Bet, Params: cmd.Params})
		if err != nil {
			return Reply{}, err
		}
		return Reply{Session: s.ID()}, nil
	case Move:
		return d.move(ctx, user, cmd)
	}
	return Reply{}, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name)
}

func (d *Dispatcher) balance(ctx context.Context, user string) (Reply, error) {
	var (
		acct ledger.Account
		err  error
	)
	if d.cfg.PersistOnBalance {
		acct, err = d.ledger.Ensure(ctx, user)
	} else {
		acct, err = d.ledger.Account(ctx, user)
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("💰 %s, you have **%d coins**!", user, acct.Coins)}, nil
}

func (d *Dispatcher) leaderboard(ctx context.Context) (Reply, error) {
	top, err := d.ledger.Top(ctx, d.cfg.LeaderboardSize)
	if err != nil {
		return Reply{}, err
	}
	if len(top) == 0 {
		return Reply{Text: "❌ No data found yet!"}, nil
	}
	lines := []string{"🏆 **Top Coin Holders** 🏆"}
	for i, acct := range top {
		lines = append(lines, fmt.Sprintf("**#%d** - %s: **%d coins**", i+1, acct.UserID, acct.Coins))
	}
	return Reply{Text: strings.Join(lines, "\n")}, nil
}

func (d *Dispatcher) sessions(user string) Reply {
	var lines []string
	for _, s := range d.coord.Sessions() {
		snap := s.Snapshot()
		switch {
		case s.Owner() == user:
			lines = append(lines, fmt.Sprintf("• %s %s, bet %d", s.Kind(), s.ID(), s.Bet()))
		case snap.Coinflip != nil && snap.Coinflip.Acceptor == "":
			lines = append(lines, fmt.Sprintf("• open coin flip by %s for %d, type `accept %s`", s.Owner(), s.Bet(), s.ID()))
		}
	}
	if len(lines) == 0 {
		return Reply{Text: "No games running."}
	}
	return Reply{Text: strings.Join(lines, "\n")}
}

// target finds the session a move is meant for.
func (d *Dispatcher) target(user string, cmd Command) (*wager.Session, error) {
	if cmd.Session != "" {
		return d.coord.Session(cmd.Session)
	}

	var kinds []game.Kind
	switch cmd.Action {
	case game.ActionHit, game.ActionStand:
		kinds = []game.Kind{game.Blackjack}
	case game.ActionReveal:
		kinds = []game.Kind{game.Mines}
	case game.ActionCashOut:
		kinds = []game.Kind{game.Mines, game.Crash}
	case game.ActionAccept:
		return d.openChallenge(user)
	}

	var found *wager.Session
	for _, k := range kinds {
		s, ok := d.coord.Active(user, k)
		if ok && (found == nil || s.ID() > found.ID()) {
			found = s
		}
	}
	if found == nil {
		return nil, errNoGame
	}
	return found, nil
}

// openChallenge returns the oldest coin flip user could accept.
func (d *Dispatcher) openChallenge(user string) (*wager.Session, error) {
	for _, s := range d.coord.Sessions() {
		snap := s.Snapshot()
		if s.Kind() == game.Coinflip && s.Owner() != user && snap.Coinflip != nil && snap.Coinflip.Acceptor == "" {
			return s, nil
		}
	}
	return nil, errNoChallenge
}

func (d *Dispatcher) move(ctx context.Context, user string, cmd Command) (Reply, error) {
	s, err := d.target(user, cmd)
	if err != nil {
		return Reply{}, err
	}
	_, err = d.coord.Apply(ctx, s.ID(), game.Move{Player: user, Action: cmd.Action, Cell: cmd.Cell})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Session: s.ID()}, nil
}

var (
	errNoGame      = errors.New("no running game for that move")
	errNoChallenge = errors.New("no open coin flip")
)

// describe turns an error into the reply shown to user.
func (d *Dispatcher) describe(user string, err error) string {
	switch {
	case errors.Is(err, ErrUsage):
		return "Usage: `" + strings.TrimPrefix(err.Error(), ErrUsage.Error()+": ") + "`"
	case errors.Is(err, ErrUnknownCommand):
		return "❓ Unknown command. Type `help` for the list."
	case errors.Is(err, game.ErrNonPositiveBet):
		return "❌ Your bet must be a positive number of coins."
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fmt.Sprintf("❌ %s, you don't have enough coins!", user)
	case errors.Is(err, ledger.ErrAlreadyClaimed):
		return fmt.Sprintf("❌ %s, you've already claimed your daily coins today!", user)
	case errors.Is(err, game.ErrInvalidParams):
		return "❌ " + strings.TrimPrefix(err.Error(), game.ErrInvalidParams.Error()+": ")
	case errors.Is(err, wager.ErrSessionActive):
		return fmt.Sprintf("❌ %s, finish your current game first!", user)
	case errors.Is(err, coinflip.ErrOwnChallenge):
		return "❌ You can't accept your own challenge!"
	case errors.Is(err, coinflip.ErrAlreadyAccepted):
		return "⚠️ Someone already accepted this challenge!"
	case errors.Is(err, game.ErrNotOwner):
		return "❌ This isn't your game!"
	case errors.Is(err, game.ErrSessionTerminal):
		return "❌ That game is already over."
	case errors.Is(err, game.ErrInvalidMove):
		return "❌ You can't do that right now."
	case errors.Is(err, errNoGame), errors.Is(err, wager.ErrUnknownSession):
		return "❌ You don't have a game running for that."
	case errors.Is(err, errNoChallenge):
		return "❌ There is no open coin flip to accept."
	case errors.Is(err, wager.ErrClosed):
		return "❌ The casino is closing, try again later."
	}
	d.logger.Error("command failed", "user", user, "error", err)
	return "❌ Something went wrong, try again later."
}

const helpText = `🎲 **Commands**
balance · daily · leaderboard · sessions
blackjack <bet> · then hit or stand
roulette <bet> <red|black|green>
slots <bet>
mines <bet> [mines] · then reveal <1-25> or reveal <x> <y>, cash out
crash <bet> · then cash out
coinflip <bet> · others type accept`
