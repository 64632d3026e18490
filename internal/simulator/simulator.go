// Package simulator plays many rounds of each game against a fixed policy
// and reports the return to player. Engines are stepped synchronously, so
// animation delays and timeouts cost nothing.
package simulator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/wagerbot/internal/game"
	"github.com/lox/wagerbot/internal/randutil"
	"github.com/lox/wagerbot/internal/statistics"
)

const (
	player   = "sim"
	opponent = "house"
	// maxSteps bounds a single round; no engine needs anywhere near this.
	maxSteps = 10_000
)

// ErrStuck is returned when an engine stops making progress.
var ErrStuck = errors.New("engine made no progress")

// Policy decides the player's moves.
type Policy struct {
	// StandOn is the blackjack total the player stands on.
	StandOn int
	// Choice is the roulette color bet on.
	Choice string
	// Mines is the mine count for mines rounds.
	Mines int
	// Reveals is the number of safe tiles to find before cashing out.
	Reveals int
	// CashOutAt is the crash multiplier, in hundredths, to cash out at.
	CashOutAt int64
}

func DefaultPolicy() Policy {
	return Policy{StandOn: 17, Choice: "red", Mines: 3, Reveals: 2, CashOutAt: 200}
}

type Config struct {
	Rounds    int
	Bet       int64
	Seed      int64
	Kinds     []game.Kind
	Factories map[game.Kind]game.Factory
	Policy    Policy
	Logger    *log.Logger
}

// Result aggregates the rounds of one game.
type Result struct {
	statistics.Statistics

	Kind game.Kind
	Won  int
	Lost int
	Tied int
	// Other counts rounds ending in a timeout or cancellation.
	Other int
}

func (r *Result) add(status game.Status, staked, paid int64) {
	r.Add(statistics.RoundResult{Staked: staked, Paid: paid})
	switch status {
	case game.StatusWon:
		r.Won++
	case game.StatusLost:
		r.Lost++
	case game.StatusTied:
		r.Tied++
	default:
		r.Other++
	}
}

// Run simulates every configured game concurrently. Each game draws from its
// own stream derived from Seed, so results are reproducible.
func Run(ctx context.Context, cfg Config) ([]Result, error) {
	if cfg.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}
	if cfg.Bet <= 0 {
		return nil, fmt.Errorf("bet must be positive, got %d", cfg.Bet)
	}
	logger := cfg.Logger.WithPrefix("simulator")

	kinds := cfg.Kinds
	if len(kinds) == 0 {
		kinds = game.Kinds
	}
	seeder := randutil.NewSeeder(cfg.Seed)
	results := make([]Result, len(kinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		factory, ok := cfg.Factories[kind]
		if !ok {
			return nil, fmt.Errorf("no factory for %s", kind)
		}
		rng, seed := seeder.NextRand()
		logger.Debug("Starting game simulation", "game", kind, "rounds", cfg.Rounds, "seed", seed)

		g.Go(func() error {
			res := Result{Kind: kind}
			for round := range cfg.Rounds {
				if round%1000 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				status, staked, paid, err := playRound(kind, factory, cfg.Bet, cfg.Policy, rng)
				if err != nil {
					return fmt.Errorf("%s round %d: %w", kind, round+1, err)
				}
				res.add(status, staked, paid)
			}
			if err := res.Validate(); err != nil {
				return fmt.Errorf("%s statistics: %w", kind, err)
			}
			results[i] = res
			logger.Info("Game simulated", "game", kind, "rounds", res.Rounds, "rtp", fmt.Sprintf("%.4f", res.RTP()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func playRound(kind game.Kind, factory game.Factory, bet int64, p Policy, rng game.RandSource) (game.Status, int64, int64, error) {
	params := game.Params{}
	switch kind {
	case game.Roulette:
		params.Choice = p.Choice
	case game.Mines:
		params.Mines = p.Mines
	}

	e, err := factory(player, bet, params, rng)
	if err != nil {
		return 0, 0, 0, err
	}
	staked := bet

	for range maxSteps {
		if out, ok := e.Outcome(); ok {
			var paid int64
			for _, c := range out.Credits {
				paid += c
			}
			return out.Status, staked, paid, nil
		}

		if m, ok := p.next(e.Snapshot(), rng); ok {
			if s, isStaker := e.(game.Staker); isStaker {
				extra, err := s.Stake(m)
				if err != nil {
					return 0, 0, 0, err
				}
				staked += extra
			}
			if err := e.Apply(m); err != nil {
				return 0, 0, 0, fmt.Errorf("apply %s: %w", m.Action, err)
			}
			continue
		}

		sched := e.Schedule()
		switch {
		case sched.Tick > 0:
			e.Tick()
		case sched.Timeout > 0:
			e.Timeout()
		default:
			return 0, 0, 0, ErrStuck
		}
	}
	return 0, 0, 0, ErrStuck
}

// next returns the policy's move for the current snapshot, if it has one.
func (p Policy) next(s game.Snapshot, rng game.RandSource) (game.Move, bool) {
	switch {
	case s.Blackjack != nil:
		if s.Blackjack.Phase != "player" {
			return game.Move{}, false
		}
		if s.Blackjack.PlayerScore < p.StandOn {
			return game.Move{Player: player, Action: game.ActionHit}, true
		}
		return game.Move{Player: player, Action: game.ActionStand}, true

	case s.Mines != nil:
		if s.Mines.SafeReveals >= p.Reveals {
			return game.Move{Player: player, Action: game.ActionCashOut}, true
		}
		var hidden []int
		for i, c := range s.Mines.Cells {
			if c == game.CellHidden {
				hidden = append(hidden, i)
			}
		}
		if len(hidden) == 0 {
			return game.Move{Player: player, Action: game.ActionCashOut}, true
		}
		return game.Move{Player: player, Action: game.ActionReveal, Cell: hidden[rng.IntN(len(hidden))]}, true

	case s.Crash != nil:
		if !s.Crash.CashedOut && s.Crash.Multiplier >= p.CashOutAt {
			return game.Move{Player: player, Action: game.ActionCashOut}, true
		}

	case s.Coinflip != nil:
		if s.Coinflip.Acceptor == "" {
			return game.Move{Player: opponent, Action: game.ActionAccept}, true
		}
	}
	return game.Move{}, false
}

// Sorted returns results ordered by game name.
func Sorted(rs []Result) []Result {
	out := slices.Clone(rs)
	slices.SortFunc(out, func(a, b Result) int { return cmp.Compare(a.Kind, b.Kind) })
	return out
}
