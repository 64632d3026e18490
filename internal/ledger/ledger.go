// Package ledger owns user coin balances.
//
// All reads and writes on a Ledger run on a single goroutine, so concurrent
// game settlements can never interleave a read-modify-write. Stores add a
// per-account version so writers outside this process are detected too; a
// lost race is retried and, if it keeps losing, reported as ErrConflict
// rather than dropped.
package ledger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// Ledger serializes account mutations over a Store.
type Ledger struct {
	store  Store
	logger *log.Logger
	cfg    config

	reqs      chan request
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type request struct {
	ctx  context.Context
	fn   func(context.Context) error
	errc chan error
}

// New starts a ledger over store. The ledger owns the store and closes it.
func New(store Store, logger *log.Logger, opts ...Option) *Ledger {
	if store == nil {
		panic("ledger: store is required")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &Ledger{
		store:  store,
		logger: logger.WithPrefix("ledger"),
		cfg:    cfg,
		reqs:   make(chan request),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Ledger) run() {
	defer close(l.done)
	for {
		select {
		case req := <-l.reqs:
			if err := req.ctx.Err(); err != nil {
				req.errc <- err
				continue
			}
			req.errc <- req.fn(req.ctx)
		case <-l.stop:
			return
		}
	}
}

// do runs fn on the ledger goroutine. Once fn has been handed over it always
// runs to completion, so a caller never sees a context error for a write
// that actually happened.
func (l *Ledger) do(ctx context.Context, fn func(context.Context) error) error {
	errc := make(chan error, 1)
	select {
	case l.reqs <- request{ctx: ctx, fn: fn, errc: errc}:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stop:
		return ErrClosed
	}
	return <-errc
}

// Close stops the ledger goroutine and closes the store.
func (l *Ledger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.stop)
		<-l.done
		err = l.store.Close()
	})
	return err
}

// StartCoins is the balance of a fresh account.
func (l *Ledger) StartCoins() int64 { return l.cfg.startCoins }

// DailyReward is the amount granted by ClaimDaily.
func (l *Ledger) DailyReward() int64 { return l.cfg.dailyReward }

func (l *Ledger) fresh(userID string) Account {
	return Account{UserID: userID, Coins: l.cfg.startCoins, LastDaily: Epoch}
}

func (l *Ledger) load(ctx context.Context, userID string) (Account, error) {
	acct, err := l.store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return l.fresh(userID), nil
	}
	if err != nil {
		return Account{}, fmt.Errorf("load account %s: %w", userID, err)
	}
	return acct, nil
}

// Account returns the user's account, or the default for a user that has
// never been stored. Nothing is written.
func (l *Ledger) Account(ctx context.Context, userID string) (Account, error) {
	var acct Account
	err := l.do(ctx, func(ctx context.Context) error {
		var err error
		acct, err = l.load(ctx, userID)
		return err
	})
	return acct, err
}

// Ensure returns the user's account, storing the default first if needed.
func (l *Ledger) Ensure(ctx context.Context, userID string) (Account, error) {
	var acct Account
	err := l.do(ctx, func(ctx context.Context) error {
		var err error
		acct, err = l.load(ctx, userID)
		if err != nil || acct.Version > 0 {
			return err
		}
		acct, err = l.store.Put(ctx, acct)
		if errors.Is(err, ErrConflict) {
			acct, err = l.load(ctx, userID)
		}
		return err
	})
	return acct, err
}

// Apply runs fn against the user's account and stores the result. If fn
// returns an error nothing is written and the error is returned unchanged.
func (l *Ledger) Apply(ctx context.Context, userID string, fn func(*Account) error) (Account, error) {
	var acct Account
	err := l.do(ctx, func(ctx context.Context) error {
		var err error
		acct, err = l.apply(ctx, userID, fn)
		return err
	})
	return acct, err
}

func (l *Ledger) apply(ctx context.Context, userID string, fn func(*Account) error) (Account, error) {
	for attempt := 0; ; attempt++ {
		cur, err := l.load(ctx, userID)
		if err != nil {
			return Account{}, err
		}

		next := cur
		if err := fn(&next); err != nil {
			return cur, err
		}
		next.UserID, next.Version = userID, cur.Version

		saved, err := l.store.Put(ctx, next)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, ErrConflict) {
			return cur, fmt.Errorf("save account %s: %w", userID, err)
		}
		if l.cfg.onConflict != nil {
			l.cfg.onConflict()
		}
		if attempt >= l.cfg.retries {
			l.logger.Error("giving up after repeated version conflicts", "user", userID, "attempts", attempt+1)
			return cur, fmt.Errorf("save account %s: %w", userID, err)
		}
		l.logger.Warn("account version conflict, retrying", "user", userID, "attempt", attempt+1)
	}
}

// Credit adds amount to the user's balance.
func (l *Ledger) Credit(ctx context.Context, userID string, amount int64) (Account, error) {
	if amount < 0 {
		return Account{}, fmt.Errorf("credit %d: amount must not be negative", amount)
	}
	return l.Apply(ctx, userID, func(a *Account) error {
		a.Coins += amount
		return nil
	})
}

// Debit removes amount from the user's balance, failing with
// ErrInsufficientFunds if the balance does not cover it.
func (l *Ledger) Debit(ctx context.Context, userID string, amount int64) (Account, error) {
	if amount < 0 {
		return Account{}, fmt.Errorf("debit %d: amount must not be negative", amount)
	}
	return l.Apply(ctx, userID, func(a *Account) error {
		if a.Coins < amount {
			return fmt.Errorf("%w: balance %d, need %d", ErrInsufficientFunds, a.Coins, amount)
		}
		a.Coins -= amount
		return nil
	})
}

// ClaimDaily grants the daily reward once per calendar day.
func (l *Ledger) ClaimDaily(ctx context.Context, userID string, today Date) (Account, error) {
	return l.Apply(ctx, userID, func(a *Account) error {
		if !a.LastDaily.Before(today) {
			return ErrAlreadyClaimed
		}
		a.Coins += l.cfg.dailyReward
		a.LastDaily = today
		return nil
	})
}

// Top returns up to n accounts by descending balance, ties by user id.
func (l *Ledger) Top(ctx context.Context, n int) ([]Account, error) {
	var out []Account
	err := l.do(ctx, func(ctx context.Context) error {
		all, err := l.store.List(ctx)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		slices.SortFunc(all, func(a, b Account) int {
			if c := cmp.Compare(b.Coins, a.Coins); c != 0 {
				return c
			}
			return cmp.Compare(a.UserID, b.UserID)
		})
		if n >= 0 && len(all) > n {
			all = all[:n]
		}
		out = all
		return nil
	})
	return out, err
}
