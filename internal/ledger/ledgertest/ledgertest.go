// Package ledgertest holds a behavioural suite every ledger.Store must pass.
package ledgertest

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wagerbot/internal/ledger"
)

// QuietLogger discards everything below error level.
func QuietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// RunStoreTests exercises the compare-and-swap contract of a store. open must
// return an empty store.
func RunStoreTests(t *testing.T, open func(t *testing.T) ledger.Store) {
	t.Run("missing account", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(context.Background(), "nobody")
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})

	t.Run("insert and read back", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		day := ledger.Date{Year: 2024, Month: time.March, Day: 9}

		saved, err := s.Put(ctx, ledger.Account{UserID: "alice", Coins: 1250, LastDaily: day})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), saved.Version)

		got, err := s.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.UserID)
		assert.Equal(t, int64(1250), got.Coins)
		assert.Equal(t, day, got.LastDaily)
		assert.Equal(t, saved.Version, got.Version)
	})

	t.Run("stale writes conflict", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		first, err := s.Put(ctx, ledger.Account{UserID: "bob", Coins: 10, LastDaily: ledger.Epoch})
		require.NoError(t, err)

		_, err = s.Put(ctx, ledger.Account{UserID: "bob", Coins: 99, LastDaily: ledger.Epoch})
		assert.ErrorIs(t, err, ledger.ErrConflict, "second insert must conflict")

		first.Coins = 20
		second, err := s.Put(ctx, first)
		require.NoError(t, err)
		assert.Greater(t, second.Version, first.Version)

		first.Coins = 30
		_, err = s.Put(ctx, first)
		assert.ErrorIs(t, err, ledger.ErrConflict, "stale version must conflict")

		got, err := s.Get(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(20), got.Coins)
	})

	t.Run("negative balances round trip", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		_, err := s.Put(ctx, ledger.Account{UserID: "debtor", Coins: -40, LastDaily: ledger.Epoch})
		require.NoError(t, err)
		got, err := s.Get(ctx, "debtor")
		require.NoError(t, err)
		assert.Equal(t, int64(-40), got.Coins)
	})

	t.Run("list", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		for i, user := range []string{"a", "b", "c"} {
			_, err := s.Put(ctx, ledger.Account{UserID: user, Coins: int64(i * 100), LastDaily: ledger.Epoch})
			require.NoError(t, err)
		}

		all, err := s.List(ctx)
		require.NoError(t, err)
		coins := map[string]int64{}
		for _, a := range all {
			coins[a.UserID] = a.Coins
			assert.NotZero(t, a.Version)
		}
		assert.Equal(t, map[string]int64{"a": 0, "b": 100, "c": 200}, coins)
	})
}
