package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wagerbot/internal/ledger"
)

func newLedger(t *testing.T, store ledger.Store, opts ...ledger.Option) *ledger.Ledger {
	t.Helper()
	l := ledger.New(store, quietLogger(), opts...)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestAccountDefaultsWithoutPersisting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := ledger.NewMemoryStore()
	l := newLedger(t, store)

	acct, err := l.Account(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), acct.Coins)
	assert.Equal(t, ledger.Epoch, acct.LastDaily)

	_, err = store.Get(ctx, "alice")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	acct, err = l.Ensure(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), acct.Version)

	acct, err = l.Ensure(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), acct.Version, "ensure does not rewrite existing accounts")
}

func TestDebitAndCredit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newLedger(t, ledger.NewMemoryStore(), ledger.WithStartCoins(500))

	acct, err := l.Debit(ctx, "alice", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(300), acct.Coins)

	_, err = l.Debit(ctx, "alice", 301)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	acct, err = l.Credit(ctx, "alice", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(350), acct.Coins)

	_, err = l.Credit(ctx, "alice", -1)
	assert.Error(t, err)
	_, err = l.Debit(ctx, "alice", -1)
	assert.Error(t, err)

	acct, err = l.Account(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(350), acct.Coins)
}

func TestApplyErrorWritesNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := ledger.NewMemoryStore()
	l := newLedger(t, store)

	boom := errors.New("boom")
	_, err := l.Apply(ctx, "alice", func(a *ledger.Account) error {
		a.Coins = 0
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Get(ctx, "alice")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestConcurrentDeltasAreNeverLost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newLedger(t, ledger.NewMemoryStore())

	const workers, perWorker = 16, 50
	var wg sync.WaitGroup
	var want int64
	var mu sync.Mutex
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				delta := int64((w*perWorker+i)%7 - 3)
				user := fmt.Sprintf("user-%d", i%3)
				_, err := l.Apply(ctx, user, func(a *ledger.Account) error {
					a.Coins += delta
					return nil
				})
				assert.NoError(t, err)
				if user == "user-0" {
					mu.Lock()
					want += delta
					mu.Unlock()
				}
			}
		}(w)
	}
	wg.Wait()

	acct, err := l.Account(ctx, "user-0")
	require.NoError(t, err)
	assert.Equal(t, 1000+want, acct.Coins)
}

func TestClaimDailyOncePerDay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newLedger(t, ledger.NewMemoryStore(), ledger.WithDailyReward(100))
	today := ledger.Date{Year: 2025, Month: time.June, Day: 1}

	acct, err := l.ClaimDaily(ctx, "alice", today)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), acct.Coins)
	assert.Equal(t, today, acct.LastDaily)

	_, err = l.ClaimDaily(ctx, "alice", today)
	assert.ErrorIs(t, err, ledger.ErrAlreadyClaimed)

	acct, err = l.ClaimDaily(ctx, "alice", ledger.Date{Year: 2025, Month: time.June, Day: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), acct.Coins)
}

func TestTopOrdersByCoinsThenUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newLedger(t, ledger.NewMemoryStore())

	for user, coins := range map[string]int64{"dave": 50, "carol": 900, "bob": 900, "alice": 1200, "erin": 10} {
		_, err := l.Apply(ctx, user, func(a *ledger.Account) error {
			a.Coins = coins
			return nil
		})
		require.NoError(t, err)
	}

	top, err := l.Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{top[0].UserID, top[1].UserID, top[2].UserID})

	all, err := l.Top(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

// racingStore makes the first n puts lose a version race.
type racingStore struct {
	*ledger.MemoryStore
	losses atomic.Int32
}

func (s *racingStore) Put(ctx context.Context, acct ledger.Account) (ledger.Account, error) {
	if s.losses.Add(-1) >= 0 {
		return ledger.Account{}, ledger.ErrConflict
	}
	return s.MemoryStore.Put(ctx, acct)
}

func TestConflictsAreRetried(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &racingStore{MemoryStore: ledger.NewMemoryStore()}
	store.losses.Store(2)

	var conflicts atomic.Int32
	l := newLedger(t, store, ledger.WithConflictHook(func() { conflicts.Add(1) }))

	acct, err := l.Credit(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1010), acct.Coins)
	assert.Equal(t, int32(2), conflicts.Load())
}

func TestConflictsSurfaceAfterRetries(t *testing.T) {
	t.Parallel()

	store := &racingStore{MemoryStore: ledger.NewMemoryStore()}
	store.losses.Store(100)
	l := newLedger(t, store, ledger.WithRetries(2))

	_, err := l.Credit(context.Background(), "alice", 10)
	assert.ErrorIs(t, err, ledger.ErrConflict)
}

func TestClosedLedger(t *testing.T) {
	t.Parallel()

	l := ledger.New(ledger.NewMemoryStore(), quietLogger())
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	_, err := l.Account(context.Background(), "alice")
	assert.ErrorIs(t, err, ledger.ErrClosed)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	l := newLedger(t, ledger.NewMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Credit(ctx, "alice", 10)
	assert.ErrorIs(t, err, context.Canceled)

	acct, err := l.Account(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), acct.Coins)
}
