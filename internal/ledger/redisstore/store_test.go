package redisstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wagerbot/internal/ledger"
	"github.com/lox/wagerbot/internal/ledger/ledgertest"
)

func redisAddr() string {
	if addr := os.Getenv("WAGERBOT_REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	prefix := fmt.Sprintf("wagerbot-test:%s:%d:", t.Name(), time.Now().UnixNano())
	s, err := Open(ctx, Options{Addr: redisAddr(), Prefix: prefix})
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() {
		keys, _ := s.client.Keys(context.Background(), prefix+"*").Result()
		if len(keys) > 0 {
			s.client.Del(context.Background(), keys...)
		}
		_ = s.Close()
	})
	return s
}

func TestStore(t *testing.T) {
	ledgertest.RunStoreTests(t, func(t *testing.T) ledger.Store {
		return openTestStore(t)
	})
}

func TestListIsOrderedByCoins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for user, coins := range map[string]int64{"low": 10, "high": 5000, "mid": 700} {
		_, err := s.Put(ctx, ledger.Account{UserID: user, Coins: coins, LastDaily: ledger.Epoch})
		require.NoError(t, err)
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "high", all[0].UserID)
	assert.Equal(t, "low", all[2].UserID)
}
