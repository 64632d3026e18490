// Package redisstore keeps ledger accounts in Redis. Each account is a hash
// holding coins, last_daily and version; a sorted set scored by coins indexes
// every account. Writes run under WATCH so a concurrent writer turns into
// ledger.ErrConflict.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/lox/wagerbot/internal/ledger"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. "wagerbot:".
	Prefix string
}

// Store is a Redis-backed ledger.Store.
type Store struct {
	client *redis.Client
	prefix string
}

var _ ledger.Store = (*Store)(nil)

// Open connects and pings the server.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", opts.Addr, err)
	}
	return &Store{client: client, prefix: opts.Prefix}, nil
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) accountKey(userID string) string { return s.prefix + "account:" + userID }
func (s *Store) indexKey() string { return s.prefix + "accounts" }

func (s *Store) Get(ctx context.Context, userID string) (ledger.Account, error) {
	fields, err := s.client.HGetAll(ctx, s.accountKey(userID)).Result()
	if err != nil {
		return ledger.Account{}, fmt.Errorf("read account %s: %w", userID, err)
	}
	return decode(userID, fields)
}

func decode(userID string, fields map[string]string) (ledger.Account, error) {
	if len(fields) == 0 {
		return ledger.Account{}, ledger.ErrNotFound
	}
	acct := ledger.Account{UserID: userID}
	var err error
	if acct.Coins, err = strconv.ParseInt(fields["coins"], 10, 64); err != nil {
		return ledger.Account{}, fmt.Errorf("account %s coins: %w", userID, err)
	}
	if acct.Version, err = strconv.ParseUint(fields["version"], 10, 64); err != nil {
		return ledger.Account{}, fmt.Errorf("account %s version: %w", userID, err)
	}
	if acct.LastDaily, err = ledger.ParseDate(fields["last_daily"]); err != nil {
		return ledger.Account{}, fmt.Errorf("account %s: %w", userID, err)
	}
	return acct, nil
}

func (s *Store) Put(ctx context.Context, acct ledger.Account) (ledger.Account, error) {
	key := s.accountKey(acct.UserID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.HGet(ctx, key, "version").Uint64()
		switch {
		case errors.Is(err, redis.Nil):
			cur = 0
		case err != nil:
			return err
		}
		if cur != acct.Version {
			return ledger.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				"coins", acct.Coins,
				"last_daily", acct.LastDaily.String(),
				"version", acct.Version+1,
			)
			pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(acct.Coins), Member: acct.UserID})
			return nil
		})
		return err
	}, key)

	switch {
	case errors.Is(err, ledger.ErrConflict), errors.Is(err, redis.TxFailedErr):
		return ledger.Account{}, ledger.ErrConflict
	case err != nil:
		return ledger.Account{}, fmt.Errorf("write account %s: %w", acct.UserID, err)
	}
	acct.Version++
	return acct, nil
}

func (s *Store) List(ctx context.Context) ([]ledger.Account, error) {
	users, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(users))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, user := range users {
			cmds[i] = pipe.HGetAll(ctx, s.accountKey(user))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]ledger.Account, 0, len(users))
	for i, user := range users {
		acct, err := decode(user, cmds[i].Val())
		if errors.Is(err, ledger.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, nil
}
