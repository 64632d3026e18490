package ledger

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by stores for unknown users.
	ErrNotFound = errors.New("account not found")
	// ErrConflict means the stored version moved underneath a write.
	ErrConflict = errors.New("account version conflict")
	// ErrInsufficientFunds rejects a debit larger than the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadyClaimed rejects a second daily claim on the same day.
	ErrAlreadyClaimed = errors.New("daily reward already claimed today")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("ledger closed")
)

// Account is one user's balance record.
type Account struct {
	UserID    string `json:"-"`
	Coins     int64  `json:"coins"`
	LastDaily Date   `json:"last_daily"`
	// Version increases with every successful Put. Zero means the account
	// has never been stored.
	Version uint64 `json:"-"`
}

// Store persists accounts. Put is a compare-and-swap: it succeeds only if
// the stored version equals acct.Version (zero for an insert) and returns
// the account with its new version.
type Store interface {
	Get(ctx context.Context, userID string) (Account, error)
	Put(ctx context.Context, acct Account) (Account, error)
	List(ctx context.Context) ([]Account, error)
	Close() error
}
