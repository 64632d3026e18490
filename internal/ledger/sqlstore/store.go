// Package sqlstore keeps ledger accounts in SQLite, one row per user with a
// version column for compare-and-swap updates.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/lox/wagerbot/internal/ledger"
)

const schema = `CREATE TABLE IF NOT EXISTS accounts (
	user_id    TEXT PRIMARY KEY,
	coins      INTEGER NOT NULL,
	last_daily TEXT NOT NULL,
	version    INTEGER NOT NULL
)`

// Store is a SQLite-backed ledger.Store.
type Store struct {
	db *sql.DB
}

var _ ledger.Store = (*Store)(nil)

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, userID string) (ledger.Account, error) {
	var (
		acct  = ledger.Account{UserID: userID}
		daily string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT coins, last_daily, version FROM accounts WHERE user_id = ?`, userID,
	).Scan(&acct.Coins, &daily, &acct.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{}, ledger.ErrNotFound
	}
	if err != nil {
		return ledger.Account{}, fmt.Errorf("select account: %w", err)
	}
	if acct.LastDaily, err = ledger.ParseDate(daily); err != nil {
		return ledger.Account{}, err
	}
	return acct, nil
}

func (s *Store) Put(ctx context.Context, acct ledger.Account) (ledger.Account, error) {
	var (
		res sql.Result
		err error
	)
	if acct.Version == 0 {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO accounts (user_id, coins, last_daily, version) VALUES (?, ?, ?, 1)
			 ON CONFLICT(user_id) DO NOTHING`,
			acct.UserID, acct.Coins, acct.LastDaily.String())
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE accounts SET coins = ?, last_daily = ?, version = version + 1
			 WHERE user_id = ? AND version = ?`,
			acct.Coins, acct.LastDaily.String(), acct.UserID, acct.Version)
	}
	if err != nil {
		return ledger.Account{}, fmt.Errorf("write account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ledger.Account{}, fmt.Errorf("write account: %w", err)
	}
	if n == 0 {
		return ledger.Account{}, ledger.ErrConflict
	}
	acct.Version++
	return acct, nil
}

func (s *Store) List(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, coins, last_daily, version FROM accounts`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []ledger.Account
	for rows.Next() {
		var (
			acct  ledger.Account
			daily string
		)
		if err := rows.Scan(&acct.UserID, &acct.Coins, &daily, &acct.Version); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if acct.LastDaily, err = ledger.ParseDate(daily); err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, rows.Err()
}
