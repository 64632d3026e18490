package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/wagerbot/internal/fileutil"
)

// FileStore keeps the whole ledger in one JSON document keyed by user id:
//
//	{"123": {"coins": 1000, "last_daily": "2000-01-01"}}
//
// Every Put rewrites the document with write-temp-then-rename. A failed write
// leaves both the file and the in-memory copy unchanged.
type FileStore struct {
	path   string
	logger *log.Logger

	mu       sync.Mutex
	accounts map[string]Account
}

var _ Store = (*FileStore)(nil)

type fileRecord struct {
	Coins     int64 `json:"coins"`
	LastDaily Date  `json:"last_daily"`
}

// OpenFileStore loads path. A missing file yields an empty ledger. A corrupt
// file is renamed to path.corrupt-<timestamp> and the ledger starts empty;
// entries that are not account records are skipped.
func OpenFileStore(path string, logger *log.Logger) (*FileStore, error) {
	s := &FileStore{
		path:     path,
		logger:   logger.WithPrefix("ledger-file"),
		accounts: make(map[string]Account),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Info("ledger file not found, starting empty", "path", path)
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format("20060102T150405.000000000"))
		if rerr := os.Rename(path, aside); rerr != nil {
			return nil, fmt.Errorf("move corrupt ledger %s aside: %w", path, rerr)
		}
		s.logger.Warn("ledger file is corrupt, moved aside and starting empty", "path", path, "moved_to", aside, "err", err)
		return s, nil
	}
	for user, msg := range raw {
		var rec fileRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			s.logger.Warn("skipping malformed ledger entry", "user", user, "err", err)
			continue
		}
		if rec.LastDaily.IsZero() {
			rec.LastDaily = Epoch
		}
		s.accounts[user] = Account{UserID: user, Coins: rec.Coins, LastDaily: rec.LastDaily, Version: 1}
	}
	s.logger.Debug("ledger loaded", "path", path, "accounts", len(s.accounts))
	return s, nil
}

func (s *FileStore) Get(_ context.Context, userID string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acct, nil
}

func (s *FileStore) Put(_ context.Context, acct Account) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accounts[acct.UserID].Version != acct.Version {
		return Account{}, ErrConflict
	}

	doc := make(map[string]fileRecord, len(s.accounts)+1)
	for user, a := range s.accounts {
		doc[user] = fileRecord{Coins: a.Coins, LastDaily: a.LastDaily}
	}
	doc[acct.UserID] = fileRecord{Coins: acct.Coins, LastDaily: acct.LastDaily}

	if err := fileutil.WriteJSONAtomic(s.path, doc, 0o644); err != nil {
		s.logger.Error("ledger save failed", "path", s.path, "err", err)
		return Account{}, fmt.Errorf("save ledger: %w", err)
	}

	acct.Version++
	s.accounts[acct.UserID] = acct
	return acct, nil
}

func (s *FileStore) List(context.Context) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		out = append(out, acct)
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }
