package ledger

import (
	"context"
	"sync"
)

// MemoryStore keeps accounts in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]Account
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]Account)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acct, nil
}

func (s *MemoryStore) Put(_ context.Context, acct Account) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accounts[acct.UserID].Version != acct.Version {
		return Account{}, ErrConflict
	}
	acct.Version++
	s.accounts[acct.UserID] = acct
	return acct, nil
}

func (s *MemoryStore) List(context.Context) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		out = append(out, acct)
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
