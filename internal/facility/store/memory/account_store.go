package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]types.Account
}

func NewAccountStore(accounts ...types.Account) *AccountStore {
	s := &AccountStore{accounts: make(map[string]types.Account, len(accounts))}
	for _, a := range accounts {
		s.accounts[strings.TrimSpace(a.Username)] = a
	}
	return s
}

func (s *AccountStore) Put(a types.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.TrimSpace(a.Username)] = a
}

func (s *AccountStore) FindAccount(_ context.Context, username string) (types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[username]
	if !ok {
		return types.Account{}, store.ErrNotFound
	}
	return a, nil
}
