package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

type StatusStore struct {
	mu       sync.RWMutex
	statuses map[types.EntityType]map[int]types.Status
}

func NewStatusStore() *StatusStore {
	return &StatusStore{statuses: make(map[types.EntityType]map[int]types.Status)}
}

// Put adds or replaces a master row.
func (s *StatusStore) Put(kind types.EntityType, st types.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.statuses[kind]
	if !ok {
		m = make(map[int]types.Status)
		s.statuses[kind] = m
	}
	m[st.ID] = st
}

func (s *StatusStore) GetStatus(_ context.Context, kind types.EntityType, id int) (types.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[kind][id]
	if !ok {
		return types.Status{}, store.ErrNotFound
	}
	return st, nil
}

func (s *StatusStore) ListStatuses(_ context.Context, kind types.EntityType) ([]types.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Status, 0, len(s.statuses[kind]))
	for _, st := range s.statuses[kind] {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
