package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// table is a copy-in/copy-out map so callers never share record pointers.
type table[R any] struct {
	mu    sync.RWMutex
	rows  map[int]R
	clone func(R) R
}

func newTable[R any](clone func(R) R) *table[R] {
	return &table[R]{rows: make(map[int]R), clone: clone}
}

func (t *table[R]) get(id int) (R, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rows[id]
	if !ok {
		var zero R
		return zero, store.ErrNotFound
	}
	return t.clone(r), nil
}

func (t *table[R]) put(id int, r R) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id] = t.clone(r)
}

func (t *table[R]) list() []R {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]int, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]R, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.clone(t.rows[id]))
	}
	return out
}

// Records holds all three record kinds in memory. It is intended for tests
// and dev environments.
type Records struct {
	parking  *table[types.ParkingRecord]
	visitors *table[types.VisitorRecord]
	buses    *table[types.BusRecord]

	failMu    sync.Mutex
	failSaves error
}

func NewRecords() *Records {
	return &Records{
		parking:  newTable(types.ParkingRecord.Clone),
		visitors: newTable(types.VisitorRecord.Clone),
		buses:    newTable(types.BusRecord.Clone),
	}
}

// FailSaves makes subsequent saves return err (nil restores normal behavior).
func (s *Records) FailSaves(err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failSaves = err
}

func (s *Records) saveErr() error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failSaves
}

func (s *Records) GetParking(_ context.Context, id int) (types.ParkingRecord, error) {
	return s.parking.get(id)
}

func (s *Records) SaveParking(_ context.Context, rec types.ParkingRecord) error {
	if err := s.saveErr(); err != nil {
		return err
	}
	s.parking.put(rec.ID, rec)
	return nil
}

func (s *Records) ListParking(_ context.Context) ([]types.ParkingRecord, error) {
	return s.parking.list(), nil
}

func (s *Records) GetVisitor(_ context.Context, id int) (types.VisitorRecord, error) {
	return s.visitors.get(id)
}

func (s *Records) SaveVisitor(_ context.Context, rec types.VisitorRecord) error {
	if err := s.saveErr(); err != nil {
		return err
	}
	s.visitors.put(rec.ID, rec)
	return nil
}

func (s *Records) ListVisitors(_ context.Context) ([]types.VisitorRecord, error) {
	return s.visitors.list(), nil
}

func (s *Records) GetBus(_ context.Context, id int) (types.BusRecord, error) {
	return s.buses.get(id)
}

func (s *Records) SaveBus(_ context.Context, rec types.BusRecord) error {
	if err := s.saveErr(); err != nil {
		return err
	}
	s.buses.put(rec.ID, rec)
	return nil
}

func (s *Records) ListBuses(_ context.Context) ([]types.BusRecord, error) {
	return s.buses.list(), nil
}
