package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/service"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store/memory"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// recordingPublisher captures every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []types.ChangeEvent
}

func (p *recordingPublisher) Publish(ev types.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) Events() []types.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.ChangeEvent(nil), p.events...)
}

type fixture struct {
	records  *memory.Records
	statuses *memory.StatusStore
	pub      *recordingPublisher
	disp     *service.Dispatcher
	clock    *fakeClock
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

var (
	baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	nowTime  = time.Date(2026, 3, 1, 10, 15, 30, 123_456_789, time.UTC)
)

// newFixture seeds parking ids 3 and 7, visitor 1 and bus 1 plus two statuses
// per kind, all stamped at baseTime.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		records:  memory.NewRecords(),
		statuses: memory.NewStatusStore(),
		pub:      &recordingPublisher{},
		clock:    &fakeClock{t: nowTime},
	}

	for _, kind := range types.EntityTypes {
		f.statuses.Put(kind, types.Status{ID: 1, Name: "Waiting"})
		f.statuses.Put(kind, types.Status{ID: 2, Name: "Done"})
	}

	for _, id := range []int{3, 7} {
		if err := f.records.SaveParking(ctx, types.ParkingRecord{
			ID: id, CarNumber: "ABC-1234", FamilyNames: "Tanaka", ManagerName: "Sato",
			StatusID: 1, UpdateTime: baseTime,
		}); err != nil {
			t.Fatalf("seed parking: %v", err)
		}
	}
	if err := f.records.SaveVisitor(ctx, types.VisitorRecord{
		ID: 1, VisitReservationTime: baseTime, VisitorName: "Yamada", StatusID: 1, UpdateTime: baseTime,
	}); err != nil {
		t.Fatalf("seed visitor: %v", err)
	}
	if err := f.records.SaveBus(ctx, types.BusRecord{
		ID: 1, VisitReservationTime: baseTime, ScheduledDepTime: baseTime, BusName: "Bus 1",
		Passengers: 20, StatusID: 1, UpdateTime: baseTime,
	}); err != nil {
		t.Fatalf("seed bus: %v", err)
	}

	disp, err := service.NewDispatcher(f.records, f.statuses, f.pub, service.DispatcherConfig{
		Location: time.UTC,
		Now:      f.clock.Now,
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	f.disp = disp
	return f
}

func (f *fixture) parking(t *testing.T, id int) types.ParkingRecord {
	t.Helper()
	r, err := f.records.GetParking(context.Background(), id)
	if err != nil {
		t.Fatalf("GetParking(%d): %v", id, err)
	}
	return r
}

func (f *fixture) bus(t *testing.T, id int) types.BusRecord {
	t.Helper()
	r, err := f.records.GetBus(context.Background(), id)
	if err != nil {
		t.Fatalf("GetBus(%d): %v", id, err)
	}
	return r
}
