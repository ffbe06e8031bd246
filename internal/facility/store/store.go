package store

import (
	"context"
	"errors"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// ErrNotFound is returned by lookups when the id does not exist.
var ErrNotFound = errors.New("not found")

// ParkingStore, VisitorStore and BusStore are the find-by-id / save / find-all
// contracts of the storage engine. Save is an upsert and must be atomic: either
// every column of the record is written or none is.
type ParkingStore interface {
	GetParking(ctx context.Context, id int) (types.ParkingRecord, error)
	SaveParking(ctx context.Context, rec types.ParkingRecord) error
	ListParking(ctx context.Context) ([]types.ParkingRecord, error)
}

type VisitorStore interface {
	GetVisitor(ctx context.Context, id int) (types.VisitorRecord, error)
	SaveVisitor(ctx context.Context, rec types.VisitorRecord) error
	ListVisitors(ctx context.Context) ([]types.VisitorRecord, error)
}

type BusStore interface {
	GetBus(ctx context.Context, id int) (types.BusRecord, error)
	SaveBus(ctx context.Context, rec types.BusRecord) error
	ListBuses(ctx context.Context) ([]types.BusRecord, error)
}

// RecordStore bundles the three record contracts.
type RecordStore interface {
	ParkingStore
	VisitorStore
	BusStore
}
