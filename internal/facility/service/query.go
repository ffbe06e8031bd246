package service

import (
	"context"
	"fmt"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// QueryService serves the read side of the dashboard: status masters for the
// edit dropdowns and full record lists for initial paint and resync.
type QueryService struct {
	records  store.RecordStore
	statuses store.StatusStore
}

func NewQueryService(records store.RecordStore, statuses store.StatusStore) *QueryService {
	return &QueryService{records: records, statuses: statuses}
}

func (q *QueryService) Statuses(ctx context.Context, kind types.EntityType) ([]types.Status, error) {
	if !kind.Valid() {
		return nil, fieldErr(ErrNotFound, "entityType", "Unknown record type %q.", kind)
	}
	sts, err := q.statuses.ListStatuses(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s statuses: %w", kind, err)
	}
	return sts, nil
}

// Records returns every record of kind as a JSON-encodable slice.
func (q *QueryService) Records(ctx context.Context, kind types.EntityType) (any, error) {
	var (
		out any
		err error
	)
	switch kind {
	case types.EntityParking:
		out, err = nonNil(q.records.ListParking(ctx))
	case types.EntityVisitor:
		out, err = nonNil(q.records.ListVisitors(ctx))
	case types.EntityBus:
		out, err = nonNil(q.records.ListBuses(ctx))
	default:
		return nil, fieldErr(ErrNotFound, "entityType", "Unknown record type %q.", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", kind, err)
	}
	return out, nil
}

func nonNil[R any](rs []R, err error) ([]R, error) {
	if rs == nil {
		rs = []R{}
	}
	return rs, err
}
