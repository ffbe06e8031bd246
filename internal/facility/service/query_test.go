package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/service"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

func TestQueryService_Statuses(t *testing.T) {
	f := newFixture(t)
	q := service.NewQueryService(f.records, f.statuses)

	sts, err := q.Statuses(context.Background(), types.EntityBus)
	if err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if len(sts) != 2 || sts[0].ID != 1 || sts[1].Name != "Done" {
		t.Errorf("unexpected statuses %+v", sts)
	}

	if _, err := q.Statuses(context.Background(), "boat"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryService_Records(t *testing.T) {
	f := newFixture(t)
	q := service.NewQueryService(f.records, f.statuses)

	out, err := q.Records(context.Background(), types.EntityParking)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	recs, ok := out.([]types.ParkingRecord)
	if !ok {
		t.Fatalf("expected []ParkingRecord, got %T", out)
	}
	if len(recs) != 2 || recs[0].ID != 3 || recs[1].ID != 7 {
		t.Errorf("unexpected records %+v", recs)
	}
}
