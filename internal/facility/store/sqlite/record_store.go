package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dbpkg "github.com/newosoal21-pixel/mceremony-reservation/internal/db"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
)

// RecordStore implements store.RecordStore. Reads go straight to the pool;
// every Save runs as one transaction on the shared writer.
type RecordStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

var _ store.RecordStore = (*RecordStore)(nil)

func NewRecordStore(db *sql.DB, writer *dbpkg.Worker) *RecordStore {
	return &RecordStore{db: db, writer: writer}
}

// ── Parking ──

const parkingColumns = `
parking_id, visit_reservation_time_ms, errands_relationship, car_number,
family_names, manager_name, departure_time_ms, parking_permit,
parking_position, parking_status_id, remarks_column, update_time_ms`

func scanParking(row scanner) (types.ParkingRecord, error) {
	var (
		r                     types.ParkingRecord
		visitMs, departureMs  sql.NullInt64
		permit, position, rem sql.NullString
		updateMs              int64
	)
	if err := row.Scan(
		&r.ID, &visitMs, &r.ErrandsRelationship, &r.CarNumber,
		&r.FamilyNames, &r.ManagerName, &departureMs, &permit,
		&position, &r.StatusID, &rem, &updateMs,
	); err != nil {
		return types.ParkingRecord{}, err
	}
	r.VisitReservationTime = nullMsToTime(visitMs)
	r.DepartureTime = nullMsToTime(departureMs)
	r.ParkingPermit = nullToString(permit)
	r.ParkingPosition = nullToString(position)
	r.RemarksColumn = nullToString(rem)
	r.UpdateTime = msToTime(updateMs)
	return r, nil
}

func (s *RecordStore) GetParking(ctx context.Context, id int) (types.ParkingRecord, error) {
	r, err := scanParking(s.db.QueryRowContext(ctx,
		"SELECT "+parkingColumns+" FROM parkings WHERE parking_id = ?;", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.ParkingRecord{}, store.ErrNotFound
	}
	if err != nil {
		return types.ParkingRecord{}, fmt.Errorf("GetParking %d: %w", id, err)
	}
	return r, nil
}

func (s *RecordStore) SaveParking(ctx context.Context, r types.ParkingRecord) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO parkings(`+parkingColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(parking_id) DO UPDATE SET
  visit_reservation_time_ms = excluded.visit_reservation_time_ms,
  errands_relationship      = excluded.errands_relationship,
  car_number                = excluded.car_number,
  family_names              = excluded.family_names,
  manager_name              = excluded.manager_name,
  departure_time_ms         = excluded.departure_time_ms,
  parking_permit            = excluded.parking_permit,
  parking_position          = excluded.parking_position,
  parking_status_id         = excluded.parking_status_id,
  remarks_column            = excluded.remarks_column,
  update_time_ms            = excluded.update_time_ms;`,
			r.ID, timeToNullMs(r.VisitReservationTime), r.ErrandsRelationship, r.CarNumber,
			r.FamilyNames, r.ManagerName, timeToNullMs(r.DepartureTime), stringToNull(r.ParkingPermit),
			stringToNull(r.ParkingPosition), r.StatusID, stringToNull(r.RemarksColumn), r.UpdateTime.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("SaveParking %d: %w", r.ID, err)
		}
		return nil
	})
}

func (s *RecordStore) ListParking(ctx context.Context) ([]types.ParkingRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+parkingColumns+" FROM parkings ORDER BY parking_id;")
	if err != nil {
		return nil, fmt.Errorf("ListParking: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanParking)
}

// ── Visitors ──

const visitorColumns = `
visitor_id, visit_reservation_time_ms, errands_relationship, visitor_name,
family_names, manager_name, compilation_cmp_time_ms, visit_situation_id,
remarks_column, update_time_ms`

func scanVisitor(row scanner) (types.VisitorRecord, error) {
	var (
		r                 types.VisitorRecord
		visitMs, updateMs int64
		cmpMs             sql.NullInt64
		rem               sql.NullString
	)
	if err := row.Scan(
		&r.ID, &visitMs, &r.ErrandsRelationship, &r.VisitorName,
		&r.FamilyNames, &r.ManagerName, &cmpMs, &r.StatusID,
		&rem, &updateMs,
	); err != nil {
		return types.VisitorRecord{}, err
	}
	r.VisitReservationTime = msToTime(visitMs)
	r.CompilationCmpTime = nullMsToTime(cmpMs)
	r.RemarksColumn = nullToString(rem)
	r.UpdateTime = msToTime(updateMs)
	return r, nil
}

func (s *RecordStore) GetVisitor(ctx context.Context, id int) (types.VisitorRecord, error) {
	r, err := scanVisitor(s.db.QueryRowContext(ctx,
		"SELECT "+visitorColumns+" FROM visitors WHERE visitor_id = ?;", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.VisitorRecord{}, store.ErrNotFound
	}
	if err != nil {
		return types.VisitorRecord{}, fmt.Errorf("GetVisitor %d: %w", id, err)
	}
	return r, nil
}

func (s *RecordStore) SaveVisitor(ctx context.Context, r types.VisitorRecord) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO visitors(`+visitorColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(visitor_id) DO UPDATE SET
  visit_reservation_time_ms = excluded.visit_reservation_time_ms,
  errands_relationship      = excluded.errands_relationship,
  visitor_name              = excluded.visitor_name,
  family_names              = excluded.family_names,
  manager_name              = excluded.manager_name,
  compilation_cmp_time_ms   = excluded.compilation_cmp_time_ms,
  visit_situation_id        = excluded.visit_situation_id,
  remarks_column            = excluded.remarks_column,
  update_time_ms            = excluded.update_time_ms;`,
			r.ID, r.VisitReservationTime.UTC().UnixMilli(), r.ErrandsRelationship, r.VisitorName,
			r.FamilyNames, r.ManagerName, timeToNullMs(r.CompilationCmpTime), r.StatusID,
			stringToNull(r.RemarksColumn), r.UpdateTime.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("SaveVisitor %d: %w", r.ID, err)
		}
		return nil
	})
}

func (s *RecordStore) ListVisitors(ctx context.Context) ([]types.VisitorRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+visitorColumns+" FROM visitors ORDER BY visitor_id;")
	if err != nil {
		return nil, fmt.Errorf("ListVisitors: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanVisitor)
}

// ── Shuttle buses ──

const busColumns = `
bus_id, visit_reservation_time_ms, bus_name, bus_destination,
emptybus_dep_time_ms, scheduled_dep_time_ms, departure_time_ms,
family_names, manager_name, passengers, bus_situations_id,
remarks_column, update_time_ms`

func scanBus(row scanner) (types.BusRecord, error) {
	var (
		r                              types.BusRecord
		visitMs, scheduledMs, updateMs int64
		emptyDepMs, departureMs        sql.NullInt64
		rem                            sql.NullString
	)
	if err := row.Scan(
		&r.ID, &visitMs, &r.BusName, &r.BusDestination,
		&emptyDepMs, &scheduledMs, &departureMs,
		&r.FamilyNames, &r.ManagerName, &r.Passengers, &r.StatusID,
		&rem, &updateMs,
	); err != nil {
		return types.BusRecord{}, err
	}
	r.VisitReservationTime = msToTime(visitMs)
	r.EmptybusDepTime = nullMsToTime(emptyDepMs)
	r.ScheduledDepTime = msToTime(scheduledMs)
	r.DepartureTime = nullMsToTime(departureMs)
	r.RemarksColumn = nullToString(rem)
	r.UpdateTime = msToTime(updateMs)
	return r, nil
}

func (s *RecordStore) GetBus(ctx context.Context, id int) (types.BusRecord, error) {
	r, err := scanBus(s.db.QueryRowContext(ctx,
		"SELECT "+busColumns+" FROM shuttlebus_reservations WHERE bus_id = ?;", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.BusRecord{}, store.ErrNotFound
	}
	if err != nil {
		return types.BusRecord{}, fmt.Errorf("GetBus %d: %w", id, err)
	}
	return r, nil
}

func (s *RecordStore) SaveBus(ctx context.Context, r types.BusRecord) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO shuttlebus_reservations(`+busColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(bus_id) DO UPDATE SET
  visit_reservation_time_ms = excluded.visit_reservation_time_ms,
  bus_name                  = excluded.bus_name,
  bus_destination           = excluded.bus_destination,
  emptybus_dep_time_ms      = excluded.emptybus_dep_time_ms,
  scheduled_dep_time_ms     = excluded.scheduled_dep_time_ms,
  departure_time_ms         = excluded.departure_time_ms,
  family_names              = excluded.family_names,
  manager_name              = excluded.manager_name,
  passengers                = excluded.passengers,
  bus_situations_id         = excluded.bus_situations_id,
  remarks_column            = excluded.remarks_column,
  update_time_ms            = excluded.update_time_ms;`,
			r.ID, r.VisitReservationTime.UTC().UnixMilli(), r.BusName, r.BusDestination,
			timeToNullMs(r.EmptybusDepTime), r.ScheduledDepTime.UTC().UnixMilli(), timeToNullMs(r.DepartureTime),
			r.FamilyNames, r.ManagerName, r.Passengers, r.StatusID,
			stringToNull(r.RemarksColumn), r.UpdateTime.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("SaveBus %d: %w", r.ID, err)
		}
		return nil
	})
}

func (s *RecordStore) ListBuses(ctx context.Context) ([]types.BusRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+busColumns+" FROM shuttlebus_reservations ORDER BY bus_id;")
	if err != nil {
		return nil, fmt.Errorf("ListBuses: %w", err)
	}
	defer rows.Close()
	return collect(rows, scanBus)
}

func collect[R any](rows *sql.Rows, scan func(scanner) (R, error)) ([]R, error) {
	var out []R
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
