package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type SeedDevOptions struct {
	// Password given to the seeded "admin" and "staff" accounts.
	Password string
	// Now anchors the sample reservation times; zero means time.Now().
	Now time.Time
}

var (
	devParkingStatuses = []string{"Not arrived", "Parked", "Departed", "Cancelled"}
	devVisitSituations = []string{"Waiting", "Received", "Guided", "Left"}
	devBusSituations   = []string{"Scheduled", "Boarding", "Departed", "Arrived"}
)

// SeedDev fills an empty dev database with status masters, a handful of
// records and two accounts. Rows that already exist are left alone.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	if opt.Password == "" {
		return fmt.Errorf("seed dev: empty password")
	}
	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}
	nowMs := now.UTC().UnixMilli()

	masters := []struct {
		table, idCol, nameCol string
		names                 []string
	}{
		{"parking_statuses", "parking_status_id", "parking_status_name", devParkingStatuses},
		{"visit_situations", "visit_situation_id", "visit_situations_name", devVisitSituations},
		{"bus_situations", "bus_situations_id", "bus_situations_name", devBusSituations},
	}
	for _, m := range masters {
		q := fmt.Sprintf("INSERT OR IGNORE INTO %s(%s, %s) VALUES(?, ?);", m.table, m.idCol, m.nameCol)
		for i, name := range m.names {
			if _, err := db.ExecContext(ctx, q, i+1, name); err != nil {
				return fmt.Errorf("seed %s: %w", m.table, err)
			}
		}
	}

	visitMs := now.Add(2 * time.Hour).UTC().UnixMilli()
	busMs := now.Add(3 * time.Hour).UTC().UnixMilli()

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO parkings(
  parking_id, visit_reservation_time_ms, errands_relationship, car_number,
  family_names, manager_name, parking_status_id, update_time_ms
) VALUES
  (1, ?, 'Family', 'ABC-1234', 'Tanaka', 'Sato', 1, ?),
  (2, ?, 'Guest', 'XYZ-9876', 'Suzuki', 'Sato', 1, ?);`,
		visitMs, nowMs, visitMs, nowMs); err != nil {
		return fmt.Errorf("seed parkings: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO visitors(
  visitor_id, visit_reservation_time_ms, errands_relationship, visitor_name,
  family_names, manager_name, visit_situation_id, update_time_ms
) VALUES
  (1, ?, 'Friend', 'Yamada Hanako', 'Tanaka', 'Ito', 1, ?);`,
		visitMs, nowMs); err != nil {
		return fmt.Errorf("seed visitors: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO shuttlebus_reservations(
  bus_id, visit_reservation_time_ms, bus_name, bus_destination,
  scheduled_dep_time_ms, family_names, manager_name, passengers,
  bus_situations_id, update_time_ms
) VALUES
  (1, ?, 'Bus 1', 'Station North Exit', ?, 'Tanaka', 'Kato', 20, 1, ?);`,
		visitMs, busMs, nowMs); err != nil {
		return fmt.Errorf("seed shuttlebus_reservations: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opt.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO employees(user_name, password_hash, is_admin, delete_flag)
VALUES ('admin', ?, 1, 0), ('staff', ?, 0, 0);`, string(hash), string(hash)); err != nil {
		return fmt.Errorf("seed employees: %w", err)
	}

	return nil
}
