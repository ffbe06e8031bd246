package db_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/db"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:dbtest_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name))
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// ── Migrate ──

func TestMigrate_Idempotent(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, conn); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := db.Migrate(ctx, conn); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 applied migration, got %d", n)
	}
}

func TestSeedDev_Repeatable(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	if err := db.Migrate(ctx, conn); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	opt := db.SeedDevOptions{Password: "pw", Now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	for i := 0; i < 2; i++ {
		if err := db.SeedDev(ctx, conn, opt); err != nil {
			t.Fatalf("SeedDev #%d: %v", i+1, err)
		}
	}

	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 employees, got %d", n)
	}
}

func TestSeedDev_RequiresPassword(t *testing.T) {
	conn := openMemory(t)
	if err := db.SeedDev(context.Background(), conn, db.SeedDevOptions{}); err == nil {
		t.Fatal("expected error for empty password")
	}
}

// ── Worker ──

func TestWorker_RollsBackOnError(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	if _, err := conn.ExecContext(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	var observed []error
	w := db.NewObservedWorker(conn, func(_ time.Duration, err error) { observed = append(observed, err) })
	defer w.Close()

	boom := errors.New("boom")
	err := w.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO kv VALUES ('a', '1')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected rollback, found %d rows", n)
	}
	if len(observed) != 1 || !errors.Is(observed[0], boom) {
		t.Errorf("observer saw %v", observed)
	}
}

func TestWorker_DoAfterClose(t *testing.T) {
	conn := openMemory(t)
	w := db.NewWorker(conn)
	w.Close()
	w.Close()

	err := w.Do(context.Background(), func(context.Context, *sql.Tx) error { return nil })
	if !errors.Is(err, db.ErrWorkerClosed) {
		t.Errorf("expected ErrWorkerClosed, got %v", err)
	}
}

func TestWorker_CanceledContext(t *testing.T) {
	conn := openMemory(t)
	w := db.NewWorker(conn)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Do(ctx, func(context.Context, *sql.Tx) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWorker_CommitReportedDespiteLateCancel(t *testing.T) {
	conn := openMemory(t)
	bg := context.Background()
	if _, err := conn.ExecContext(bg, `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	ctx, cancel := context.WithCancel(bg)
	defer cancel()

	// The observer runs after Commit and before the result is handed back, so
	// cancelling here lands exactly between the two.
	w := db.NewObservedWorker(conn, func(time.Duration, error) { cancel() })
	defer w.Close()

	err := w.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO kv VALUES ('a', '1')`)
		return err
	})
	if err != nil {
		t.Fatalf("committed transaction reported as %v", err)
	}
	if ctx.Err() == nil {
		t.Fatal("observer should have cancelled the context")
	}

	var n int
	if err := conn.QueryRowContext(bg, `SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected the row to be committed, found %d", n)
	}
}
