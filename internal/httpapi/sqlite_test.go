package httpapi_test

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/db"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/broadcast"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/service"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/session"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/store/sqlite"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/httpapi"
)

// ── SQLite end to end ────────────────────────────────────────────────────────

func TestSQLite_LoginUpdateAndReload(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)

	sqlDB, err := db.Open(ctx, db.Config{Path: filepath.Join(t.TempDir(), "facility.db"), Env: "dev"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	seedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := db.SeedDev(ctx, sqlDB, db.SeedDevOptions{Password: testPassword, Now: seedAt}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	writer := db.NewWorker(sqlDB)
	t.Cleanup(writer.Close)

	records := sqlite.NewRecordStore(sqlDB, writer)
	statuses := sqlite.NewStatusStore(sqlDB)
	hub := broadcast.NewHub(logger, 0, 8)
	t.Cleanup(hub.Close)

	disp, err := service.NewDispatcher(records, statuses, hub, service.DispatcherConfig{Location: time.UTC})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	reg := session.NewRegistry()
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:     logger,
		Dispatcher: disp,
		Queries:    service.NewQueryService(records, statuses),
		Auth:       session.NewAuthenticator(sqlite.NewAccountStore(sqlDB), reg, session.NewFixationGuard(reg), logger),
		Sessions:   reg,
		Hub:        hub,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	env := &testEnv{ts: ts, sessions: reg, hub: hub}
	cookie := env.login(t, "staff")

	resp := env.do(t, http.MethodPost, "/api/parking/update", cookie, "application/json",
		[]byte(`{"id":"1","field":"status","value":"2","extraField":"departureTime","extraValue":"2026/03/01 12:00"}`))
	body := decodeBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}

	rec, err := records.GetParking(ctx, 1)
	if err != nil {
		t.Fatalf("GetParking: %v", err)
	}
	if rec.StatusID != 2 {
		t.Errorf("expected status 2, got %d", rec.StatusID)
	}
	if rec.DepartureTime == nil || !rec.DepartureTime.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected departure %v", rec.DepartureTime)
	}
	if !rec.UpdateTime.After(seedAt) {
		t.Errorf("update time %s should move past the seed time", rec.UpdateTime)
	}

	// An unknown status id is refused by the dispatcher before reaching the
	// foreign key.
	resp = env.do(t, http.MethodPost, "/api/parking/update", cookie, "application/json",
		[]byte(`{"id":"1","field":"status","value":"42"}`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown status, got %d", resp.StatusCode)
	}
}
