package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"FACILITY_HTTP_ADDR", "FACILITY_ENV", "FACILITY_DB_PATH", "FACILITY_TIMEZONE",
		"FACILITY_SESSION_TTL_MINUTES", "FACILITY_SUBSCRIBER_BUFFER", "FACILITY_ALLOWED_ORIGINS",
		"FACILITY_SECURE_COOKIES",
	} {
		t.Setenv(k, "")
	}

	cfg := config.FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.Env != "dev" {
		t.Errorf("expected dev, got %q", cfg.Env)
	}
	if cfg.SessionTTL() != 30*time.Minute {
		t.Errorf("expected 30m ttl, got %s", cfg.SessionTTL())
	}
	if cfg.SubscriberBuffer != 64 {
		t.Errorf("expected buffer 64, got %d", cfg.SubscriberBuffer)
	}
	if cfg.SecureCookies {
		t.Error("secure cookies should default off")
	}
	if cfg.AllowedOrigins != nil {
		t.Errorf("expected no origins, got %v", cfg.AllowedOrigins)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("FACILITY_ENV", "PROD")
	t.Setenv("FACILITY_SESSION_TTL_MINUTES", "0")
	t.Setenv("FACILITY_MAX_SUBSCRIBERS", "-3")
	t.Setenv("FACILITY_SECURE_COOKIES", "true")
	t.Setenv("FACILITY_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := config.FromEnv()
	if cfg.Env != "prod" {
		t.Errorf("expected prod, got %q", cfg.Env)
	}
	if cfg.SessionTTL() != 0 {
		t.Errorf("expected ttl 0, got %s", cfg.SessionTTL())
	}
	if cfg.MaxSubscribers != 0 {
		t.Errorf("negative value should fall back to 0, got %d", cfg.MaxSubscribers)
	}
	if !cfg.SecureCookies {
		t.Error("expected secure cookies")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestFromEnv_UnknownEnvIsDev(t *testing.T) {
	t.Setenv("FACILITY_ENV", "staging")
	if cfg := config.FromEnv(); cfg.Env != "dev" {
		t.Errorf("expected dev, got %q", cfg.Env)
	}
}

func TestLoadFile_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facility.yaml")
	data := "http_addr: \":9000\"\ntimezone: Asia/Tokyo\nsubscriber_buffer: 0\nallowed_origins:\n  - https://desk.example\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	base := config.Config{HTTPAddr: ":8080", Env: "prod", DBPath: "/var/lib/facility.db", SubscriberBuffer: 64}
	cfg, err := config.LoadFile(path, base)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("expected :9000, got %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != base.DBPath || cfg.Env != "prod" {
		t.Errorf("keys absent from the file must keep base values, got %+v", cfg)
	}
	if cfg.SubscriberBuffer != 64 {
		t.Errorf("non-positive buffer should reset to 64, got %d", cfg.SubscriberBuffer)
	}
	if len(cfg.AllowedOrigins) != 1 {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if loc.String() != "Asia/Tokyo" {
		t.Errorf("expected Asia/Tokyo, got %s", loc)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	base := config.Config{HTTPAddr: ":8080"}

	if _, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), base); err == nil {
		t.Error("expected error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("http_addr: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := config.LoadFile(path, base)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("base should be returned on error, got %+v", got)
	}
}

func TestLocation_LocalAndInvalid(t *testing.T) {
	if loc, err := (config.Config{TimeZone: "local"}).Location(); err != nil || loc != time.Local {
		t.Errorf("expected time.Local, got %v, %v", loc, err)
	}
	if _, err := (config.Config{TimeZone: "Not/AZone"}).Location(); err == nil {
		t.Error("expected error for unknown zone")
	}
}
