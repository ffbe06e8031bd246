package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	// gRPC change feed; empty disables the listener.
	GRPCAddr  string `yaml:"grpc_addr"`
	GRPCToken string `yaml:"grpc_token"`

	// DB
	Env    string `yaml:"env"`     // "dev" | "prod"
	DBPath string `yaml:"db_path"` // e.g. "./data/facility.db"

	// Location used to parse and format dashboard timestamps.
	TimeZone string `yaml:"timezone"`

	// Sessions
	SessionTTLMinutes   int  `yaml:"session_ttl_minutes"`   // 0 = never expire idle sessions
	PruneIntervalMinute int  `yaml:"prune_interval_minutes"` // how often idle sessions are swept
	SecureCookies       bool `yaml:"secure_cookies"`

	// Broadcast
	MaxSubscribers   int      `yaml:"max_subscribers"` // 0 = unlimited
	SubscriberBuffer int      `yaml:"subscriber_buffer"`
	AllowedOrigins   []string `yaml:"allowed_origins"`

	// Password applied to the seeded dev accounts.
	DevSeedPassword string `yaml:"dev_seed_password"`
}

func FromEnv() Config {
	addr := getenvDefault("FACILITY_HTTP_ADDR", ":8080")
	grpcAddr := getenvDefault("FACILITY_GRPC_ADDR", "127.0.0.1:9090")

	env := strings.ToLower(getenvDefault("FACILITY_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("FACILITY_DB_PATH", "./data/facility.db")

	secure := strings.EqualFold(os.Getenv("FACILITY_SECURE_COOKIES"), "true") ||
		os.Getenv("FACILITY_SECURE_COOKIES") == "1"

	return Config{
		HTTPAddr:  addr,
		GRPCAddr:  grpcAddr,
		GRPCToken: os.Getenv("FACILITY_GRPC_TOKEN"),

		Env:      env,
		DBPath:   dbPath,
		TimeZone: getenvDefault("FACILITY_TIMEZONE", "Local"),

		SessionTTLMinutes:   getenvInt("FACILITY_SESSION_TTL_MINUTES", 30),
		PruneIntervalMinute: getenvInt("FACILITY_SESSION_PRUNE_MINUTES", 1),
		SecureCookies:       secure,

		MaxSubscribers:   getenvInt("FACILITY_MAX_SUBSCRIBERS", 0),
		SubscriberBuffer: getenvInt("FACILITY_SUBSCRIBER_BUFFER", 64),
		AllowedOrigins:   splitCSV(os.Getenv("FACILITY_ALLOWED_ORIGINS")),

		DevSeedPassword: getenvDefault("FACILITY_DEV_SEED_PASSWORD", "changeme"),
	}
}

// LoadFile overlays the YAML document at path onto base. Keys missing from the
// file keep the value they had in base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Env != "dev" && cfg.Env != "prod" {
		cfg.Env = "dev"
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = 64
	}
	return cfg, nil
}

// Location resolves TimeZone, falling back to the process local zone.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || strings.EqualFold(c.TimeZone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) PruneInterval() time.Duration {
	return time.Duration(c.PruneIntervalMinute) * time.Minute
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
