package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizeDatabaseURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"postgresql://u:p@db:5432/finance", "postgres://u:p@db:5432/finance?sslmode=disable"},
		{"postgres://db/finance?connect_timeout=5", "postgres://db/finance?connect_timeout=5&sslmode=disable"},
		{"postgres://db/finance?sslmode=require", "postgres://db/finance?sslmode=require"},
	}
	for _, c := range cases {
		if got := NormalizeDatabaseURL(c.in); got != c.want {
			t.Fatalf("NormalizeDatabaseURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{envDatabaseURL, envRedisURL, envPort, envStorage, envAuditUser, envTimezone, envChallengeSeed, envCORSOrigins} {
		t.Setenv(k, "")
	}

	cfg, err := Load(context.Background(), testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != defaultDatabaseURL {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.Port != "8080" || cfg.Storage != StoragePostgres {
		t.Fatalf("Port/Storage = %q/%q", cfg.Port, cfg.Storage)
	}
	if cfg.AuditUser != "Max Mustermann" {
		t.Fatalf("AuditUser = %q", cfg.AuditUser)
	}
	if cfg.Location.String() != "UTC" {
		t.Fatalf("Location = %s", cfg.Location)
	}
	if cfg.ChallengeSeed != nil {
		t.Fatalf("ChallengeSeed = %d, want nil", *cfg.ChallengeSeed)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(envStorage, "Memory")
	t.Setenv(envChallengeSeed, "7")
	t.Setenv(envCORSOrigins, "http://localhost:3000, https://app.example.com")
	t.Setenv(envTimezone, "UTC")
	t.Setenv(envAuditUser, "Erika Musterfrau")

	cfg, err := Load(context.Background(), testLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage != StorageMemory {
		t.Fatalf("Storage = %q", cfg.Storage)
	}
	if cfg.ChallengeSeed == nil || *cfg.ChallengeSeed != 7 {
		t.Fatalf("ChallengeSeed = %v", cfg.ChallengeSeed)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://app.example.com" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.AuditUser != "Erika Musterfrau" {
		t.Fatalf("AuditUser = %q", cfg.AuditUser)
	}
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Setenv(envStorage, "mongo")
	if _, err := Load(context.Background(), testLogger()); err == nil {
		t.Fatal("expected error for unknown storage")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PORT=9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(envPort, "")
	os.Unsetenv(envPort)

	if err := LoadDotEnv(context.Background(), testLogger(), filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(envPort); got != "9090" {
		t.Fatalf("PORT = %q, want 9090", got)
	}
}
