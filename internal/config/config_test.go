package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "databaseURL: postgres://localhost/garagelog\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Port)
	}
	if cfg.EventsExchange != "garagelog.events" {
		t.Fatalf("exchange = %q", cfg.EventsExchange)
	}
	if cfg.MinioBucket != "garagelog-documents" {
		t.Fatalf("bucket = %q", cfg.MinioBucket)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "port: \"9000\"\ndatabaseURL: postgres://file/db\n")
	t.Setenv("GARAGELOG_PORT", "7000")
	t.Setenv("GARAGELOG_DATABASE_URL", "postgres://env/db")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Fatalf("port = %q, want env override", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://env/db" {
		t.Fatalf("databaseURL = %q, want env override", cfg.DatabaseURL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestParseSessionTTL(t *testing.T) {
	d, err := ParseSessionTTL("")
	if err != nil || d != 24*time.Hour {
		t.Fatalf("default TTL = %v err=%v, want 24h", d, err)
	}
	d, err = ParseSessionTTL("90m")
	if err != nil || d != 90*time.Minute {
		t.Fatalf("ttl = %v err=%v, want 90m", d, err)
	}
	if _, err := ParseSessionTTL("-1h"); err == nil {
		t.Fatal("expected error for negative TTL")
	}
	if _, err := ParseSessionTTL("soon"); err == nil {
		t.Fatal("expected error for unparsable TTL")
	}
}
