package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("RATE_LIMIT_MAX", "")
	t.Setenv("BODY_LIMIT_MB", "")
	t.Setenv("LOCK_TTL_SECONDS", "")

	cfg := Load()
	if cfg.Port != "3000" {
		t.Fatalf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if cfg.RateLimitMax != 120 {
		t.Fatalf("RateLimitMax = %d, want 120", cfg.RateLimitMax)
	}
	if cfg.BodyLimitBytes != 4*1024*1024 {
		t.Fatalf("BodyLimitBytes = %d", cfg.BodyLimitBytes)
	}
	if cfg.LockTTL != 30*time.Second {
		t.Fatalf("LockTTL = %s", cfg.LockTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("RATE_LIMIT_MAX", "7")
	t.Setenv("LOCK_TTL_SECONDS", "abc")

	cfg := Load()
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.RateLimitMax != 7 {
		t.Fatalf("RateLimitMax = %d, want 7", cfg.RateLimitMax)
	}
	if cfg.LockTTL != 30*time.Second {
		t.Fatalf("invalid LOCK_TTL_SECONDS should fall back, got %s", cfg.LockTTL)
	}
}
