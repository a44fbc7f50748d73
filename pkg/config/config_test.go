package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/matzehuels/brewlens/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source.Strategy != "batch" {
		t.Errorf("default strategy = %q, want batch", cfg.Source.Strategy)
	}
	if cfg.Source.BatchSize != 50 {
		t.Errorf("default batch size = %d, want 50", cfg.Source.BatchSize)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("default backend = %q, want file", cfg.Cache.Backend)
	}
	if time.Duration(cfg.Cache.TTL) != 24*time.Hour {
		t.Errorf("default TTL = %v, want 24h", time.Duration(cfg.Cache.TTL))
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[source]
strategy = "api"
batch_size = 25
concurrency = 4

[cache]
backend = "redis"
ttl = "1h30m"
redis_addr = "cache.internal:6379"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source.Strategy != "api" {
		t.Errorf("strategy = %q", cfg.Source.Strategy)
	}
	if cfg.Source.BatchSize != 25 {
		t.Errorf("batch size = %d", cfg.Source.BatchSize)
	}
	if cfg.Source.Concurrency != 4 {
		t.Errorf("concurrency = %d", cfg.Source.Concurrency)
	}
	if cfg.Cache.Backend != BackendRedis {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
	if time.Duration(cfg.Cache.TTL) != 90*time.Minute {
		t.Errorf("TTL = %v", time.Duration(cfg.Cache.TTL))
	}
	if cfg.Cache.RedisAddr != "cache.internal:6379" {
		t.Errorf("redis addr = %q", cfg.Cache.RedisAddr)
	}
}

func TestLoadPartialFileKeepsOtherDefaults(t *testing.T) {
	path := writeConfig(t, `
[source]
strategy = "single"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source.Strategy != "single" {
		t.Errorf("strategy = %q", cfg.Source.Strategy)
	}
	if cfg.Source.BatchSize != 50 {
		t.Errorf("batch size = %d, want default 50", cfg.Source.BatchSize)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("backend = %q, want default file", cfg.Cache.Backend)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, `[source`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should fail on malformed TOML")
	}
	if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("error code = %q, want INVALID_INPUT", apperrors.GetCode(err))
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeConfig(t, `
[source]
stratgy = "api"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should reject unknown keys")
	}
	if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("error code = %q, want INVALID_INPUT", apperrors.GetCode(err))
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, `
[cache]
ttl = "later"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load() should reject unparseable durations")
	}
}
