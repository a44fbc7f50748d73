// Package config loads the optional brewlens configuration file.
//
// The file lives at ~/.config/brewlens/config.toml and every field has a
// sensible default, so a missing file is not an error. Command-line flags
// override anything set here.
//
// Example:
//
//	[source]
//	strategy = "api"
//	batch_size = 50
//	concurrency = 8
//
//	[cache]
//	backend = "file"        # file, redis, or none
//	ttl = "24h"
//	redis_addr = "localhost:6379"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/brewlens/pkg/errors"
	"github.com/matzehuels/brewlens/pkg/source"
)

// Cache backend names accepted in the config file.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the root of the configuration file.
type Config struct {
	Source SourceConfig `toml:"source"`
	Cache  CacheConfig  `toml:"cache"`
}

// SourceConfig controls metadata acquisition.
type SourceConfig struct {
	Strategy    string `toml:"strategy"`    // single, batch, api, or auto
	BatchSize   int    `toml:"batch_size"`  // identities per batched query
	Concurrency int    `toml:"concurrency"` // worker pool size
}

// CacheConfig controls the persistent manifest cache used by the API source.
type CacheConfig struct {
	Backend   string   `toml:"backend"`    // file, redis, or none
	Dir       string   `toml:"dir"`        // file backend directory ("" = default)
	TTL       Duration `toml:"ttl"`        // manifest time-to-live
	RedisAddr string   `toml:"redis_addr"` // redis backend address
}

// Duration wraps time.Duration so TOML values can be written as "24h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Strategy:    "batch",
			BatchSize:   source.DefaultBatchSize,
			Concurrency: 8,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			TTL:       Duration(source.DefaultManifestTTL),
			RedisAddr: "localhost:6379",
		},
	}
}

// DefaultPath returns the standard config file location,
// ~/.config/brewlens/config.toml (respecting XDG overrides).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "brewlens", "config.toml"), nil
}

// Load reads the config file at path, layered over Default(). A missing file
// returns the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, apperrors.New(apperrors.ErrCodeInvalidInput,
			"unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}
