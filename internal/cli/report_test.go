package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/brewlens/pkg/brew"
	"github.com/matzehuels/brewlens/pkg/cache"
	"github.com/matzehuels/brewlens/pkg/config"
	"github.com/matzehuels/brewlens/pkg/index"
)

func TestApplyFlagsOverridesOnlyChanged(t *testing.T) {
	cmd := newReportCmd()
	if err := cmd.Flags().Set("strategy", "api"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("concurrency", "4"); err != nil {
		t.Fatal(err)
	}

	opts := &reportOpts{strategy: "api", concurrency: 4}
	cfg := config.Default()

	applyFlags(&cfg, cmd, opts)

	if cfg.Source.Strategy != "api" {
		t.Errorf("Strategy = %q, want %q", cfg.Source.Strategy, "api")
	}
	if cfg.Source.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Source.Concurrency)
	}
	// batch-size was not set on the command line, config value wins.
	if cfg.Source.BatchSize != config.Default().Source.BatchSize {
		t.Errorf("BatchSize = %d, want default %d", cfg.Source.BatchSize, config.Default().Source.BatchSize)
	}
}

func TestApplyFlagsNoChanges(t *testing.T) {
	cmd := newReportCmd()
	opts := &reportOpts{}
	cfg := config.Default()
	want := config.Default()

	applyFlags(&cfg, cmd, opts)

	if cfg != want {
		t.Errorf("config changed without any flags set: got %+v, want %+v", cfg, want)
	}
}

func TestNewCacheBackend(t *testing.T) {
	logger := log.New(io.Discard)

	tests := []struct {
		name    string
		cfg     config.CacheConfig
		want    string
		wantNil bool
	}{
		{
			name: "file backend",
			cfg:  config.CacheConfig{Backend: config.BackendFile, Dir: t.TempDir()},
			want: "*cache.FileCache",
		},
		{
			name: "none backend",
			cfg:  config.CacheConfig{Backend: config.BackendNone},
			want: "*cache.NullCache",
		},
		{
			name: "redis backend",
			cfg:  config.CacheConfig{Backend: config.BackendRedis, RedisAddr: "localhost:6379"},
			want: "*cache.RedisCache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newCacheBackend(tt.cfg, logger)
			if backend == nil {
				t.Fatal("newCacheBackend() returned nil")
			}
			defer backend.Close()

			got := typeName(backend)
			if got != tt.want {
				t.Errorf("backend type = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(c cache.Cache) string {
	switch c.(type) {
	case *cache.FileCache:
		return "*cache.FileCache"
	case *cache.RedisCache:
		return "*cache.RedisCache"
	case *cache.NullCache:
		return "*cache.NullCache"
	default:
		return "unknown"
	}
}

func TestCountUnresolved(t *testing.T) {
	installed := brew.NewInstalledSet([]brew.Identity{
		{Name: "wget", Kind: brew.Formula},
		{Name: "curl", Kind: brew.Formula},
		{Name: "iterm2", Kind: brew.Cask},
	})
	cat := brew.Catalog{
		"wget": {Name: "wget", Kind: brew.Formula},
	}

	if got := countUnresolved(installed, cat); got != 2 {
		t.Errorf("countUnresolved() = %d, want 2", got)
	}
	if got := countUnresolved(installed, brew.Catalog{}); got != 3 {
		t.Errorf("countUnresolved(empty catalog) = %d, want 3", got)
	}
}

func TestWriteReportFile(t *testing.T) {
	cat := brew.Catalog{
		"wget": {
			Name:        "wget",
			Kind:        brew.Formula,
			Description: "Internet file retriever",
			RuntimeDeps: []string{"openssl"},
		},
	}
	installed := brew.NewInstalledSet([]brew.Identity{{Name: "wget", Kind: brew.Formula}})
	rev := index.Build(cat)

	path := filepath.Join(t.TempDir(), "report.txt")
	if err := writeReportFile(path, cat, rev, installed); err != nil {
		t.Fatalf("writeReportFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "wget") {
		t.Error("report file should contain the package name")
	}
	if !strings.Contains(out, "Summary") {
		t.Error("report file should contain the summary")
	}
}

func TestWriteReportEmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	installed := brew.NewInstalledSet(nil)

	if err := writeReport(&buf, brew.Catalog{}, index.ReverseIndex{}, installed); err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No package information available.") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[source]\nstrategy = \"single\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Source.Strategy != "single" {
		t.Errorf("Strategy = %q, want %q", cfg.Source.Strategy, "single")
	}
}
