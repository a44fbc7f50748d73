package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brewlens/pkg/brew"
	"github.com/matzehuels/brewlens/pkg/cache"
	"github.com/matzehuels/brewlens/pkg/catalog"
	"github.com/matzehuels/brewlens/pkg/config"
	"github.com/matzehuels/brewlens/pkg/index"
	"github.com/matzehuels/brewlens/pkg/report"
	"github.com/matzehuels/brewlens/pkg/source"
)

// reportOpts holds the command-line flags for the report command.
// Flags left at their defaults fall back to the config file values.
type reportOpts struct {
	strategy    string // metadata acquisition strategy
	batchSize   int    // identities per batched query
	concurrency int    // worker pool size
	refresh     bool   // bypass the persistent manifest cache
	output      string // also write the report to this file
	configPath  string // config file override
}

// newReportCmd creates the report command.
func newReportCmd() *cobra.Command {
	var opts reportOpts

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Analyze installed packages and print the dependency report",
		Long: `Analyze every installed formula and cask, resolve package metadata, and
print a table with descriptions, reverse dependencies, and build/runtime
dependency lists annotated with installed status.

Strategies:
  single  one brew query per package (slowest, most resilient)
  batch   grouped brew queries (default)
  api     bulk manifests from formulae.brew.sh, falling back to batch
  auto    alias for api`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "metadata strategy: single, batch, api, or auto")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "packages per batched brew query")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "maximum concurrent metadata queries")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cached API manifests")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "also write the report to this file")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/brewlens/config.toml)")

	return cmd
}

func runReport(cmd *cobra.Command, opts *reportOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx).With("run", uuid.NewString()[:8])

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg, cmd, opts)

	strategy, err := catalog.ParseStrategy(cfg.Source.Strategy)
	if err != nil {
		return err
	}
	logger.Debug("resolved settings",
		"strategy", strategy,
		"batch_size", cfg.Source.BatchSize,
		"concurrency", cfg.Source.Concurrency,
		"cache", cfg.Cache.Backend)

	backend := newCacheBackend(cfg.Cache, logger)
	defer backend.Close()

	runner := brew.NewExecRunner()

	spin := newSpinner(ctx, "Enumerating installed packages...")
	spin.Start()
	ids, installed, err := brew.Enumerate(ctx, runner)
	spin.Stop()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		printInfo("No packages found.")
		return nil
	}
	printInfo("Found %d installed packages", len(ids))

	resolver := catalog.NewResolver(
		source.NewSingleSource(runner),
		source.NewBatchSource(runner, cfg.Source.BatchSize),
		source.NewAPISource(source.APIOptions{
			Cache:    backend,
			CacheTTL: time.Duration(cfg.Cache.TTL),
			Refresh:  opts.refresh,
		}),
		catalog.Options{
			BatchSize:   cfg.Source.BatchSize,
			Concurrency: cfg.Source.Concurrency,
			Logger:      logger,
		},
	)

	prog := newProgress(logger)
	spin = newSpinner(ctx, fmt.Sprintf("Resolving metadata for %d packages...", len(ids)))
	spin.Start()
	cat, err := resolver.Resolve(ctx, ids, strategy)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Resolved %d of %d packages", len(cat), len(ids)))
	if unresolved := countUnresolved(installed, cat); unresolved > 0 {
		logger.Debug("some packages have no queryable metadata", "count", unresolved)
	}

	rev := index.Build(cat)

	if err := writeReport(os.Stdout, cat, rev, installed); err != nil {
		return err
	}
	if opts.output != "" {
		if err := writeReportFile(opts.output, cat, rev, installed); err != nil {
			return err
		}
		printSuccess("Report saved")
		printFile(opts.output)
	}
	return nil
}

// loadConfig loads the config file, defaulting the path when none is given.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

// applyFlags overrides config values with any flag the user set explicitly.
func applyFlags(cfg *config.Config, cmd *cobra.Command, opts *reportOpts) {
	if cmd.Flags().Changed("strategy") {
		cfg.Source.Strategy = opts.strategy
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.Source.BatchSize = opts.batchSize
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Source.Concurrency = opts.concurrency
	}
}

// newCacheBackend builds the manifest cache from config. Backend failures are
// downgraded to a null cache with a warning; caching is never worth failing
// the report for.
func newCacheBackend(cfg config.CacheConfig, logger *log.Logger) cache.Cache {
	switch cfg.Backend {
	case config.BackendRedis:
		return cache.NewRedisCache(cfg.RedisAddr)
	case config.BackendNone:
		return cache.NewNullCache()
	default:
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			logger.Warn("manifest cache disabled", "err", err)
			return cache.NewNullCache()
		}
		return fc
	}
}

// countUnresolved counts installed names with no catalog record.
func countUnresolved(installed brew.InstalledSet, cat brew.Catalog) int {
	n := 0
	for name := range installed {
		if _, ok := cat[name]; !ok {
			n++
		}
	}
	return n
}

func writeReport(w io.Writer, cat brew.Catalog, rev index.ReverseIndex, installed brew.InstalledSet) error {
	if err := report.Render(w, cat, rev, installed); err != nil {
		return err
	}
	return report.Summary(w, cat)
}

func writeReportFile(path string, cat brew.Catalog, rev index.ReverseIndex, installed brew.InstalledSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := writeReport(f, cat, rev, installed); err != nil {
		return err
	}
	return f.Close()
}
