// Package catalog orchestrates metadata acquisition over the sources in
// pkg/source. It owns strategy selection, the API-to-batch fallback, the
// bounded worker pool for disjoint queries, and the single aggregation point
// that materializes the resolved Catalog.
package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/brewlens/pkg/brew"
	apperrors "github.com/matzehuels/brewlens/pkg/errors"
	"github.com/matzehuels/brewlens/pkg/source"
)

// DefaultConcurrency bounds how many metadata queries run at once, keeping
// subprocess spawn rate and API pressure in check.
const DefaultConcurrency = 8

// Strategy selects how package metadata is acquired.
type Strategy int

const (
	// StrategyBatch groups identities into batched brew queries.
	StrategyBatch Strategy = iota
	// StrategySingle issues one brew query per identity.
	StrategySingle
	// StrategyAPI uses the bulk manifests, falling back to batch queries
	// when the API is unavailable.
	StrategyAPI
)

// String returns the strategy name as accepted by ParseStrategy.
func (s Strategy) String() string {
	switch s {
	case StrategySingle:
		return "single"
	case StrategyAPI:
		return "api"
	default:
		return "batch"
	}
}

// ParseStrategy converts a user-supplied name into a Strategy.
// "auto" is an alias for "api" since the API strategy already degrades to
// batch queries on its own.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "batch", "":
		return StrategyBatch, nil
	case "single":
		return StrategySingle, nil
	case "api", "auto":
		return StrategyAPI, nil
	default:
		return StrategyBatch, apperrors.New(apperrors.ErrCodeInvalidStrategy,
			"unknown strategy %q (want single, batch, api, or auto)", name)
	}
}

// Options configures a Resolver.
type Options struct {
	BatchSize   int         // Identities per batched query (default: source.DefaultBatchSize)
	Concurrency int         // Worker pool size (default: DefaultConcurrency)
	Logger      *log.Logger // Destination for degradation warnings (default: log.Default())
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = source.DefaultBatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Resolver materializes a Catalog from installed identities using one of the
// acquisition strategies. Safe for concurrent use once constructed.
type Resolver struct {
	single source.Source
	batch  source.Source
	api    source.Source
	opts   Options
}

// NewResolver creates a Resolver over the three sources.
func NewResolver(single, batch, api source.Source, opts Options) *Resolver {
	return &Resolver{
		single: single,
		batch:  batch,
		api:    api,
		opts:   opts.withDefaults(),
	}
}

// Resolve turns identities into a Catalog. Identities the selected source
// cannot answer for are silently omitted; the returned Catalog only ever
// holds fully formed records, each keyed by its own name.
//
// With StrategyAPI, total source unavailability is not fatal: the resolver
// logs the degradation and transparently re-runs with batched brew queries.
// On context cancellation the partial Catalog built so far is returned along
// with the context error; its invariants hold for whatever subset completed.
func (r *Resolver) Resolve(ctx context.Context, ids []brew.Identity, strategy Strategy) (brew.Catalog, error) {
	if len(ids) == 0 {
		return make(brew.Catalog), nil
	}

	switch strategy {
	case StrategyAPI:
		resolved, err := r.api.Resolve(ctx, ids)
		if err == nil {
			return brew.Catalog(resolved), nil
		}
		if !errors.Is(err, source.ErrUnavailable) {
			return nil, err
		}
		r.opts.Logger.Warn("metadata API unavailable, falling back to batched queries", "err", err)
		fallthrough
	case StrategyBatch:
		return r.pooled(ctx, r.batch, batchChunks(ids, r.opts.BatchSize))
	default:
		return r.pooled(ctx, r.single, singleChunks(ids))
	}
}

// pooled runs one source.Resolve call per chunk on a bounded worker pool and
// merges results through a single mutex-guarded writer.
func (r *Resolver) pooled(ctx context.Context, src source.Source, chunks [][]brew.Identity) (brew.Catalog, error) {
	cat := make(brew.Catalog)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			// Stop issuing new queries once the run is cancelled; in-flight
			// ones wind down through their own context checks.
			if err := gctx.Err(); err != nil {
				return err
			}
			resolved, err := src.Resolve(gctx, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			for name, pkg := range resolved {
				cat[name] = pkg
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return cat, err
	}
	return cat, nil
}

// batchChunks partitions ids into same-kind chunks of at most size, formulas
// first, preserving enumeration order within each kind.
func batchChunks(ids []brew.Identity, size int) [][]brew.Identity {
	var formulas, casks []brew.Identity
	for _, id := range ids {
		if id.Kind == brew.Cask {
			casks = append(casks, id)
		} else {
			formulas = append(formulas, id)
		}
	}

	var chunks [][]brew.Identity
	for _, group := range [][]brew.Identity{formulas, casks} {
		for start := 0; start < len(group); start += size {
			end := min(start+size, len(group))
			chunks = append(chunks, group[start:end])
		}
	}
	return chunks
}

// singleChunks gives every identity its own unit of work.
func singleChunks(ids []brew.Identity) [][]brew.Identity {
	chunks := make([][]brew.Identity, len(ids))
	for i := range ids {
		chunks[i] = ids[i : i+1]
	}
	return chunks
}
