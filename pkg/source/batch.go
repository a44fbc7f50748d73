package source

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/brewlens/pkg/brew"
)

// DefaultBatchSize is the number of identities grouped into one brew query.
const DefaultBatchSize = 50

// BatchSource resolves identities in grouped brew invocations, one query per
// batch per kind. The JSON array response is demultiplexed back to the
// requested identities by its name (formula) or token (cask) field.
//
// A batch that fails entirely degrades every identity in it to "not found";
// there is no finer-grained retry, keeping latency bounded. Callers needing
// full resilience should use [SingleSource] instead.
type BatchSource struct {
	runner    brew.Runner
	batchSize int
}

// NewBatchSource creates a batched source. A batchSize of zero or less uses
// DefaultBatchSize.
func NewBatchSource(r brew.Runner, batchSize int) *BatchSource {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchSource{runner: r, batchSize: batchSize}
}

// Name returns "batch".
func (s *BatchSource) Name() string { return "batch" }

// BatchSize returns the configured batch size.
func (s *BatchSource) BatchSize() int { return s.batchSize }

// Resolve queries brew info in batches, formulas and casks separately since
// the query syntax differs per kind. For n formulas and m casks it issues
// exactly ceil(n/size) + ceil(m/size) queries.
func (s *BatchSource) Resolve(ctx context.Context, ids []brew.Identity) (map[string]*brew.Package, error) {
	out := make(map[string]*brew.Package, len(ids))
	formulas, casks := splitByKind(ids)

	for _, group := range [][]brew.Identity{formulas, casks} {
		for _, batch := range chunk(group, s.batchSize) {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			s.resolveBatch(ctx, batch, out)
		}
	}
	return out, nil
}

// resolveBatch issues one query for a same-kind batch and merges the matched
// results into out. Any failure drops the whole batch.
func (s *BatchSource) resolveBatch(ctx context.Context, batch []brew.Identity, out map[string]*brew.Package) {
	kind := batch[0].Kind
	names := make([]string, len(batch))
	for i, id := range batch {
		names[i] = id.Name
	}

	raw, err := s.runner.Run(ctx, infoArgs(kind, names...)...)
	if err != nil || len(raw) == 0 {
		return
	}

	var objs []infoJSON
	if err := json.Unmarshal(raw, &objs); err != nil {
		return
	}

	byKey := make(map[string]*infoJSON, len(objs))
	for i := range objs {
		byKey[objs[i].key(kind)] = &objs[i]
	}
	for _, id := range batch {
		if obj, ok := byKey[id.Name]; ok {
			out[id.Name] = obj.pkg(id)
		}
	}
}

// chunk splits ids into size-bounded subslices, preserving order.
func chunk(ids []brew.Identity, size int) [][]brew.Identity {
	var batches [][]brew.Identity
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

var _ Source = (*BatchSource)(nil)
