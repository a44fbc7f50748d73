package source

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/brewlens/pkg/brew"
)

// SingleSource resolves each identity with its own brew invocation.
// O(n) round-trips, but a malformed response for one package cannot affect
// any other.
type SingleSource struct {
	runner brew.Runner
}

// NewSingleSource creates a source that queries brew once per identity.
func NewSingleSource(r brew.Runner) *SingleSource {
	return &SingleSource{runner: r}
}

// Name returns "single".
func (s *SingleSource) Name() string { return "single" }

// Resolve queries brew info for every identity in order. Query failures and
// unknown packages are absorbed into absent entries; only context
// cancellation stops the pass, returning the partial map built so far.
func (s *SingleSource) Resolve(ctx context.Context, ids []brew.Identity) (map[string]*brew.Package, error) {
	out := make(map[string]*brew.Package, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if pkg, ok := s.resolveOne(ctx, id); ok {
			out[id.Name] = pkg
		}
	}
	return out, nil
}

func (s *SingleSource) resolveOne(ctx context.Context, id brew.Identity) (*brew.Package, bool) {
	raw, err := s.runner.Run(ctx, infoArgs(id.Kind, id.Name)...)
	if err != nil || len(raw) == 0 {
		return nil, false
	}

	var objs []infoJSON
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil, false
	}
	for i := range objs {
		if objs[i].key(id.Kind) == id.Name {
			return objs[i].pkg(id), true
		}
	}
	return nil, false
}

var _ Source = (*SingleSource)(nil)
