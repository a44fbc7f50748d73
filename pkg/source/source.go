// Package source implements the metadata acquisition strategies for installed
// Homebrew packages.
//
// Three interchangeable sources turn installed identities into package
// metadata:
//
//   - [SingleSource] issues one brew invocation per identity. Highest call
//     count, but one bad package name can never corrupt another's result.
//   - [BatchSource] groups identities by kind into fixed-size batches and
//     demultiplexes the JSON array each query returns. A failed batch degrades
//     only its own members to "not found".
//   - [APISource] downloads the full formula and cask manifests from
//     formulae.brew.sh once, then answers every lookup from memory.
//
// All three resolve to a partial map keyed by package name: identities with
// no queryable metadata are simply absent, which callers treat as an expected
// outcome rather than an error. Retry and fallback policy belongs to the
// orchestrator in pkg/catalog, never to a source.
package source

import (
	"context"
	"errors"

	"github.com/matzehuels/brewlens/pkg/brew"
)

// ErrUnavailable is returned when a source cannot answer for any identity at
// all (for the API source: network failure or an undecodable manifest).
// It signals the caller to fall back to a different source.
var ErrUnavailable = errors.New("metadata source unavailable")

// Source resolves metadata for installed package identities.
type Source interface {
	// Resolve returns a partial map from package name to metadata.
	// Identities with no resolvable metadata are omitted. An error is only
	// returned for total source unavailability or context cancellation;
	// per-identity failures are absorbed into absences.
	Resolve(ctx context.Context, ids []brew.Identity) (map[string]*brew.Package, error)

	// Name identifies the source for logging ("single", "batch", "api").
	Name() string
}

// infoJSON is the per-package object shape shared by `brew info --json` and
// the formulae.brew.sh bulk manifests. Formulas are keyed by "name", casks
// by "token"; only formulas carry dependency lists.
type infoJSON struct {
	Name      string   `json:"name"`
	Token     string   `json:"token"`
	Desc      string   `json:"desc"`
	Homepage  string   `json:"homepage"`
	BuildDeps []string `json:"build_dependencies"`
	Deps      []string `json:"dependencies"`
}

// key returns the field that identifies this object for the given kind.
func (j *infoJSON) key(kind brew.Kind) string {
	if kind == brew.Cask {
		return j.Token
	}
	return j.Name
}

// pkg converts the raw object into a domain Package for the given identity.
func (j *infoJSON) pkg(id brew.Identity) *brew.Package {
	p := &brew.Package{
		Name:        id.Name,
		Kind:        id.Kind,
		Description: j.Desc,
		Homepage:    j.Homepage,
	}
	if id.Kind == brew.Formula {
		p.BuildDeps = j.BuildDeps
		p.RuntimeDeps = j.Deps
	}
	return p
}

// infoArgs builds the brew info argument list for one kind.
func infoArgs(kind brew.Kind, names ...string) []string {
	args := []string{"info", "--json"}
	if kind == brew.Cask {
		args = append(args, "--cask")
	}
	return append(args, names...)
}

// splitByKind partitions ids into formulas and casks, preserving order.
func splitByKind(ids []brew.Identity) (formulas, casks []brew.Identity) {
	for _, id := range ids {
		if id.Kind == brew.Cask {
			casks = append(casks, id)
		} else {
			formulas = append(formulas, id)
		}
	}
	return formulas, casks
}
