// Package index derives the reverse-dependency view over a resolved catalog.
package index

import (
	"sort"

	"github.com/matzehuels/brewlens/pkg/brew"
)

// ReverseIndex maps a dependency name to the set of catalog packages that
// declare it as a build or runtime dependency. It is exactly the transpose of
// the dependency relation: an entry exists for a name if and only if at least
// one resolved package depends on it.
type ReverseIndex map[string]map[string]struct{}

// Build constructs the reverse index in one pass over every record's
// dependency edges. It is a pure function of the catalog: rebuilding from an
// unchanged catalog yields an identical index.
func Build(cat brew.Catalog) ReverseIndex {
	rev := make(ReverseIndex)
	for name, pkg := range cat {
		for _, dep := range pkg.Dependencies() {
			set, ok := rev[dep]
			if !ok {
				set = make(map[string]struct{})
				rev[dep] = set
			}
			set[name] = struct{}{}
		}
	}
	return rev
}

// Dependents returns the sorted names of packages that depend on name.
// Returns nil if nothing depends on it.
func (r ReverseIndex) Dependents(name string) []string {
	set, ok := r[name]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(set))
	for dep := range set {
		names = append(names, dep)
	}
	sort.Strings(names)
	return names
}

// Count returns how many packages depend on name.
func (r ReverseIndex) Count(name string) int {
	return len(r[name])
}
