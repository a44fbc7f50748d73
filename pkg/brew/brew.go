// Package brew defines the domain model for installed Homebrew packages and
// the subprocess runner used to talk to the brew command-line tool.
//
// The model is deliberately small: an Identity names an installed package and
// its kind (formula or cask), a Package holds the metadata a source resolved
// for it, a Catalog maps names to resolved packages, and an InstalledSet
// answers "is this dependency actually installed?" independently of whether
// metadata resolution for it succeeded.
package brew

import (
	"slices"
	"sort"
)

// Kind distinguishes formulas from casks. The two use different query flags
// and key fields; casks carry no dependency lists.
type Kind int

const (
	// Formula is a regular Homebrew package.
	Formula Kind = iota
	// Cask is a macOS application bundle.
	Cask
)

// String returns the kind name as used in brew command flags.
func (k Kind) String() string {
	if k == Cask {
		return "cask"
	}
	return "formula"
}

// Identity names an installed package for metadata lookup. Names are opaque,
// case-sensitive strings assigned by Homebrew; Kind only selects lookup
// semantics. A name existing as both a formula and a cask yields two
// independent identities.
type Identity struct {
	Name string
	Kind Kind
}

// Package holds the metadata resolved for one installed package.
// It is immutable once created; dependency names are free-form and may refer
// to packages that are not installed (dangling references are expected).
type Package struct {
	Name        string   // Package name (formula name or cask token)
	Kind        Kind     // Formula or Cask
	Description string   // Short description from the registry
	Homepage    string   // Project homepage URL
	BuildDeps   []string // Build-time dependency names (always empty for casks)
	RuntimeDeps []string // Runtime dependency names (always empty for casks)
}

// Dependencies returns build and runtime dependencies as one list,
// build dependencies first.
func (p *Package) Dependencies() []string {
	if len(p.BuildDeps) == 0 {
		return slices.Clone(p.RuntimeDeps)
	}
	deps := make([]string, 0, len(p.BuildDeps)+len(p.RuntimeDeps))
	deps = append(deps, p.BuildDeps...)
	return append(deps, p.RuntimeDeps...)
}

// Catalog maps package names to their resolved metadata. It is populated in
// a single resolution pass and read-only afterward; identities that could
// not be resolved simply have no entry.
type Catalog map[string]*Package

// Names returns all catalog keys in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InstalledSet is the membership oracle over everything brew reported as
// installed, regardless of metadata resolution outcomes.
type InstalledSet map[string]struct{}

// NewInstalledSet builds a set from identities.
func NewInstalledSet(ids []Identity) InstalledSet {
	set := make(InstalledSet, len(ids))
	for _, id := range ids {
		set[id.Name] = struct{}{}
	}
	return set
}

// Contains reports whether name was enumerated as installed.
func (s InstalledSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}
