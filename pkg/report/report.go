// Package report formats a resolved catalog and its reverse-dependency index
// as a plain-text table plus summary statistics. All functions are pure over
// their inputs and write identical output to any writer, so the same report
// can go to a terminal and a file.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/brewlens/pkg/brew"
	"github.com/matzehuels/brewlens/pkg/index"
)

// Column sizing rules. Name and description adapt to content within bounds;
// dependency columns are fixed.
const (
	minNameWidth     = 12
	minDescWidth     = 20
	maxDescWidth     = 50
	usedByWidth      = 30
	buildDepsWidth   = 40
	runtimeDepsWidth = 40

	// maxShownDependents caps how many reverse dependents are listed before
	// collapsing the rest into a "(+N more)" suffix.
	maxShownDependents = 3
)

// Status classifies a referenced dependency against the installed set.
// The classification consults only the installed set, never the catalog: a
// package whose metadata failed to resolve is still Present if installed.
type Status int

const (
	// StatusMissing means the dependency is not installed.
	StatusMissing Status = iota
	// StatusPresent means the dependency is installed.
	StatusPresent
)

// StatusOf classifies dependency name dep against installed.
func StatusOf(dep string, installed brew.InstalledSet) Status {
	if installed.Contains(dep) {
		return StatusPresent
	}
	return StatusMissing
}

// Symbol returns the glyph used in the dependency columns.
func (s Status) Symbol() string {
	if s == StatusPresent {
		return "✅"
	}
	return "❌"
}

// Render writes the package table to w, one row per catalog entry sorted by
// name. Returns any write error.
func Render(w io.Writer, cat brew.Catalog, rev index.ReverseIndex, installed brew.InstalledSet) error {
	if len(cat) == 0 {
		_, err := fmt.Fprintln(w, "No package information available.")
		return err
	}

	nameWidth, descWidth := contentWidths(cat)

	header := fmt.Sprintf("%-*s | %-*s | %-*s | %-*s | %-*s",
		nameWidth, "Package",
		descWidth, "Description",
		usedByWidth, "Used By",
		buildDepsWidth, "Build Deps",
		runtimeDepsWidth, "Runtime Deps")
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", len(header))); err != nil {
		return err
	}

	for _, name := range cat.Names() {
		pkg := cat[name]
		row := fmt.Sprintf("%-*s | %-*s | %-*s | %-*s | %-*s",
			nameWidth, name,
			descWidth, truncate(pkg.Description, descWidth),
			usedByWidth, truncate(formatDependents(rev.Dependents(name)), usedByWidth),
			buildDepsWidth, truncate(formatDeps(pkg.BuildDeps, installed), buildDepsWidth),
			runtimeDepsWidth, truncate(formatDeps(pkg.RuntimeDeps, installed), runtimeDepsWidth))
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

// Summary writes aggregate statistics for the catalog to w.
func Summary(w io.Writer, cat brew.Catalog) error {
	var casks, buildDeps, runtimeDeps int
	for _, pkg := range cat {
		if pkg.Kind == brew.Cask {
			casks++
		}
		buildDeps += len(pkg.BuildDeps)
		runtimeDeps += len(pkg.RuntimeDeps)
	}

	_, err := fmt.Fprintf(w, "\nSummary:\n"+
		"  Total packages: %d\n"+
		"  Formulas: %d\n"+
		"  Casks: %d\n"+
		"  Total build dependencies: %d\n"+
		"  Total runtime dependencies: %d\n",
		len(cat), len(cat)-casks, casks, buildDeps, runtimeDeps)
	return err
}

// contentWidths derives the adaptive column widths from catalog content.
func contentWidths(cat brew.Catalog) (nameWidth, descWidth int) {
	nameWidth = minNameWidth
	descWidth = minDescWidth
	for name, pkg := range cat {
		nameWidth = max(nameWidth, len(name))
		descWidth = max(descWidth, min(maxDescWidth, len(pkg.Description)))
	}
	return nameWidth, descWidth
}

// truncate cuts s to width runes, replacing the tail with "..." when it does
// not fit.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// formatDependents lists up to maxShownDependents names and collapses the
// remainder into a count.
func formatDependents(dependents []string) string {
	if len(dependents) == 0 {
		return ""
	}
	shown := dependents
	if len(shown) > maxShownDependents {
		shown = shown[:maxShownDependents]
	}
	s := strings.Join(shown, ", ")
	if extra := len(dependents) - maxShownDependents; extra > 0 {
		s += fmt.Sprintf(" (+%d more)", extra)
	}
	return s
}

// formatDeps prefixes each dependency with its installed-status glyph.
func formatDeps(deps []string, installed brew.InstalledSet) string {
	if len(deps) == 0 {
		return ""
	}
	parts := make([]string, len(deps))
	for i, dep := range deps {
		parts[i] = StatusOf(dep, installed).Symbol() + " " + dep
	}
	return strings.Join(parts, ", ")
}
