package brew

import (
	"context"
	"strings"

	apperrors "github.com/matzehuels/brewlens/pkg/errors"
)

// Enumerate lists every installed formula and cask. It returns the identities
// in enumeration order (formulas first, then casks) together with the
// membership set used for dependency status checks.
//
// Empty output means no packages of that kind, not an error. Any failure to
// invoke brew at all is fatal: without the enumeration there is nothing to
// resolve, so the error carries code BREW_UNAVAILABLE.
func Enumerate(ctx context.Context, r Runner) ([]Identity, InstalledSet, error) {
	formulas, err := list(ctx, r, "--formula")
	if err != nil {
		return nil, nil, enumerationError(err)
	}
	casks, err := list(ctx, r, "--cask")
	if err != nil {
		return nil, nil, enumerationError(err)
	}

	ids := make([]Identity, 0, len(formulas)+len(casks))
	for _, name := range formulas {
		ids = append(ids, Identity{Name: name, Kind: Formula})
	}
	for _, name := range casks {
		ids = append(ids, Identity{Name: name, Kind: Cask})
	}
	return ids, NewInstalledSet(ids), nil
}

func list(ctx context.Context, r Runner, kindFlag string) ([]string, error) {
	out, err := r.Run(ctx, "list", kindFlag)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

func enumerationError(err error) error {
	if apperrors.Is(err, apperrors.ErrCodeBrewUnavailable) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrCodeBrewUnavailable, err, "enumerate installed packages")
}
