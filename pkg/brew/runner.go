package brew

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	apperrors "github.com/matzehuels/brewlens/pkg/errors"
)

// Runner executes a brew subcommand and returns its trimmed stdout.
// It exists so sources and tests can substitute a fake for the real binary.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner invokes the brew binary via os/exec.
type ExecRunner struct {
	// Bin is the executable to invoke. Defaults to "brew".
	Bin string
}

// NewExecRunner creates a runner for the brew binary found on PATH.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Bin: "brew"}
}

// Run executes brew with the given arguments. A missing binary is reported
// with code BREW_UNAVAILABLE; a non-zero exit with QUERY_FAILURE, including
// stderr in the message since brew writes its diagnostics there.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	bin := r.Bin
	if bin == "" {
		bin = "brew"
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, apperrors.Wrap(apperrors.ErrCodeBrewUnavailable, err,
				"%s not found, is Homebrew installed?", bin)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeQueryFailure, err,
			"%s %v: %s", bin, args, bytes.TrimSpace(stderr.Bytes()))
	}

	return bytes.TrimSpace(stdout.Bytes()), nil
}

var _ Runner = (*ExecRunner)(nil)
