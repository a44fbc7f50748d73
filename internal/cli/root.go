package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brewlens/pkg/buildinfo"
)

// Execute runs the brewlens CLI and returns an error if any command fails.
//
// It sets up the root command with its subcommands (report, cache), wires
// logging based on the --verbose flag, and attaches the logger to the command
// context so every command retrieves it via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "brewlens",
		Short:        "brewlens reports installed Homebrew packages and their dependencies",
		Long:         `brewlens inventories the formulas and casks installed on this host, resolves their metadata via brew or the Homebrew API, and prints a dependency report with reverse-dependency information.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newReportCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(ctx)
}
