// Package cli implements the harvester command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvester/internal/logger"
)

// version is set at build time through Execute.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "harvester",
	Short: "Harvest wiki pages and issues into a document store",
	Long: `harvester enumerates the pages and blog posts of a wiki, or the issues of
an issue tracker, extracts their text and comments, maps each one to a
document through configurable field expressions and stores the result.

Item failures are recorded and never stop a run; list them with
"harvester failures".`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// Execute runs the root command with the given build version.
func Execute(ctx context.Context, buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.ExecuteContext(ctx)
}
