package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvester/internal/adapters/driven/storage/sqlite"
)

var failuresFlags struct {
	dataDir string
	runID   string
}

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List recorded item failures",
	Long: `Lists the failure records written by previous harvest runs, oldest first.
Use --run to restrict the listing to one run.`,
	Args: cobra.NoArgs,
	RunE: runFailures,
}

func init() {
	f := failuresCmd.Flags()
	f.StringVar(&failuresFlags.dataDir, "db", "", "Data directory for the SQLite store (default $XDG_DATA_HOME/harvester)")
	f.StringVar(&failuresFlags.runID, "run", "", "Only show failures of this run")

	rootCmd.AddCommand(failuresCmd)
}

func runFailures(cmd *cobra.Command, _ []string) error {
	store, err := sqlite.NewStore(failuresFlags.dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.FailureStore().ListFailures(cmd.Context(), failuresFlags.runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		cmd.Println("No failures recorded.")
		return nil
	}

	renderFailures(cmd.OutOrStdout(), records)
	cmd.Printf("%d failure(s)\n", len(records))
	return nil
}
