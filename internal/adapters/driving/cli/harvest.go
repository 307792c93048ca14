package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvester/internal/adapters/driven/config/file"
	"github.com/custodia-labs/harvester/internal/adapters/driven/evaluator"
	"github.com/custodia-labs/harvester/internal/adapters/driven/filter"
	"github.com/custodia-labs/harvester/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/harvester/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/harvester/internal/connectors"
	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driving"
	"github.com/custodia-labs/harvester/internal/core/services"
	"github.com/custodia-labs/harvester/internal/logger"
	"github.com/custodia-labs/harvester/internal/normalisers/html"
)

var harvestFlags struct {
	config          string
	dataDir         string
	dryRun          bool
	shutdownTimeout time.Duration
}

var harvestCmd = &cobra.Command{
	Use:   "harvest <wiki|tracker>",
	Short: "Harvest items from a wiki or issue tracker",
	Long: `Runs one harvest of the given service using a TOML or YAML run file.

Documents and failure records are written to the SQLite database in the data
directory. With --dry-run documents are kept in memory and only counted.`,
	Example: `  harvester harvest wiki --config eng-wiki.toml
  harvester harvest tracker -c eng.yaml --dry-run -v`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.ServiceWiki), string(domain.ServiceTracker)},
	RunE:      runHarvest,
}

func init() {
	f := harvestCmd.Flags()
	f.StringVarP(&harvestFlags.config, "config", "c", "", "Run configuration file (.toml, .yaml)")
	f.StringVar(&harvestFlags.dataDir, "db", "", "Data directory for the SQLite store (default $XDG_DATA_HOME/harvester)")
	f.BoolVar(&harvestFlags.dryRun, "dry-run", false, "Keep documents in memory instead of storing them")
	f.DurationVar(&harvestFlags.shutdownTimeout, "shutdown-timeout", domain.DefaultShutdownTimeout,
		"Grace period for in-flight items after the listing ends")
	_ = harvestCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	service := domain.Service(args[0])
	if !service.IsValid() {
		return fmt.Errorf("%w: service %q (want wiki or tracker)", domain.ErrUnsupportedType, args[0])
	}

	src, err := file.Load(harvestFlags.config)
	if err != nil {
		return err
	}
	if src.Service != "" && src.Service != service {
		return domain.NewConfigError("service",
			fmt.Sprintf("run file is for %q, not %q", src.Service, service))
	}
	src.Service = service
	logger.Debug("loaded %s: %d parameter(s): %s",
		harvestFlags.config, len(src.Config), strings.Join(file.Keys(src), ", "))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eval, err := evaluator.New()
	if err != nil {
		return err
	}

	run := services.NewRun(src)
	deps := services.PipelineDeps{
		Sources:   connectors.NewFactory(),
		Filters:   filter.Builder{},
		Extractor: html.New(),
		Evaluator: eval,
		Stats:     services.NewCrawlStats(),
	}

	var (
		stored string
		count  func(context.Context) (int, error)
	)
	if harvestFlags.dryRun {
		sink := memory.NewDocumentSink()
		deps.Sink = sink
		deps.Failures = memory.NewFailureStore()
		stored = "memory (dry run)"
		count = func(context.Context) (int, error) { return sink.Len(), nil }
	} else {
		store, err := sqlite.NewStore(harvestFlags.dataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SaveRun(ctx, run); err != nil {
			return err
		}
		deps.Sink = store.Sink()
		deps.Failures = store.FailureRecorder()
		stored = store.Path()
		count = func(ctx context.Context) (int, error) { return store.CountDocuments(ctx, run.ID) }
	}

	logger.Section("Harvest " + src.Name)
	var harvester driving.Harvester = services.NewHarvestPipeline(deps, services.PipelineOptions{
		ShutdownTimeout: harvestFlags.shutdownTimeout,
	})
	summary, runErr := harvester.Run(ctx, run)
	if summary == nil {
		return runErr
	}

	if n, err := count(context.WithoutCancel(ctx)); err == nil {
		logger.Debug("%d document(s) stored for run %s", n, run.ID)
	}
	renderSummary(cmd.OutOrStdout(), summary, stored)
	return runErr
}
