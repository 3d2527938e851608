package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cperrin88/sentfetch/internal/logger"
	"github.com/cperrin88/sentfetch/pkg/model"
	"github.com/cperrin88/sentfetch/pkg/orchestrator"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	var (
		satellite   string
		concurrency int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Search the catalog and download matching products",
		Long: `Search the product catalog for every configured tile or footprint and
monthly window, select the best matching product per window and download
its files into the output directory. Files already on disk are skipped,
so an interrupted run can simply be re-run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, satellite, concurrency, dryRun)
		},
	}

	cmd.Flags().StringVar(&satellite, "satellite", "", "override the configured mission (s1 or s2)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of parallel file downloads (0=config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "search and select only, download nothing")

	return cmd
}

func runFetch(cmd *cobra.Command, satellite string, concurrency int, dryRun bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if satellite != "" {
		cfg.Mission = satellite
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	logger.InitLogger(cfg.Settings.LogLevel)

	username, password, err := loadCredentials()
	if err != nil {
		return err
	}

	criteria, err := cfg.ToCriteria()
	if err != nil {
		return err
	}
	logger.Info("run criteria", logger.Fields{"criteria": criteria.String()})

	hooks := orchestrator.Hooks{OnEvent: func(e orchestrator.Event) {
		if e.ID != "" {
			fmt.Printf("%s: %s (%s)\n", e.Phase, e.Msg, e.ID)
		} else {
			fmt.Printf("%s: %s\n", e.Phase, e.Msg)
		}
	}}

	orch := buildOrchestrator(cfg, username, password, hooks)

	opts := orchestrator.Options{
		DownloadMode: cfg.DownloadMode,
		MaxRetries:   cfg.Settings.MaxRetries,
		Concurrency:  cfg.Settings.Concurrency,
		UnitDelay:    cfg.Settings.UnitDelay,
	}
	if concurrency > 0 {
		opts.Concurrency = concurrency
	}
	if dryRun {
		orch.DL = discardDownloader{}
	}

	summary, err := orch.Run(cmd.Context(), criteria, opts)
	if err != nil {
		return err
	}

	printSummary(summary)
	if summary.UnitsFailed > 0 || summary.FilesFailed > 0 {
		return fmt.Errorf("run %s completed with %d failed files and %d failed units",
			summary.RunID, summary.FilesFailed, summary.UnitsFailed)
	}

	logger.Success("run completed", logger.Fields{"run_id": summary.RunID})
	return nil
}

func printSummary(summary *model.RunSummary) {
	logger.Info("run summary", logger.Fields{
		"run_id":     summary.RunID,
		"discovered": summary.ProductsDiscovered,
		"selected":   summary.ProductsSelected,
		"no_product": summary.NoProductFound,
		"succeeded":  summary.FilesSucceeded,
		"failed":     summary.FilesFailed,
		"skipped":    summary.FilesSkipped,
	})
	for i, f := range summary.Failures {
		if i == MaxFailureLines {
			logger.Warn("more failures omitted", logger.Fields{"total": len(summary.Failures)})
			break
		}
		logger.Warn("failure", logger.Fields{
			"unit":      f.UnitID,
			"window":    f.WindowKey,
			"component": f.Component,
			"reason":    f.Reason,
		})
	}
}
