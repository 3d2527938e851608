package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/cperrin88/sentfetch/pkg/archive"
	"github.com/cperrin88/sentfetch/pkg/auth"
	"github.com/cperrin88/sentfetch/pkg/catalog"
	"github.com/cperrin88/sentfetch/pkg/config"
	"github.com/cperrin88/sentfetch/pkg/download"
	"github.com/cperrin88/sentfetch/pkg/errors"
	"github.com/cperrin88/sentfetch/pkg/manifest"
	"github.com/cperrin88/sentfetch/pkg/model"
	"github.com/cperrin88/sentfetch/pkg/orchestrator"
	"github.com/cperrin88/sentfetch/pkg/safepath"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	EnvFile    *string
	Verbose    *bool
)

// loadConfig loads the run configuration from the path given on the
// command line.
func loadConfig() (*config.Config, error) {
	configPath := ""
	if ConfigPath != nil {
		configPath = *ConfigPath
	}
	if configPath == "" {
		return nil, errors.ErrEmptyConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	return cfg, nil
}

// loadCredentials reads the account credentials from the environment,
// loading a .env file first when one is present.
func loadCredentials() (username, password string, err error) {
	envFile := DefaultEnvFile
	if EnvFile != nil && *EnvFile != "" {
		envFile = *EnvFile
	}
	// A missing .env file is fine; the variables may come from the
	// environment directly.
	_ = godotenv.Load(envFile)

	username = os.Getenv(EnvUsername)
	password = os.Getenv(EnvPassword)
	if username == "" || password == "" {
		return "", "", fmt.Errorf("%w: %s and %s must be set (via environment or %s)",
			errors.ErrAuth, EnvUsername, EnvPassword, envFile)
	}
	return username, password, nil
}

// catalogSearcher adapts the catalog client to the orchestrator's
// Searcher interface.
type catalogSearcher struct {
	client *catalog.Client
}

func (s catalogSearcher) Search(criteria model.Criteria, unit model.SearchUnit, window model.DateWindow) orchestrator.ProductIterator {
	return s.client.Search(criteria, unit, window)
}

// discardDownloader satisfies the orchestrator's Downloader for dry runs.
// Every file is reported as skipped, so the summary shows what a real run
// would have fetched.
type discardDownloader struct{}

func (discardDownloader) Fetch(_ context.Context, item download.Item, _ download.Options) model.DownloadOutcome {
	return model.DownloadOutcome{
		Component: item.Entry.Component,
		RelPath:   item.Entry.RelPath,
		Path:      item.Dest,
		Status:    model.StatusSkipped,
	}
}

func (d discardDownloader) FetchAll(ctx context.Context, items []download.Item, opts download.Options) []model.DownloadOutcome {
	outcomes := make([]model.DownloadOutcome, 0, len(items))
	for _, item := range items {
		outcomes = append(outcomes, d.Fetch(ctx, item, opts))
	}
	return outcomes
}

// buildOrchestrator wires the run components from the configuration.
func buildOrchestrator(cfg *config.Config, username, password string, hooks orchestrator.Hooks) *orchestrator.Orchestrator {
	tokens := auth.New(cfg.Settings.TokenURL, username, password, cfg.Settings.HTTPTimeout)

	client := catalog.NewClient(cfg.Settings.CatalogURL, tokens, cfg.Settings.HTTPTimeout,
		catalog.WithPageSize(cfg.Settings.PageSize),
		catalog.WithMaxRetries(cfg.Settings.MaxRetries),
	)

	return &orchestrator.Orchestrator{
		Auth:      tokens,
		Catalog:   catalogSearcher{client: client},
		Manifests: manifest.NewResolver(cfg.Settings.DownloadURL, tokens, cfg.Settings.HTTPTimeout),
		DL:        download.NewManager(tokens, cfg.Settings.DownloadTimeout),
		Extract:   archive.NewManager(),
		Paths:     safepath.NewBuilder(cfg.OutputDir),
		Hooks:     hooks,
	}
}
