// Package orchestrator drives a full acquisition run: for every search
// unit and monthly window it searches the catalog, selects products,
// resolves their file manifests and downloads the files, folding every
// outcome into a RunSummary. Only authentication failures abort a run.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cperrin88/sentfetch/internal/logger"
	"github.com/cperrin88/sentfetch/pkg/auth"
	"github.com/cperrin88/sentfetch/pkg/download"
	pkgerrors "github.com/cperrin88/sentfetch/pkg/errors"
	"github.com/cperrin88/sentfetch/pkg/model"
	"github.com/cperrin88/sentfetch/pkg/safepath"
	"github.com/cperrin88/sentfetch/pkg/selector"
)

// Orchestrator ties Auth, Catalog, Manifests and Download together for a run.
type Orchestrator struct {
	Auth      auth.TokenSource
	Catalog   Searcher
	Manifests ManifestResolver
	DL        Downloader
	Extract   Extractor
	Paths     *safepath.Builder
	Hooks     Hooks
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Run executes the acquisition described by criteria. The returned summary
// is complete even when individual units, products or files failed; an
// error is returned only for fatal conditions (credentials, configuration,
// context cancellation).
func (o *Orchestrator) Run(ctx context.Context, criteria model.Criteria, opts Options) (*model.RunSummary, error) {
	if err := o.validate(opts); err != nil {
		return nil, err
	}

	emit(o.Hooks, Event{Phase: "authenticating"})
	if _, err := o.Auth.EnsureValid(ctx); err != nil {
		emit(o.Hooks, Event{Phase: "error", Msg: err.Error()})
		return nil, err
	}

	summary := model.NewRunSummary()
	windows := criteria.Windows()
	logger.Info("starting run", logger.Fields{
		"run_id":  summary.RunID,
		"units":   len(criteria.Units),
		"windows": len(windows),
	})

	for i, unit := range criteria.Units {
		if i > 0 && opts.UnitDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(opts.UnitDelay):
			}
		}
		if err := o.runUnit(ctx, summary, criteria, unit, windows, opts); err != nil {
			return summary, err
		}
	}

	emit(o.Hooks, Event{Phase: "done", Msg: summary.RunID})
	return summary, nil
}

func (o *Orchestrator) validate(opts Options) error {
	if o.Auth == nil || o.Catalog == nil || o.DL == nil || o.Paths == nil {
		return fmt.Errorf("%w: orchestrator is missing a dependency", pkgerrors.ErrConfigValidation)
	}
	switch opts.DownloadMode {
	case "", ModeFiles:
		if o.Manifests == nil {
			return fmt.Errorf("%w: manifest resolver is not configured", pkgerrors.ErrConfigValidation)
		}
	case ModeArchive:
		if o.Manifests == nil || o.Extract == nil {
			return fmt.Errorf("%w: archive mode needs a manifest resolver and an extractor", pkgerrors.ErrConfigValidation)
		}
	default:
		return fmt.Errorf("%w: unknown download mode %q", pkgerrors.ErrConfigValidation, opts.DownloadMode)
	}
	return nil
}

// runUnit processes every window of one search unit. A catalog failure
// skips the unit's remaining windows; only auth errors and cancellation
// propagate.
func (o *Orchestrator) runUnit(ctx context.Context, summary *model.RunSummary, criteria model.Criteria, unit model.SearchUnit, windows []model.DateWindow, opts Options) error {
	for _, window := range windows {
		stepID := unit.ID + "/" + window.Key()
		emit(o.Hooks, Event{Phase: "searching", ID: stepID})

		records, err := drain(ctx, o.Catalog.Search(criteria, unit, window))
		if err != nil {
			if errors.Is(err, pkgerrors.ErrAuth) || ctx.Err() != nil {
				emit(o.Hooks, Event{Phase: "error", ID: stepID, Msg: err.Error()})
				return err
			}
			logger.Warn("search unit failed, skipping its remaining windows", logger.Fields{
				"unit":   unit.ID,
				"window": window.Key(),
				"error":  err.Error(),
			})
			summary.RecordUnitFailure(unit.ID, window.Key(), err)
			emit(o.Hooks, Event{Phase: "error", ID: stepID, Msg: err.Error()})
			return nil
		}

		if len(records) == 0 {
			logger.Info("no product found", logger.Fields{"unit": unit.ID, "window": window.Key()})
			summary.RecordNoProduct(unit.ID, window.Key())
			continue
		}
		summary.ProductsDiscovered += len(records)

		emit(o.Hooks, Event{Phase: "selecting", ID: stepID})
		selected := selector.Select(records, criteria)
		summary.ProductsSelected += len(selected)

		for _, product := range selected {
			res := o.processProduct(ctx, product, criteria, unit, window, opts)
			summary.AddProductResult(res)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
	return nil
}

// drain consumes an iterator into a slice. Pagination stays lazy inside
// the iterator; selection needs the full window to compare candidates.
func drain(ctx context.Context, it ProductIterator) ([]model.ProductRecord, error) {
	var records []model.ProductRecord
	for {
		rec, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return records, nil
		}
		records = append(records, *rec)
	}
}

func (o *Orchestrator) processProduct(ctx context.Context, product model.SelectedProduct, criteria model.Criteria, unit model.SearchUnit, window model.DateWindow, opts Options) model.ProductResult {
	res := model.ProductResult{
		UnitID:      unit.ID,
		WindowKey:   window.Key(),
		ProductName: product.Name,
	}
	stepID := unit.ID + "/" + window.Key()

	if opts.DownloadMode == ModeArchive {
		res.Outcomes = []model.DownloadOutcome{o.fetchArchive(ctx, product, stepID, opts)}
		return res
	}

	emit(o.Hooks, Event{Phase: "resolving", ID: stepID, Msg: product.Name})
	fm, err := o.Manifests.Resolve(ctx, product, criteria)
	if err != nil {
		res.Outcomes = []model.DownloadOutcome{{
			Component: "manifest",
			Status:    model.StatusFailed,
			Err:       pkgerrors.Wrapf(err, "could not resolve manifest for %s", product.Name),
		}}
		return res
	}
	res.Unavailable = fm.UnavailableComponents()

	items, failed := o.buildItems(product, fm.Downloadable())
	res.Outcomes = append(res.Outcomes, failed...)

	emit(o.Hooks, Event{Phase: "downloading", ID: stepID, Msg: product.Name})
	outcomes := o.DL.FetchAll(ctx, items, download.Options{
		MaxRetries:  opts.MaxRetries,
		Concurrency: opts.Concurrency,
	})
	res.Outcomes = append(res.Outcomes, outcomes...)
	return res
}

// buildItems maps manifest entries to download items. Entries with an
// unusable destination path become failed outcomes instead of items.
func (o *Orchestrator) buildItems(product model.SelectedProduct, entries []model.ManifestEntry) ([]download.Item, []model.DownloadOutcome) {
	items := make([]download.Item, 0, len(entries))
	var failed []model.DownloadOutcome
	for _, entry := range entries {
		dest, err := o.Paths.TargetPath(product, entry)
		if err != nil {
			failed = append(failed, model.DownloadOutcome{
				Component: entry.Component,
				RelPath:   entry.RelPath,
				Status:    model.StatusFailed,
				Err:       err,
			})
			continue
		}
		items = append(items, download.Item{Entry: entry, Dest: dest})
	}
	return items, failed
}

// fetchArchive downloads the whole product zip and unpacks it into the
// output directory. The zip is kept next to the extracted tree.
func (o *Orchestrator) fetchArchive(ctx context.Context, product model.SelectedProduct, stepID string, opts Options) model.DownloadOutcome {
	const component = "product-archive"

	dest, err := o.Paths.ArchivePath(product)
	if err != nil {
		return model.DownloadOutcome{Component: component, Status: model.StatusFailed, Err: err}
	}

	emit(o.Hooks, Event{Phase: "downloading", ID: stepID, Msg: product.Name})
	outcome := o.DL.Fetch(ctx, download.Item{
		Entry: model.ManifestEntry{
			Component:   component,
			RelPath:     product.Name,
			URL:         o.Manifests.ProductArchiveURL(product),
			ContentType: "application/zip",
		},
		Dest: dest,
	}, download.Options{MaxRetries: opts.MaxRetries})

	if outcome.Status != model.StatusSuccess {
		return outcome
	}
	if err := o.Extract.ExtractAll(ctx, dest, o.Paths.OutputDir()); err != nil {
		outcome.Status = model.StatusFailed
		outcome.Err = pkgerrors.Wrapf(err, "could not extract %s", product.Name)
	}
	return outcome
}
