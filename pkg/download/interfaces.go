//go:generate mockgen -destination=mocks/download.go . Manager
package download

import (
	"context"

	"github.com/cperrin88/sentfetch/pkg/model"
)

// Manager defines the interface for downloading product component files.
// It replaces ad-hoc HTTP downloading with a higher-level, testable API
// that supports bounded retries, skip-existing reruns and atomic writes.
type Manager interface {
	// Fetch downloads a single manifest entry to its destination path.
	// It never returns an error: every terminal state is captured in
	// the outcome so a single file failure cannot abort a product.
	Fetch(ctx context.Context, item Item, opts Options) model.DownloadOutcome

	// FetchAll downloads one product's entries with a small bounded
	// worker pool, returning one outcome per item in input order.
	FetchAll(ctx context.Context, items []Item, opts Options) []model.DownloadOutcome
}

// Item pairs one manifest entry with its destination path on disk.
type Item struct {
	Entry model.ManifestEntry
	Dest  string
}

// Options control the behavior of the download manager.
type Options struct {
	// MaxRetries bounds the attempts per file; if <=0 the default of 3
	// is used.
	MaxRetries int
	// Concurrency is the worker pool size for FetchAll; if <=0 a sane
	// default is used. Concurrency is local to one product's manifest.
	Concurrency int
}
