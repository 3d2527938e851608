//go:generate mockgen -destination=./mocks/orchestrator.go . ProductIterator,Searcher,ManifestResolver,Downloader,Extractor

package orchestrator

import (
	"context"
	"net/url"
	"time"

	"github.com/cperrin88/sentfetch/pkg/download"
	"github.com/cperrin88/sentfetch/pkg/model"
)

// ProductIterator yields catalog records one at a time. Next returns
// (nil, nil) when the result set is exhausted.
type ProductIterator interface {
	Next(ctx context.Context) (*model.ProductRecord, error)
}

// Searcher is the subset of the catalog client used by the orchestrator.
type Searcher interface {
	Search(criteria model.Criteria, unit model.SearchUnit, window model.DateWindow) ProductIterator
}

// ManifestResolver expands a selected product into downloadable entries.
type ManifestResolver interface {
	Resolve(ctx context.Context, product model.SelectedProduct, criteria model.Criteria) (model.FileManifest, error)
	ProductArchiveURL(product model.SelectedProduct) *url.URL
}

// Downloader handles product file downloading.
type Downloader interface {
	Fetch(ctx context.Context, item download.Item, opts download.Options) model.DownloadOutcome
	FetchAll(ctx context.Context, items []download.Item, opts download.Options) []model.DownloadOutcome
}

// Extractor unpacks a downloaded product archive.
type Extractor interface {
	ExtractAll(ctx context.Context, archivePath, destDir string) error
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // authenticating|searching|selecting|resolving|downloading|done|error
	ID    string // step ID, usually "<unit>/<window>"
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Download modes.
const (
	ModeFiles   = "files"
	ModeArchive = "archive"
)

// Options control orchestrator run execution.
type Options struct {
	// DownloadMode is ModeFiles (manifest-driven, default) or ModeArchive
	// (whole product zip).
	DownloadMode string
	MaxRetries   int
	Concurrency  int
	// UnitDelay is the politeness pause between search units.
	UnitDelay time.Duration
}
