package model

import (
	"github.com/google/uuid"

	"github.com/cperrin88/sentfetch/pkg/errors"
)

// DownloadStatus is the terminal state of one file download.
type DownloadStatus string

// Download statuses.
const (
	StatusSuccess DownloadStatus = "success"
	StatusFailed  DownloadStatus = "failed-after-retries"
	StatusSkipped DownloadStatus = "skipped-existing"
)

// DownloadOutcome records the result of fetching one manifest entry.
type DownloadOutcome struct {
	Component string
	RelPath   string
	Path      string
	Status    DownloadStatus
	Attempts  int
	Err       error
}

// ProductResult aggregates the outcomes for one selected product.
type ProductResult struct {
	UnitID      string
	WindowKey   string
	ProductName string
	Outcomes    []DownloadOutcome
	// Unavailable lists requested components missing from the product.
	Unavailable []string
}

// Failure describes one recorded non-fatal failure of a run.
type Failure struct {
	UnitID    string
	WindowKey string
	Component string
	Reason    string
}

// RunSummary is the structured result of a whole run. The run always
// completes with a summary; only authentication and configuration errors
// abort it.
type RunSummary struct {
	RunID string

	ProductsDiscovered int
	ProductsSelected   int
	NoProductFound     int
	UnitsFailed        int

	FilesSucceeded int
	FilesFailed    int
	FilesSkipped   int

	Results  []ProductResult
	Failures []Failure
}

// NewRunSummary creates an empty summary with a fresh run identifier.
func NewRunSummary() *RunSummary {
	return &RunSummary{RunID: uuid.NewString()}
}

// AddProductResult folds one product's outcomes into the summary counters.
func (s *RunSummary) AddProductResult(res ProductResult) {
	s.Results = append(s.Results, res)
	for _, c := range res.Unavailable {
		s.Failures = append(s.Failures, Failure{
			UnitID:    res.UnitID,
			WindowKey: res.WindowKey,
			Component: c,
			Reason:    errors.ErrUnavailableComponent.Error(),
		})
	}
	for _, o := range res.Outcomes {
		switch o.Status {
		case StatusSuccess:
			s.FilesSucceeded++
		case StatusSkipped:
			s.FilesSkipped++
		case StatusFailed:
			s.FilesFailed++
			reason := "download failed"
			if o.Err != nil {
				reason = o.Err.Error()
			}
			s.Failures = append(s.Failures, Failure{
				UnitID:    res.UnitID,
				WindowKey: res.WindowKey,
				Component: o.Component,
				Reason:    reason,
			})
		}
	}
}

// RecordNoProduct records an empty (unit, window) bucket.
func (s *RunSummary) RecordNoProduct(unitID, windowKey string) {
	s.NoProductFound++
	s.Failures = append(s.Failures, Failure{
		UnitID:    unitID,
		WindowKey: windowKey,
		Reason:    errors.ErrNoProductFound.Error(),
	})
}

// RecordUnitFailure records a search unit that failed and was skipped.
func (s *RunSummary) RecordUnitFailure(unitID, windowKey string, err error) {
	s.UnitsFailed++
	reason := "search unit failed"
	if err != nil {
		reason = err.Error()
	}
	s.Failures = append(s.Failures, Failure{
		UnitID:    unitID,
		WindowKey: windowKey,
		Reason:    reason,
	})
}
