package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSummaryCounters(t *testing.T) {
	s := NewRunSummary()
	require.NotEmpty(t, s.RunID)

	s.AddProductResult(ProductResult{
		UnitID:      "T19HCC",
		WindowKey:   "2019-01",
		ProductName: "S2A_MSIL2A_20190107T143751_N0211_R096_T19HCC_20190107T165453.SAFE",
		Unavailable: []string{"B99_10m"},
		Outcomes: []DownloadOutcome{
			{Component: "B02_10m", Status: StatusSuccess, Attempts: 1},
			{Component: "TCI_10m", Status: StatusSkipped},
			{Component: "B03_10m", Status: StatusFailed, Attempts: 3, Err: errors.New("connection reset")},
		},
	})
	s.RecordNoProduct("T19KCP", "2019-01")
	s.RecordUnitFailure("valley", "2019-02", errors.New("catalog query failed"))

	assert.Equal(t, 1, s.FilesSucceeded)
	assert.Equal(t, 1, s.FilesSkipped)
	assert.Equal(t, 1, s.FilesFailed)
	assert.Equal(t, 1, s.NoProductFound)
	assert.Equal(t, 1, s.UnitsFailed)

	// One per unavailable component, failed file, empty bucket and failed unit.
	require.Len(t, s.Failures, 4)
	assert.Equal(t, "B99_10m", s.Failures[0].Component)
	assert.Equal(t, "connection reset", s.Failures[1].Reason)
	assert.Equal(t, "no product found", s.Failures[2].Reason)
	assert.Equal(t, "catalog query failed", s.Failures[3].Reason)
}

func TestFileManifestHelpers(t *testing.T) {
	m := FileManifest{Entries: []ManifestEntry{
		{Component: "manifest", RelPath: "manifest.safe"},
		{Component: "B02_10m", RelPath: "GRANULE/x/IMG_DATA/R10m/a_B02_10m.jp2"},
		{Component: "B99_10m", Unavailable: true},
	}}

	assert.Len(t, m.Downloadable(), 2)
	assert.Equal(t, []string{"B99_10m"}, m.UnavailableComponents())
}
