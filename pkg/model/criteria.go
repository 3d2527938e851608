// Package model provides the data structures shared by the retrieval
// pipeline: search criteria, catalog product records, file manifests and
// per-run download outcomes.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Mission identifies the Sentinel mission a run targets.
type Mission string

// Supported missions.
const (
	MissionS1 Mission = "S1"
	MissionS2 Mission = "S2"
)

// Collection returns the catalog collection name for the mission.
func (m Mission) Collection() string {
	switch m {
	case MissionS1:
		return "SENTINEL-1"
	case MissionS2:
		return "SENTINEL-2"
	default:
		return ""
	}
}

// Valid reports whether the mission is one of the supported values.
func (m Mission) Valid() bool {
	return m == MissionS1 || m == MissionS2
}

// SearchUnit is one spatial selector of a run: a Sentinel-2 tile ID, or a
// named Sentinel-1 footprint polygon.
type SearchUnit struct {
	// ID is the tile ID (e.g. T19HCC) or the footprint name.
	ID string
	// Footprint holds the polygon ring as "lon lat" coordinate pairs.
	// Empty for tile-based units.
	Footprint []string
}

// IsFootprint reports whether the unit selects by polygon rather than tile ID.
func (u SearchUnit) IsFootprint() bool {
	return len(u.Footprint) > 0
}

// PolygonWKT renders the footprint ring as the coordinate list of a WKT
// POLYGON, e.g. "-70.1 -33.2, -70.0 -33.2, ...".
func (u SearchUnit) PolygonWKT() string {
	return strings.Join(u.Footprint, ", ")
}

// DateWindow is one date sub-range of a run. Windows bucket products for
// selection: at most one product is chosen per (unit, window) unless the
// run allows multiple.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

const windowTimeFormat = "2006-01-02T15:04:05.000Z"

// StartParam returns the window start formatted for catalog queries.
func (w DateWindow) StartParam() string {
	return w.Start.UTC().Format(windowTimeFormat)
}

// EndParam returns the window end formatted for catalog queries.
func (w DateWindow) EndParam() string {
	return w.End.UTC().Format(windowTimeFormat)
}

// Key returns a stable bucket key for grouping, e.g. "2019-01".
func (w DateWindow) Key() string {
	return w.Start.UTC().Format("2006-01")
}

// Contains reports whether t falls inside the window (inclusive).
func (w DateWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// MonthlyWindows splits [start, end] into calendar-month windows. The first
// window starts at start, the last one ends at end; every window covers
// whole days (00:00:00.000 to 23:59:59.999 UTC).
func MonthlyWindows(start, end time.Time) []DateWindow {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999000000, time.UTC)

	var windows []DateWindow
	current := start
	for !current.After(end) {
		monthEnd := time.Date(current.Year(), current.Month()+1, 1, 0, 0, 0, 0, time.UTC).
			Add(-time.Millisecond)
		windowEnd := monthEnd
		if windowEnd.After(end) {
			windowEnd = end
		}
		windows = append(windows, DateWindow{Start: current, End: windowEnd})
		current = windowEnd.Add(time.Millisecond)
	}
	return windows
}

// Criteria describes what a run searches for. It is constructed once
// from configuration.
type Criteria struct {
	Mission Mission
	Units   []SearchUnit

	InitialDate time.Time
	LastDate    time.Time

	// Sentinel-2 filters.
	ProductLevel   string            // L1C or L2A
	BandSelection  []string          // e.g. B02_10m, TCI_10m
	RelativeOrbits map[string]string // tile ID -> relative orbit (e.g. R096)

	// Sentinel-1 filters.
	OrbitDirection string   // ASCENDING or DESCENDING
	ProductType    string   // e.g. GRDH, SLC
	Polarizations  []string // e.g. VV, VH

	// AllowMultiple keeps every matching product per (unit, window)
	// instead of selecting a single one.
	AllowMultiple bool
}

// Windows returns the monthly date windows covering the run's date range.
func (c Criteria) Windows() []DateWindow {
	return MonthlyWindows(c.InitialDate, c.LastDate)
}

// RelativeOrbit returns the configured relative orbit for a tile, or "".
func (c Criteria) RelativeOrbit(tileID string) string {
	return c.RelativeOrbits[tileID]
}

// String summarizes the criteria for logging.
func (c Criteria) String() string {
	units := make([]string, 0, len(c.Units))
	for _, u := range c.Units {
		units = append(units, u.ID)
	}
	return fmt.Sprintf("%s(units=%s, range=%s to %s)",
		c.Mission.Collection(),
		strings.Join(units, ","),
		c.InitialDate.Format("2006-01-02"),
		c.LastDate.Format("2006-01-02"))
}
