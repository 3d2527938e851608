package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
)

// ProductRecord is one candidate product returned by a catalog search.
// Records are read-only for consumers; the selector never mutates them.
type ProductRecord struct {
	ID      string
	Name    string
	Mission Mission

	SensingStart time.Time
	Published    time.Time
	Online       bool

	// OrbitDirection is filled when the catalog response carries the
	// orbitDirection attribute (Sentinel-1 searches).
	OrbitDirection string

	// Unit and Window identify the search this record satisfied.
	Unit   SearchUnit
	Window DateWindow
}

// GroupKey identifies the (unit, window) bucket the record belongs to.
func (p ProductRecord) GroupKey() string {
	return p.Unit.ID + "/" + p.Window.Key()
}

// Baseline returns the processing baseline parsed from the product name
// (the N#### segment, e.g. N0509 -> 5.09), or nil when absent. Higher
// baselines win Sentinel-2 tie-breaks.
func (p ProductRecord) Baseline() *version.Version {
	for _, part := range strings.Split(strings.TrimSuffix(p.Name, ".SAFE"), "_") {
		if len(part) == 5 && part[0] == 'N' && isDigits(part[1:]) {
			v, err := version.NewVersion(fmt.Sprintf("%s.%s", part[1:3], part[3:5]))
			if err != nil {
				return nil
			}
			return v
		}
	}
	return nil
}

// Level returns the Sentinel-2 product level (L1C or L2A) parsed from the
// name's MSIL segment, or "".
func (p ProductRecord) Level() string {
	for _, part := range strings.Split(p.Name, "_") {
		if strings.HasPrefix(part, "MSIL") {
			return strings.TrimPrefix(part, "MSI")
		}
	}
	return ""
}

// Type returns the Sentinel-1 product type token from the name (e.g. GRDH,
// SLC), or "".
func (p ProductRecord) Type() string {
	parts := strings.Split(p.Name, "_")
	if len(parts) < 3 || !strings.HasPrefix(parts[0], "S1") {
		return ""
	}
	// S1A_IW_GRDH_1SDV_... ; the type follows the acquisition mode.
	t := parts[2]
	if strings.HasSuffix(t, "__") {
		t = strings.TrimSuffix(t, "__")
	}
	return t
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// SelectedProduct is the product chosen to represent one (unit, window)
// bucket.
type SelectedProduct struct {
	ProductRecord
}
