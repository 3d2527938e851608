package config

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/cperrin88/sentfetch/pkg/errors"
	"github.com/cperrin88/sentfetch/pkg/model"
)

// LoadFootprints reads a footprints JSON file mapping area names to polygon
// rings of "lon lat" coordinate pairs and returns one search unit per area,
// sorted by name for deterministic run order.
func LoadFootprints(path string) ([]model.SearchUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read footprints file: %s", path)
	}

	var footprints map[string][]string
	if err := json.Unmarshal(data, &footprints); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	units := make([]model.SearchUnit, 0, len(footprints))
	for name, ring := range footprints {
		if len(ring) < 4 {
			return nil, errors.Wrapf(errors.ErrConfigValidation,
				"footprint %q has %d points, a closed polygon ring needs at least 4", name, len(ring))
		}
		units = append(units, model.SearchUnit{ID: name, Footprint: ring})
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })

	return units, nil
}
