package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cperrin88/sentfetch/pkg/errors"
)

func writeFootprints(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "footprints.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFootprints(t *testing.T) {
	path := writeFootprints(t, `{
		"zone-b": ["-70.1 -33.2", "-70.0 -33.2", "-70.0 -33.1", "-70.1 -33.2"],
		"zone-a": ["-71.5 -34.0", "-71.4 -34.0", "-71.4 -33.9", "-71.5 -34.0"]
	}`)

	units, err := LoadFootprints(path)
	require.NoError(t, err)
	require.Len(t, units, 2)

	// Sorted by name.
	assert.Equal(t, "zone-a", units[0].ID)
	assert.Equal(t, "zone-b", units[1].ID)
	assert.Len(t, units[0].Footprint, 4)
}

func TestLoadFootprints_MissingFile(t *testing.T) {
	_, err := LoadFootprints(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadFootprints_BadJSON(t *testing.T) {
	path := writeFootprints(t, `{"zone": [unterminated`)
	_, err := LoadFootprints(path)
	assert.ErrorIs(t, err, errors.ErrConfigParse)
}

func TestLoadFootprints_OpenRing(t *testing.T) {
	path := writeFootprints(t, `{"zone": ["-70.1 -33.2", "-70.0 -33.2"]}`)
	_, err := LoadFootprints(path)
	assert.ErrorIs(t, err, errors.ErrConfigValidation)
}
