//go:build integration

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cperrin88/sentfetch/test/testutil"
)

const testProductName = "S2A_MSIL2A_20230601T100031_N0509_R122_T33UVP_20230601T134349.SAFE"

const testBandPath = "GRANULE/L2A_T33UVP_A041472/IMG_DATA/R10m/T33UVP_20230601T100031_B02_10m.jp2"

func testProduct() testutil.ProductFixture {
	return testutil.ProductFixture{
		ID:   "prod-1",
		Name: testProductName,
		Files: map[string]string{
			testBandPath: "jp2 bytes",
			"GRANULE/L2A_T33UVP_A041472/MTD_TL.xml": "<Level-2A_Tile_ID/>",
		},
	}
}

func writeRunConfig(t *testing.T, outputDir string, services *testutil.FakeServices) string {
	t.Helper()
	configYAML := fmt.Sprintf(`
mission: s2
tile_ids:
  - T33UVP
initial_date: 2023-06-01
last_date: 2023-06-30
product_level: L2A
band_selection:
  - B02_10m
output_dir: %s
settings:
  http_timeout: 5s
  download_timeout: 5s
  max_retries: 2
  concurrency: 2
  unit_delay: 0s
  catalog_url: %s
  download_url: %s
  token_url: %s
`, outputDir, services.ODataURL, services.ODataURL, services.TokenURL)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o644))
	return path
}

func runFetch(t *testing.T, configPath string) error {
	t.Helper()
	_, err := captureStdout(t, func() error {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"fetch", "--config", configPath})
		return cmd.ExecuteContext(context.Background())
	})
	return err
}

func TestFetchCommand_EndToEnd(t *testing.T) {
	services := testutil.NewFakeServices(t, testProduct())
	outputDir := t.TempDir()
	configPath := writeRunConfig(t, outputDir, services)

	t.Setenv("COPERNICUS_USERNAME", testutil.TestUsername)
	t.Setenv("COPERNICUS_PASSWORD", testutil.TestPassword)

	require.NoError(t, runFetch(t, configPath))

	productDir := filepath.Join(outputDir, testProductName)

	manifest, err := os.ReadFile(filepath.Join(productDir, "manifest.safe"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "dataObjectSection")

	band, err := os.ReadFile(filepath.Join(productDir, filepath.FromSlash(testBandPath)))
	require.NoError(t, err)
	assert.Equal(t, "jp2 bytes", string(band))

	// Only the requested band is fetched; the tile metadata stays remote.
	_, err = os.Stat(filepath.Join(productDir, "GRANULE", "L2A_T33UVP_A041472", "MTD_TL.xml"))
	assert.True(t, os.IsNotExist(err))
}

func TestFetchCommand_RerunSkipsExisting(t *testing.T) {
	services := testutil.NewFakeServices(t, testProduct())
	outputDir := t.TempDir()
	configPath := writeRunConfig(t, outputDir, services)

	t.Setenv("COPERNICUS_USERNAME", testutil.TestUsername)
	t.Setenv("COPERNICUS_PASSWORD", testutil.TestPassword)

	require.NoError(t, runFetch(t, configPath))
	require.NoError(t, runFetch(t, configPath))

	band, err := os.ReadFile(filepath.Join(outputDir, testProductName, filepath.FromSlash(testBandPath)))
	require.NoError(t, err)
	assert.Equal(t, "jp2 bytes", string(band))
}

func TestFetchCommand_DryRunDownloadsNothing(t *testing.T) {
	services := testutil.NewFakeServices(t, testProduct())
	outputDir := t.TempDir()
	configPath := writeRunConfig(t, outputDir, services)

	t.Setenv("COPERNICUS_USERNAME", testutil.TestUsername)
	t.Setenv("COPERNICUS_PASSWORD", testutil.TestPassword)

	_, err := captureStdout(t, func() error {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"fetch", "--config", configPath, "--dry-run"})
		return cmd.ExecuteContext(context.Background())
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outputDir, testProductName))
	assert.True(t, os.IsNotExist(err))
}

func TestFetchCommand_BadCredentials(t *testing.T) {
	services := testutil.NewFakeServices(t, testProduct())
	configPath := writeRunConfig(t, t.TempDir(), services)

	t.Setenv("COPERNICUS_USERNAME", testutil.TestUsername)
	t.Setenv("COPERNICUS_PASSWORD", "wrong")

	require.Error(t, runFetch(t, configPath))
}
