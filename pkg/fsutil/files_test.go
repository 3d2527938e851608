package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove(t *testing.T) {
	t.Run("moves file into existing directory", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "src.tmp")
		dst := filepath.Join(dir, "dst.jp2")
		require.NoError(t, os.WriteFile(src, []byte("payload"), FileModeDefault))

		require.NoError(t, Move(src, dst))

		content, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(content))
		_, err = os.Stat(src)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("creates missing destination directories", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "src.tmp")
		dst := filepath.Join(dir, "GRANULE", "IMG_DATA", "R10m", "band.jp2")
		require.NoError(t, os.WriteFile(src, []byte("x"), FileModeDefault))

		require.NoError(t, Move(src, dst))

		_, err := os.Stat(dst)
		assert.NoError(t, err)
	})

	t.Run("rejects empty paths", func(t *testing.T) {
		assert.Error(t, Move("", "dst"))
		assert.Error(t, Move("src", ""))
	})

	t.Run("fails on missing source", func(t *testing.T) {
		dir := t.TempDir()
		assert.Error(t, Move(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")))
	})
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	dst := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(src, []byte("data"), FileModeDefault))

	require.NoError(t, Copy(src, dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	// Source still exists after a copy.
	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")

	require.NoError(t, EnsureDir(nested))
	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent.
	assert.NoError(t, EnsureDir(nested))

	assert.Error(t, EnsureDir(""))
}
