// Package archive extracts downloaded product archives into the output
// directory. Product zips from the catalog carry a single top-level
// <product>.SAFE directory, so extraction into the output root reproduces
// the same layout the per-file download mode writes.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	pkgerrors "github.com/cperrin88/sentfetch/pkg/errors"
	"github.com/cperrin88/sentfetch/pkg/fsutil"
)

// Manager handles product archive extraction.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// ExtractAll extracts all files from an archive to the specified
// destination directory. Entries whose path would resolve outside destDir
// are rejected with ErrInvalidPath.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	if err := os.MkdirAll(destDir, fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return am.extractEntry(fsys, path, destDir, d)
	}

	return fs.WalkDir(fsys, ".", walkFn)
}

// extractEntry writes a single archive entry under destDir.
func (am *Manager) extractEntry(fsys fs.FS, path, destDir string, d fs.DirEntry) error {
	if path == "." {
		return nil
	}

	targetPath, err := guardedJoin(destDir, path)
	if err != nil {
		return err
	}

	if d.IsDir() {
		return os.MkdirAll(targetPath, fsutil.DirModeDefault)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("failed to get file info for %s: %w", path, err)
	}

	// Product archives hold regular files only; anything else is refused
	// rather than materialized.
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: refusing irregular entry %s", pkgerrors.ErrInvalidPath, path)
	}

	return am.writeRegularFile(fsys, path, targetPath)
}

// writeRegularFile streams one archive entry to targetPath.
func (am *Manager) writeRegularFile(fsys fs.FS, path, targetPath string) error {
	srcFile, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", path, err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	dstFile, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", targetPath, err)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file %s: %w", path, err)
	}
	return nil
}

// guardedJoin joins an archive entry path onto destDir and verifies the
// result stays inside destDir.
func guardedJoin(destDir, entryPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(entryPath))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: archive entry %q escapes destination", pkgerrors.ErrInvalidPath, entryPath)
	}
	return filepath.Join(destDir, cleaned), nil
}
