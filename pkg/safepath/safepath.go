// Package safepath maps product components to destination paths under the
// output directory and rejects paths that would escape it.
package safepath

import (
	"fmt"
	"path/filepath"
	"strings"

	pkgerrors "github.com/cperrin88/sentfetch/pkg/errors"
	"github.com/cperrin88/sentfetch/pkg/model"
)

// Builder computes destination paths for downloaded product files. All
// paths live under the configured output directory; manifest-relative
// paths that resolve outside of it are rejected.
type Builder struct {
	outputDir string
}

// NewBuilder creates a Builder rooted at outputDir.
func NewBuilder(outputDir string) *Builder {
	return &Builder{outputDir: outputDir}
}

// OutputDir returns the configured output root.
func (b *Builder) OutputDir() string {
	return b.outputDir
}

// ProductDir returns the directory a product's files are written to.
// Product names already carry the .SAFE suffix, so the directory is the
// product name as published.
func (b *Builder) ProductDir(product model.SelectedProduct) (string, error) {
	if err := validateSegment(product.Name); err != nil {
		return "", err
	}
	return filepath.Join(b.outputDir, product.Name), nil
}

// TargetPath returns the destination path for one manifest entry.
func (b *Builder) TargetPath(product model.SelectedProduct, entry model.ManifestEntry) (string, error) {
	dir, err := b.ProductDir(product)
	if err != nil {
		return "", err
	}
	if err := validateRelative(entry.RelPath); err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.FromSlash(entry.RelPath)), nil
}

// ArchivePath returns the destination for a whole-product zip download.
func (b *Builder) ArchivePath(product model.SelectedProduct) (string, error) {
	if err := validateSegment(product.Name); err != nil {
		return "", err
	}
	name := strings.TrimSuffix(product.Name, ".SAFE") + ".zip"
	return filepath.Join(b.outputDir, name), nil
}

// validateSegment checks a single path element such as a product name.
func validateSegment(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty product name", pkgerrors.ErrInvalidPath)
	}
	if strings.ContainsAny(name, `/\`) || name == ".." || name == "." {
		return fmt.Errorf("%w: product name %q", pkgerrors.ErrInvalidPath, name)
	}
	return nil
}

// validateRelative checks a manifest-relative href. Manifest hrefs use
// forward slashes regardless of platform.
func validateRelative(relPath string) error {
	if relPath == "" {
		return fmt.Errorf("%w: empty relative path", pkgerrors.ErrInvalidPath)
	}
	if strings.HasPrefix(relPath, "/") || (len(relPath) > 1 && relPath[1] == ':') {
		return fmt.Errorf("%w: absolute path %q", pkgerrors.ErrInvalidPath, relPath)
	}
	cleaned := filepath.ToSlash(filepath.Clean(filepath.FromSlash(relPath)))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%w: path %q escapes the product directory", pkgerrors.ErrInvalidPath, relPath)
	}
	return nil
}
