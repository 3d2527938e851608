package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// Move moves a file from src to dst, creating the destination directory
// if needed. It first attempts os.Rename for an atomic move and falls
// back to copy + delete when src and dst live on different filesystems.
func Move(src, dst string) error {
	if src == "" || dst == "" {
		return fmt.Errorf("source and destination paths cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dst), DirModeDefault); err != nil {
		return fmt.Errorf("failed to create destination directory for %s: %w", dst, err)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	if !isCrossFilesystemError(err) {
		return fmt.Errorf("failed to rename %s to %s: %w", src, dst, err)
	}

	if err := Copy(src, dst); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove source file %s after copy: %w", src, err)
	}
	return nil
}

// isCrossFilesystemError reports whether an os.Rename error indicates a
// cross-filesystem boundary that requires the copy + delete fallback.
func isCrossFilesystemError(err error) bool {
	if err == nil {
		return false
	}

	var linkError *os.LinkError
	if errors.As(err, &linkError) {
		if errno, ok := linkError.Err.(syscall.Errno); ok {
			return errno == syscall.EXDEV
		}
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return isCrossFilesystemError(pathErr.Err)
	}

	return false
}

// Copy copies the contents of srcFile to dstFile.
func Copy(srcFile, dstFile string) error {
	src, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer src.Close()

	dst, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy from %s to %s: %w", srcFile, dstFile, err)
	}

	return nil
}

// EnsureDir creates dir and any missing parents. It is a no-op when the
// directory already exists.
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory path cannot be empty")
	}
	return os.MkdirAll(dir, DirModeDefault)
}
