// Package fsutil provides utility functions and constants for file system operations.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File and directory permission constants, used consistently throughout the
// application.
const (
	// FileModeDefault is -rw-r--r--: default for regular files.
	FileModeDefault = 0o644
	// FileModeSecure is -rw-r-----: for sensitive files.
	FileModeSecure = 0o640
	// DirModeDefault is drwxr-xr-x: default for directories.
	DirModeDefault = 0o755
	// DirModeSecure is drwxr-x---: for sensitive directories.
	DirModeSecure = 0o750
)

// EnsureDir creates a directory and all necessary parent directories with
// default permissions if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// Move moves a file from src to dst. It first attempts an atomic os.Rename
// and falls back to copy + delete when the rename fails (typically across
// filesystem boundaries).
func Move(src, dst string) error {
	if src == "" || dst == "" {
		return fmt.Errorf("source and destination paths cannot be empty")
	}
	if err := EnsureFileDir(dst); err != nil {
		return fmt.Errorf("failed to create destination directory for %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyAndRemove(src, dst)
}

func copyAndRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileModeDefault)
	if err != nil {
		return fmt.Errorf("failed to create destination %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination %s: %w", dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove source %s after copy: %w", src, err)
	}
	return nil
}
