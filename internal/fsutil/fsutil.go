// Package fsutil provides atomic file replacement helpers for render
// artifacts that are served over HTTP while being rewritten.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

const (
	replaceAttempts = 5
	replaceBackoff  = 200 * time.Millisecond
)

// WriteFileAtomic writes data to a sibling temp file and renames it
// over path, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Replace renames tmp over dst, retrying briefly when the destination
// is held open by a concurrent reader. Failures that cannot clear on
// their own surface immediately. Returns the last rename error after
// all attempts fail.
func Replace(tmp, dst string) error {
	var err error
	for i := 0; i < replaceAttempts; i++ {
		if err = os.Rename(tmp, dst); err == nil {
			return nil
		}
		if !retryable(err) {
			break
		}
		time.Sleep(replaceBackoff)
	}
	return fmt.Errorf("replace %s: %w", filepath.Base(dst), err)
}

// retryable reports whether a rename failure can clear by waiting, as
// sharing-violation contention from an open reader does. A missing
// source, a denied permission, or a destination that is a directory
// never resolves on its own.
func retryable(err error) bool {
	switch {
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, fs.ErrInvalid),
		errors.Is(err, syscall.EISDIR),
		errors.Is(err, syscall.ENOTDIR),
		errors.Is(err, syscall.ENOTEMPTY):
		return false
	}
	return true
}

// ReplaceOrSecondary tries Replace and, when the destination stays
// locked, falls back to a sibling secondary artifact named with the
// given suffix before the extension. It returns the path the data
// finally lives at.
func ReplaceOrSecondary(tmp, dst, suffix string) (string, error) {
	if err := Replace(tmp, dst); err == nil {
		return dst, nil
	}
	ext := filepath.Ext(dst)
	secondary := strings.TrimSuffix(dst, ext) + suffix + ext
	if err := os.Rename(tmp, secondary); err != nil {
		return "", fmt.Errorf("write secondary artifact: %w", err)
	}
	return secondary, nil
}
