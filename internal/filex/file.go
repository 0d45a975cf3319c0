// Package filex holds the file helpers shared by the preview store and the
// result downloader.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EnsureDir creates dir and its parents if missing and returns its absolute
// path. An empty dir means the working directory.
func EnsureDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// WriteTemp copies r into a new file in dir named after pattern (see
// os.CreateTemp). Nothing is left behind on failure.
func WriteTemp(dir, pattern string, r io.Reader) (string, error) {
	dir, err := EnsureDir(dir)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	return tmp.Name(), nil
}

// WriteAtomic writes r to dir/name. The content goes to a hidden temp file
// first and is renamed into place, so readers never see a partial file.
func WriteAtomic(dir, name string, r io.Reader) (string, error) {
	tmp, err := WriteTemp(dir, "."+name+"-*", r)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(filepath.Dir(tmp), name)
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", dst, err)
	}
	return dst, nil
}
