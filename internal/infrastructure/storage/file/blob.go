// Package file provides a file-backed implementation of the Blob port.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leo4life/ethan-core/internal/domain/ports"
)

// Blob stores a single document in one file, replaced atomically on write.
type Blob struct {
	path string
}

// NewBlob creates a blob over the given file path. The file does not need to
// exist yet.
func NewBlob(path string) *Blob {
	return &Blob{path: path}
}

// Path returns the backing file path.
func (b *Blob) Path() string {
	return b.path
}

// Read returns the file contents, or ports.ErrNotFound when the file does
// not exist.
func (b *Blob) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}
	return data, nil
}

// Write replaces the file contents via a temp file and rename, so a crash
// mid-write never leaves a truncated document behind.
func (b *Blob) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("replacing %s: %w", b.path, err)
	}
	return nil
}
