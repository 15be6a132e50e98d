package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo4life/ethan-core/internal/domain/ports"
)

func TestBlobReadMissingFile(t *testing.T) {
	blob := NewBlob(filepath.Join(t.TempDir(), "missing.json"))

	_, err := blob.Read(context.Background())
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestBlobWriteThenRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "doc.json")
	blob := NewBlob(path)

	require.NoError(t, blob.Write(ctx, []byte(`{"a":1}`)))

	data, err := blob.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	// Overwrite replaces the whole document.
	require.NoError(t, blob.Write(ctx, []byte(`{"b":2}`)))
	data, err = blob.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(data))
}

func TestBlobWriteCreatesDirectories(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "deeper", "doc.json")
	blob := NewBlob(path)

	require.NoError(t, blob.Write(ctx, []byte("x")))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestBlobWriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blob := NewBlob(filepath.Join(dir, "doc.json"))

	require.NoError(t, blob.Write(ctx, []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.json", entries[0].Name())
}
