package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo4life/ethan-core/internal/domain/ports"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "ethan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestNewRepositoryRequiresPath(t *testing.T) {
	_, err := NewRepository("")
	assert.Error(t, err)
}

func TestBlobReadMissingRow(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Blob("prompt").Read(context.Background())
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestBlobWriteThenRead(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	blob := repo.Blob("prompt")

	require.NoError(t, blob.Write(ctx, []byte(`{"a":1}`)))
	data, err := blob.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	// Upsert replaces the document.
	require.NoError(t, blob.Write(ctx, []byte(`{"b":2}`)))
	data, err = blob.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(data))
}

func TestBlobsAreIndependent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Blob("prompt").Write(ctx, []byte("p")))
	require.NoError(t, repo.Blob("knowledge").Write(ctx, []byte("k")))

	data, err := repo.Blob("prompt").Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p", string(data))

	data, err = repo.Blob("knowledge").Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "k", string(data))
}

func TestRepositoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ethan.db")

	repo, err := NewRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.Blob("state").Write(ctx, []byte("paused")))
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.EnsureSchema(ctx))

	data, err := reopened.Blob("state").Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "paused", string(data))
}
