package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo4life/ethan-core/internal/domain/entities"
	"github.com/leo4life/ethan-core/internal/domain/mocks"
)

func newTestStore(blob *mocks.Blob, maxKept int) *VersionStore[string] {
	return NewVersionStore(blob, VersionStoreOptions[string]{
		MaxKept: maxKept,
		Logger:  zerolog.Nop(),
	})
}

func TestVersionStoreAppendAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(mocks.NewBlob(), 10)

	_, ok := store.Current(ctx)
	assert.False(t, ok)

	v1, err := store.Append(ctx, "v1 text", "alice", "init")
	require.NoError(t, err)
	assert.Equal(t, 1, v1.ID)

	current, ok := store.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, current.ID)

	v2, err := store.Append(ctx, "v2 text", "alice", "update")
	require.NoError(t, err)
	assert.Equal(t, 2, v2.ID)
}

func TestVersionStoreRollbackCreatesNewVersion(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(mocks.NewBlob(), 10)

	_, err := store.Append(ctx, "v1 text", "alice", "init")
	require.NoError(t, err)
	_, err = store.Append(ctx, "v2 text", "alice", "update")
	require.NoError(t, err)

	rolled, ok, err := store.Rollback(ctx, 1, "bob", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, rolled.ID)
	assert.Equal(t, "v1 text", rolled.Payload)
	assert.Equal(t, "bob", rolled.Author)
	assert.Equal(t, "rollback to v1: init", rolled.Note)

	// The original version is untouched.
	original, ok := store.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "v1 text", original.Payload)
	assert.Equal(t, "init", original.Note)

	current, ok := store.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, 3, current.ID)
}

func TestVersionStoreRollbackUnknownID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(mocks.NewBlob(), 10)
	_, err := store.Append(ctx, "v1 text", "alice", "init")
	require.NoError(t, err)

	_, ok, err := store.Rollback(ctx, 99, "bob", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVersionStoreEvictsOldestBeyondMaxKept(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(mocks.NewBlob(), 3)

	for i := 1; i <= 5; i++ {
		_, err := store.Append(ctx, "payload", "alice", "note")
		require.NoError(t, err)
	}

	versions := store.List(ctx)
	require.Len(t, versions, 3)
	assert.Equal(t, 5, versions[0].ID)
	assert.Equal(t, 4, versions[1].ID)
	assert.Equal(t, 3, versions[2].ID)

	// IDs keep increasing past evicted history.
	v6, err := store.Append(ctx, "payload", "alice", "note")
	require.NoError(t, err)
	assert.Equal(t, 6, v6.ID)
}

func TestVersionStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(mocks.NewBlob(), 10)
	for _, text := range []string{"a", "b", "c"} {
		_, err := store.Append(ctx, text, "alice", "")
		require.NoError(t, err)
	}

	versions := store.List(ctx)
	require.Len(t, versions, 3)
	assert.Equal(t, "c", versions[0].Payload)
	assert.Equal(t, "a", versions[2].Payload)
}

func TestVersionStoreFailedWriteLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	blob := mocks.NewBlob()
	store := newTestStore(blob, 10)

	_, err := store.Append(ctx, "v1 text", "alice", "init")
	require.NoError(t, err)

	blob.WriteErr = errors.New("disk full")
	_, err = store.Append(ctx, "v2 text", "alice", "update")
	require.Error(t, err)

	current, ok := store.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, current.ID)
	assert.Equal(t, "v1 text", current.Payload)

	// The next successful append still gets id 2.
	blob.WriteErr = nil
	v2, err := store.Append(ctx, "v2 text", "alice", "update")
	require.NoError(t, err)
	assert.Equal(t, 2, v2.ID)
}

func TestVersionStoreCorruptBlobReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	blob := mocks.NewBlobWith([]byte("{not json"))
	store := newTestStore(blob, 10)

	_, ok := store.Current(ctx)
	assert.False(t, ok)

	v, err := store.Append(ctx, "fresh", "alice", "re-seed")
	require.NoError(t, err)
	assert.Equal(t, 1, v.ID)
}

func TestVersionStorePersistsCanonicalShape(t *testing.T) {
	ctx := context.Background()
	blob := mocks.NewBlob()
	store := newTestStore(blob, 10)

	_, err := store.Append(ctx, "v1 text", "alice", "init")
	require.NoError(t, err)
	_, err = store.Append(ctx, "v2 text", "bob", "update")
	require.NoError(t, err)

	var state struct {
		NextID  int                        `json:"next_id"`
		History []entities.Version[string] `json:"history"`
	}
	require.NoError(t, json.Unmarshal(blob.Bytes(), &state))
	assert.Equal(t, 3, state.NextID)
	require.Len(t, state.History, 2)
	assert.Equal(t, 1, state.History[0].ID)
	assert.Equal(t, 2, state.History[1].ID)

	// A fresh store over the same blob sees the same history.
	reopened := newTestStore(blob, 10)
	current, ok := reopened.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, current.ID)
	assert.Equal(t, "v2 text", current.Payload)
}

func TestPromptServiceMigratesLegacyDocument(t *testing.T) {
	ctx := context.Background()
	legacy := `{"text":"old prompt","version":7,"updatedAt":"2024-05-01T10:00:00Z","updatedBy":"leo"}`
	blob := mocks.NewBlobWith([]byte(legacy))
	svc := NewPromptService(blob, zerolog.Nop())

	current, ok := svc.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, 7, current.ID)
	assert.Equal(t, "old prompt", current.Payload)
	assert.Equal(t, "leo", current.Author)
	assert.Equal(t, "legacy import", current.Note)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), current.CreatedAt)

	// Migration is not persisted until the first write.
	assert.Equal(t, 0, blob.Writes())

	saved, err := svc.Save(ctx, "new prompt", "alice", "rewrite")
	require.NoError(t, err)
	assert.Equal(t, 8, saved.ID)
	assert.Equal(t, 1, blob.Writes())

	// After the write, the canonical shape holds both versions.
	reopened := NewPromptService(blob, zerolog.Nop())
	versions := reopened.List(ctx)
	require.Len(t, versions, 2)
	assert.Equal(t, 8, versions[0].ID)
	assert.Equal(t, 7, versions[1].ID)
}

func TestPromptServiceMigratesEmptyLegacyDocument(t *testing.T) {
	ctx := context.Background()
	legacy := `{"text":"","version":2,"updatedAt":"bad","updatedBy":""}`
	svc := NewPromptService(mocks.NewBlobWith([]byte(legacy)), zerolog.Nop())

	current, ok := svc.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, "empty import", current.Note)
	assert.Equal(t, "unknown", current.Author)
}

func TestPromptServiceUnrecognizedObjectReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := NewPromptService(mocks.NewBlobWith([]byte(`{"something":"else"}`)), zerolog.Nop())

	_, ok := svc.Current(ctx)
	assert.False(t, ok)
}

func TestKnowledgeServiceMigratesLegacyArray(t *testing.T) {
	ctx := context.Background()
	legacy := `[{"text":"the sky is blue","added_at":"2024-01-02T00:00:00Z"},{"text":"  ","added_at":""},{"text":"water is wet","added_at":"2024-01-03T00:00:00Z"}]`
	svc := NewKnowledgeService(mocks.NewBlobWith([]byte(legacy)), zerolog.Nop())

	current, ok := svc.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, current.ID)
	assert.Equal(t, "legacy import", current.Note)
	require.Len(t, current.Payload, 2)
	assert.Equal(t, "water is wet", current.Payload[0].Text)
	assert.Equal(t, "the sky is blue", current.Payload[1].Text)
}
