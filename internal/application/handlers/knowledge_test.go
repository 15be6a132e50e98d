package handlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo4life/ethan-core/internal/domain/mocks"
	"github.com/leo4life/ethan-core/internal/domain/services"
)

func newKnowledgeHandler() *KnowledgeHandler {
	return NewKnowledgeHandler(services.NewKnowledgeService(mocks.NewBlob(), zerolog.Nop()))
}

func TestKnowledgeReplaceThenView(t *testing.T) {
	ctx := context.Background()
	handler := newKnowledgeHandler()

	payload := []byte(`[{"text":"the sky is blue","added_at":"2024-01-01T00:00:00Z"}]`)
	saved, err := handler.Replace(ctx, payload, "alice", "seed")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.ID)
	require.Len(t, saved.Payload, 1)
	assert.Equal(t, "the sky is blue", saved.Payload[0].Text)

	current, err := handler.View(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, current.ID)
}

func TestKnowledgeReplaceRejectsNonArray(t *testing.T) {
	handler := newKnowledgeHandler()

	_, err := handler.Replace(context.Background(), []byte(`{"text":"not an array"}`), "alice", "")
	assert.ErrorIs(t, err, ErrWrongContentType)
}

func TestKnowledgeReplaceRejectsOversizedPayload(t *testing.T) {
	handler := newKnowledgeHandler()

	payload := bytes.Repeat([]byte("a"), MaxUploadBytes+1)
	_, err := handler.Replace(context.Background(), payload, "alice", "")
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestKnowledgeViewUnknownVersion(t *testing.T) {
	ctx := context.Background()
	handler := newKnowledgeHandler()

	_, err := handler.View(ctx, 0)
	assert.ErrorIs(t, err, ErrVersionNotFound)
	_, err = handler.View(ctx, 7)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestKnowledgeRollback(t *testing.T) {
	ctx := context.Background()
	handler := newKnowledgeHandler()

	_, err := handler.Replace(ctx, []byte(`[{"text":"A"}]`), "alice", "seed")
	require.NoError(t, err)
	_, err = handler.Replace(ctx, []byte(`[{"text":"B"}]`), "alice", "overwrite")
	require.NoError(t, err)

	rolled, err := handler.Rollback(ctx, 1, "bob")
	require.NoError(t, err)
	assert.Equal(t, 3, rolled.ID)
	require.Len(t, rolled.Payload, 1)
	assert.Equal(t, "A", rolled.Payload[0].Text)
}
