package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo4life/ethan-core/internal/domain/entities"
)

func TestApprovalRegistryCreate(t *testing.T) {
	reg := NewApprovalRegistry()
	session := reg.Create("alice", []string{"fact a", "fact b"}, 3)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "alice", session.Initiator)
	assert.Equal(t, 3, session.SkippedCount)
	require.Len(t, session.Items, 2)
	for _, item := range session.Items {
		assert.Equal(t, entities.ApprovalPending, item.Status)
	}
	assert.Equal(t, 2, session.PendingCount())
	assert.False(t, reg.IsComplete(session.ID))
}

func TestApprovalRegistryDecideAnyOrder(t *testing.T) {
	reg := NewApprovalRegistry()
	session := reg.Create("alice", []string{"a", "b", "c"}, 0)

	item, ok := reg.Decide(session.ID, 2, true)
	require.True(t, ok)
	assert.Equal(t, entities.ApprovalApproved, item.Status)
	assert.False(t, reg.IsComplete(session.ID))

	_, ok = reg.Decide(session.ID, 0, false)
	require.True(t, ok)
	assert.False(t, reg.IsComplete(session.ID))

	_, ok = reg.Decide(session.ID, 1, true)
	require.True(t, ok)
	assert.True(t, reg.IsComplete(session.ID))

	got, ok := reg.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c"}, got.ApprovedTexts())
}

func TestApprovalRegistryDecideIsIdempotent(t *testing.T) {
	reg := NewApprovalRegistry()
	session := reg.Create("alice", []string{"a"}, 0)

	first, ok := reg.Decide(session.ID, 0, false)
	require.True(t, ok)
	assert.Equal(t, entities.ApprovalRejected, first.Status)

	// A second decision does not flip the item.
	second, ok := reg.Decide(session.ID, 0, true)
	require.True(t, ok)
	assert.Equal(t, entities.ApprovalRejected, second.Status)
}

func TestApprovalRegistryDecideOutOfRange(t *testing.T) {
	reg := NewApprovalRegistry()
	session := reg.Create("alice", []string{"a"}, 0)

	_, ok := reg.Decide(session.ID, 5, true)
	assert.False(t, ok)
	_, ok = reg.Decide(session.ID, -1, true)
	assert.False(t, ok)
	_, ok = reg.Decide("no-such-session", 0, true)
	assert.False(t, ok)
}

func TestApprovalRegistryRemovedSessionIsComplete(t *testing.T) {
	reg := NewApprovalRegistry()
	session := reg.Create("alice", []string{"a"}, 0)

	reg.Remove(session.ID)
	assert.True(t, reg.IsComplete(session.ID))
	_, ok := reg.Get(session.ID)
	assert.False(t, ok)
}

func TestApprovalRegistryGetReturnsCopy(t *testing.T) {
	reg := NewApprovalRegistry()
	session := reg.Create("alice", []string{"a"}, 0)

	got, ok := reg.Get(session.ID)
	require.True(t, ok)
	got.Items[0].Status = entities.ApprovalApproved

	fresh, ok := reg.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, entities.ApprovalPending, fresh.Items[0].Status)
}
