package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactListNormalize(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	list := FactList{
		{Text: "  likes coffee  ", AddedAt: t1},
		{Text: "", AddedAt: t2},
		{Text: "likes coffee", AddedAt: t2},
		{Text: "plays guitar", AddedAt: t2},
	}

	got := list.Normalize()
	require.Len(t, got, 2)
	assert.Equal(t, "plays guitar", got[0].Text)
	assert.Equal(t, "likes coffee", got[1].Text)
	// The first occurrence keeps its timestamp.
	assert.Equal(t, t1, got[1].AddedAt)
}

func TestFactListMergeExistingEntryWins(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t1.Add(2 * time.Hour)

	list := FactList{{Text: "A", AddedAt: t1}}

	merged, added := list.Merge(
		FactEntry{Text: "A", AddedAt: t2},
		FactEntry{Text: "B", AddedAt: t3},
	)
	assert.Equal(t, 1, added)
	require.Len(t, merged, 2)
	assert.Equal(t, "B", merged[0].Text)
	assert.Equal(t, "A", merged[1].Text)
	assert.Equal(t, t1, merged[1].AddedAt)
}

func TestFactListMergeNothingNew(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	list := FactList{{Text: "A", AddedAt: t1}}

	merged, added := list.Merge(
		FactEntry{Text: " A ", AddedAt: t1.Add(time.Hour)},
		FactEntry{Text: "   ", AddedAt: t1},
	)
	assert.Equal(t, 0, added)
	assert.Equal(t, list, merged)
}

func TestFactListContains(t *testing.T) {
	list := FactList{{Text: "likes coffee"}}

	assert.True(t, list.Contains("likes coffee"))
	assert.True(t, list.Contains("  likes coffee  "))
	assert.False(t, list.Contains("Likes Coffee"))
	assert.False(t, list.Contains("plays guitar"))
}
