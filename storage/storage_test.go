package storage

import (
	"context"
	"testing"
	"time"

	"github.com/loganlanou/colink-venture/internal/clientstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTabStore_RoundTrip(t *testing.T) {
	s, cleanup, err := NewTestStorage()
	require.NoError(t, err)
	defer cleanup()

	tab := s.Tab("tab-1")

	_, ok := tab.Get(clientstore.KeyToken)
	assert.False(t, ok)

	tab.Set(clientstore.KeyToken, "abc")
	tab.Set(clientstore.KeyToken, "rotated")
	v, ok := tab.Get(clientstore.KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "rotated", v, "upsert should keep the last write")

	tab.Remove(clientstore.KeyToken)
	_, ok = tab.Get(clientstore.KeyToken)
	assert.False(t, ok)
}

func TestTabStore_TabsAreIsolated(t *testing.T) {
	s, cleanup, err := NewTestStorage()
	require.NoError(t, err)
	defer cleanup()

	s.Tab("a").Set(clientstore.KeySignedIn, "true")

	_, ok := s.Tab("b").Get(clientstore.KeySignedIn)
	assert.False(t, ok, "a second tab must not see the first tab's session")
}

func TestTabStore_ClearSession(t *testing.T) {
	s, cleanup, err := NewTestStorage()
	require.NoError(t, err)
	defer cleanup()

	tab := s.Tab("a")
	for _, key := range clientstore.SessionKeys {
		tab.Set(key, "x")
	}

	clientstore.ClearSession(tab)

	values, err := s.Queries.ListTabValues(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestPruneTabs(t *testing.T) {
	s, cleanup, err := NewTestStorage()
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	s.Tab("stale").Set(clientstore.KeyToken, "old")
	require.NoError(t, s.TouchTab(ctx, "stale", now.Add(-48*time.Hour)))
	s.Tab("fresh").Set(clientstore.KeyToken, "new")

	removed, err := s.PruneTabs(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	values, err := s.Queries.ListTabValues(ctx, "stale")
	require.NoError(t, err)
	assert.Empty(t, values, "stale tab values should be gone")

	_, err = s.Queries.GetTab(ctx, "fresh")
	assert.NoError(t, err, "fresh tab should survive")
	v, ok := (&TabStore{queries: s.Queries, tabID: "fresh"}).Get(clientstore.KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}
