package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurral/feedengine/internal/domain"
)

var storeNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestMemoryStore_CandidatesSortedAndVersioned(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	v0, err := s.Version(ctx)
	require.NoError(t, err)

	older := domain.NewChirp("p1", "a1", "t", "science", storeNow.Add(-time.Hour))
	newer := domain.NewChirp("p2", "a2", "t", "science", storeNow)
	require.NoError(t, s.Upsert(ctx, older))
	require.NoError(t, s.Upsert(ctx, newer))

	v2, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, v0+2, v2, "every upsert bumps the candidate-set version")

	candidates, err := s.ListCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "p2", candidates[0].ID, "newest first")
}

func TestMemoryStore_Users(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	users := s.Users()

	_, found, err := users.Get(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, found)

	u := domain.NewUser("v1", "viewer")
	require.NoError(t, users.Upsert(ctx, u))
	got, found, err := users.Get(ctx, "v1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.FollowingMedium, got.Config.FollowingWeight)
}

func TestMemoryStore_EngagementHistoryLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Append(ctx, domain.EngagementEvent{
			ID: string(rune('a' + i)), ViewerID: "v1", ChirpID: "p", Kind: domain.EngageLike,
			At: storeNow.Add(time.Duration(i) * time.Minute),
		}))
	}
	history, err := s.History(ctx, "v1", 4)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, string(rune('a'+9)), history[3].ID, "newest events kept")
}

func TestFeedCache_KeyChangesWithInputs(t *testing.T) {
	cache := NewFeedCache(time.Minute, time.Minute)

	cfg := domain.DefaultForYouConfig()
	base := cache.Key("v1", cfg, 1)

	assert.NotEqual(t, base, cache.Key("v2", cfg, 1), "viewer changes the key")
	assert.NotEqual(t, base, cache.Key("v1", cfg, 2), "candidate version changes the key")

	muted := cfg
	muted.MutedTopics = []string{"politics"}
	assert.NotEqual(t, base, cache.Key("v1", muted, 1), "config changes the key")
}

func TestFeedCache_RoundTripAndFlush(t *testing.T) {
	cache := NewFeedCache(time.Minute, time.Minute)
	feed := domain.Feed{ViewerID: "v1", Candidates: 3}
	key := cache.Key("v1", domain.DefaultForYouConfig(), 7)

	_, found := cache.Get(key)
	assert.False(t, found)

	cache.Set(key, feed)
	got, found := cache.Get(key)
	require.True(t, found)
	assert.Equal(t, feed, got)

	cache.Flush()
	_, found = cache.Get(key)
	assert.False(t, found)
}
