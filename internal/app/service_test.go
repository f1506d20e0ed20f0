package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurral/feedengine/internal/domain"
	"github.com/kurral/feedengine/internal/metrics"
	"github.com/kurral/feedengine/internal/policy"
	"github.com/kurral/feedengine/internal/rank"
	"github.com/kurral/feedengine/internal/reputation"
	"github.com/kurral/feedengine/internal/store"
	"github.com/kurral/feedengine/internal/tune"
)

var appNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	memory := store.NewMemoryStore()
	svc := NewService(Options{
		Chirps:      memory,
		Users:       memory.Users(),
		Engagements: memory,
		Policy:      policy.NewEngine(policy.DefaultConfig()),
		Ranker:      rank.NewRanker(rank.DefaultWeights()),
		Reputation:  reputation.NewEngine(reputation.DefaultConfig(), memory),
		Suggester:   tune.NewSuggester(tune.DefaultConfig()),
		Cache:       store.NewFeedCache(time.Minute, time.Minute),
		Metrics:     metrics.NewRegistry(),
	})
	return svc, memory
}

func TestApplyVerification_BlockedTriggersViolation(t *testing.T) {
	svc, memory := testService(t)
	ctx := context.Background()

	chirp := domain.NewChirp("p1", "author-1", "text", "science", appNow)
	require.NoError(t, memory.Upsert(ctx, chirp))

	before, err := svc.Score(ctx, "author-1")
	require.NoError(t, err)

	status, err := svc.ApplyVerification(ctx, "p1",
		[]domain.Claim{{ID: "c1", Domain: domain.DomainGeneral}},
		[]domain.FactCheck{{ClaimID: "c1", Verdict: domain.VerdictFalse, Confidence: 0.95}},
	)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, status)

	after, err := svc.Score(ctx, "author-1")
	require.NoError(t, err)
	assert.Less(t, after.Score.Score, before.Score.Score)

	stored, found, err := memory.Get(ctx, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.StatusBlocked, stored.Status)
}

func TestApplyVerification_CleanHighValueContributes(t *testing.T) {
	svc, memory := testService(t)
	ctx := context.Background()

	chirp := domain.NewChirp("p1", "author-1", "text", "science", appNow)
	chirp.ValueScore = &domain.ValueScore{Total: 0.9}
	require.NoError(t, memory.Upsert(ctx, chirp))

	before, err := svc.Score(ctx, "author-1")
	require.NoError(t, err)

	status, err := svc.ApplyVerification(ctx, "p1",
		[]domain.Claim{{ID: "c1", Domain: domain.DomainGeneral}},
		[]domain.FactCheck{{ClaimID: "c1", Verdict: domain.VerdictTrue, Confidence: 0.9}},
	)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClean, status)

	after, err := svc.Score(ctx, "author-1")
	require.NoError(t, err)
	assert.Greater(t, after.Score.Score, before.Score.Score)
}

func TestApplyVerification_NeedsReviewIsNeutralForReputation(t *testing.T) {
	svc, memory := testService(t)
	ctx := context.Background()

	chirp := domain.NewChirp("p1", "author-1", "text", "health", appNow)
	require.NoError(t, memory.Upsert(ctx, chirp))

	status, err := svc.ApplyVerification(ctx, "p1",
		[]domain.Claim{{ID: "c1", Domain: domain.DomainHealth}},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNeedsReview, status)

	score, err := svc.Score(ctx, "author-1")
	require.NoError(t, err)
	assert.Empty(t, score.Score.History, "pending review must not move reputation either way")
}

func TestApplyVerification_UnknownChirp(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.ApplyVerification(context.Background(), "ghost", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBuildFeed_ExcludesOwnChirps(t *testing.T) {
	svc, memory := testService(t)
	ctx := context.Background()

	require.NoError(t, memory.UserUpsert(ctx, domain.NewUser("v1", "viewer")))
	require.NoError(t, memory.Upsert(ctx, domain.NewChirp("mine", "v1", "t", "science", appNow)))
	require.NoError(t, memory.Upsert(ctx, domain.NewChirp("other", "a2", "t", "science", appNow)))

	feed, err := svc.BuildFeed(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, "other", feed.Entries[0].Chirp.ID)
}

func TestBuildFeed_MemoizedUntilCandidatesChange(t *testing.T) {
	svc, memory := testService(t)
	ctx := context.Background()

	require.NoError(t, memory.UserUpsert(ctx, domain.NewUser("v1", "viewer")))
	require.NoError(t, memory.Upsert(ctx, domain.NewChirp("p1", "a1", "t", "science", appNow)))

	first, err := svc.BuildFeed(ctx, "v1")
	require.NoError(t, err)
	second, err := svc.BuildFeed(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt, "second call should come from cache")

	// New candidate bumps the version, so the cache key moves on.
	require.NoError(t, memory.Upsert(ctx, domain.NewChirp("p2", "a2", "t", "science", appNow)))
	third, err := svc.BuildFeed(ctx, "v1")
	require.NoError(t, err)
	assert.Len(t, third.Entries, 2)
}

func TestSuggestionLifecycle(t *testing.T) {
	svc, memory := testService(t)
	ctx := context.Background()

	require.NoError(t, memory.UserUpsert(ctx, domain.NewUser("v1", "viewer")))
	for i := 0; i < 15; i++ {
		require.NoError(t, svc.IngestEngagement(ctx, domain.EngagementEvent{
			ViewerID: "v1", ChirpID: "p", Topic: "science", Kind: domain.EngageLike, Followed: true,
		}))
	}

	suggestion, err := svc.SuggestTuning(ctx, "v1")
	require.NoError(t, err)
	assert.Contains(t, suggestion.Proposed.LikedTopics, "science")

	// The stored config is untouched until the viewer accepts.
	viewer, _, err := memory.UserGet(ctx, "v1")
	require.NoError(t, err)
	assert.Empty(t, viewer.Config.LikedTopics)

	cfg, err := svc.AcceptSuggestion(ctx, "v1", suggestion)
	require.NoError(t, err)
	assert.Contains(t, cfg.LikedTopics, "science")

	viewer, _, err = memory.UserGet(ctx, "v1")
	require.NoError(t, err)
	assert.Contains(t, viewer.Config.LikedTopics, "science")
}
