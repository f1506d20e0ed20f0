package tune

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurral/feedengine/internal/domain"
)

var tuneNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testSuggester() *Suggester {
	return NewSuggester(DefaultConfig()).WithClock(func() time.Time { return tuneNow })
}

func event(topic string, kind domain.EngagementKind, followed bool) domain.EngagementEvent {
	return domain.EngagementEvent{
		ViewerID: "v1",
		ChirpID:  "p",
		Topic:    topic,
		Kind:     kind,
		Followed: followed,
		At:       tuneNow,
	}
}

func repeat(n int, ev domain.EngagementEvent) []domain.EngagementEvent {
	out := make([]domain.EngagementEvent, n)
	for i := range out {
		out[i] = ev
		out[i].ChirpID = fmt.Sprintf("p%d", i)
	}
	return out
}

func TestSuggest_TooLittleHistory(t *testing.T) {
	s := testSuggester()
	current := domain.DefaultForYouConfig()

	suggestion := s.Suggest("v1", repeat(3, event("science", domain.EngageLike, false)), current)
	assert.Equal(t, current, suggestion.Proposed, "thin history proposes no change")
	assert.Zero(t, suggestion.Confidence)
	assert.Equal(t, tuneNow, suggestion.GeneratedAt)
}

func TestSuggest_ProposesLikedTopic(t *testing.T) {
	s := testSuggester()
	current := domain.DefaultForYouConfig()

	history := repeat(12, event("science", domain.EngageLike, false))
	suggestion := s.Suggest("v1", history, current)

	assert.Contains(t, suggestion.Proposed.LikedTopics, "science")
	assert.Greater(t, suggestion.Confidence, 0.3)
	assert.Contains(t, suggestion.Explanation, `like "science"`)
}

func TestSuggest_ProposesMutedTopic(t *testing.T) {
	s := testSuggester()
	current := domain.DefaultForYouConfig()

	history := append(
		repeat(8, event("science", domain.EngageLike, false)),
		repeat(6, event("celebrity", domain.EngageIgnore, false))...,
	)
	suggestion := s.Suggest("v1", history, current)

	assert.Contains(t, suggestion.Proposed.MutedTopics, "celebrity")
	assert.NotContains(t, suggestion.Proposed.MutedTopics, "science")
}

func TestSuggest_AlreadyLikedTopicNotRepeated(t *testing.T) {
	s := testSuggester()
	current := domain.DefaultForYouConfig()
	current.LikedTopics = []string{"science"}

	// Follow share sits between the light and heavy thresholds so the
	// topic proposal is the only candidate change.
	history := append(
		repeat(8, event("science", domain.EngageLike, false)),
		repeat(4, event("science", domain.EngageLike, true))...,
	)
	suggestion := s.Suggest("v1", history, current)

	assert.Equal(t, []string{"science"}, suggestion.Proposed.LikedTopics)
	assert.Contains(t, suggestion.Explanation, "already match")
}

func TestSuggest_FollowWeightUp(t *testing.T) {
	s := testSuggester()
	current := domain.DefaultForYouConfig() // medium

	history := repeat(20, event("", domain.EngageLike, true))
	suggestion := s.Suggest("v1", history, current)

	assert.Equal(t, domain.FollowingHeavy, suggestion.Proposed.FollowingWeight)
	assert.Contains(t, suggestion.Explanation, "lean harder")
}

func TestSuggest_FollowWeightDown(t *testing.T) {
	s := testSuggester()
	current := domain.DefaultForYouConfig()

	history := repeat(20, event("science", domain.EngageLike, false))
	suggestion := s.Suggest("v1", history, current)

	assert.Equal(t, domain.FollowingLight, suggestion.Proposed.FollowingWeight)
}

func TestSuggest_ConversationBoost(t *testing.T) {
	s := testSuggester()
	current := domain.DefaultForYouConfig()
	current.BoostActiveConversations = false

	history := repeat(20, event("science", domain.EngageReply, true))
	suggestion := s.Suggest("v1", history, current)

	assert.True(t, suggestion.Proposed.BoostActiveConversations)
}

func TestSuggest_NeverMutatesCurrent(t *testing.T) {
	s := testSuggester()
	current := domain.ForYouConfig{
		FollowingWeight: domain.FollowingMedium,
		LikedTopics:     []string{"golang"},
	}
	snapshot := domain.ForYouConfig{
		FollowingWeight: domain.FollowingMedium,
		LikedTopics:     []string{"golang"},
	}

	_ = s.Suggest("v1", repeat(15, event("science", domain.EngageLike, false)), current)
	assert.Equal(t, snapshot, current, "suggestions are advisory, never applied in place")
}

func TestSuggest_Deterministic(t *testing.T) {
	s := testSuggester()
	current := domain.DefaultForYouConfig()
	history := append(
		repeat(10, event("science", domain.EngageLike, true)),
		repeat(10, event("space", domain.EngageLike, true))...,
	)

	first := s.Suggest("v1", history, current)
	second := s.Suggest("v1", history, current)
	require.Equal(t, first.Proposed, second.Proposed)
	assert.Equal(t, first.Explanation, second.Explanation)
}

func TestApplyMergesProposal(t *testing.T) {
	current := domain.DefaultForYouConfig()
	suggestion := domain.TuningSuggestion{
		Proposed: domain.ForYouConfig{
			FollowingWeight: domain.FollowingHeavy,
			LikedTopics:     []string{"science"},
		},
	}
	applied := Apply(current, suggestion)
	assert.Equal(t, suggestion.Proposed, applied)
	assert.NotEqual(t, applied, current)
}

func TestBumpWeightClamps(t *testing.T) {
	assert.Equal(t, domain.FollowingHeavy, bumpWeight(domain.FollowingHeavy, 1))
	assert.Equal(t, domain.FollowingNone, bumpWeight(domain.FollowingNone, -1))
	assert.Equal(t, domain.FollowingMedium, bumpWeight(domain.FollowingLight, 1))
}
