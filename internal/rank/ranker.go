// Package rank builds personalized, explained For You feeds. The
// ranker is pure over its inputs: same candidates, viewer, and config
// always produce the same ordering and the same explanation strings.
package rank

import (
	"math"
	"sort"
	"time"

	"github.com/kurral/feedengine/internal/domain"
)

// ResolveUser looks up a user by id. Supplied by the caller; the ranker
// never reaches into storage itself.
type ResolveUser func(id string) (domain.User, bool)

// Ranker scores candidate chirps for one viewer at a time. Safe for
// concurrent use across viewers: it holds no mutable state.
type Ranker struct {
	weights SignalWeights
	clock   func() time.Time
}

// NewRanker creates a ranker; a zero weights struct falls back to
// defaults.
func NewRanker(weights SignalWeights) *Ranker {
	if weights.RecencyHalfLife == 0 {
		weights = DefaultWeights()
	}
	return &Ranker{weights: weights, clock: time.Now}
}

// WithClock overrides the time source, for tests.
func (r *Ranker) WithClock(clock func() time.Time) *Ranker {
	r.clock = clock
	return r
}

// Rank orders candidates for the viewer. Hard filters first (muted
// topics and blocked chirps never score their way back in), then a
// weighted sum of relationship, topic affinity, recency, conversation
// activity, and content value, dampened for chirps pending review.
func (r *Ranker) Rank(candidates []domain.Chirp, viewerID string, cfg domain.ForYouConfig, resolve ResolveUser) domain.Feed {
	now := r.clock()
	feed := domain.Feed{
		ViewerID:    viewerID,
		Candidates:  len(candidates),
		GeneratedAt: now,
	}

	if viewerID == "" || resolve == nil {
		feed.EmptyReason = domain.EmptyNotPersonalized
		return feed
	}
	viewer, ok := resolve(viewerID)
	if !ok {
		feed.EmptyReason = domain.EmptyNotPersonalized
		return feed
	}
	if len(candidates) == 0 {
		feed.EmptyReason = domain.EmptyNoCandidates
		return feed
	}

	muted := cfg.MutedSet()
	liked := cfg.LikedSet()
	interests := viewer.InterestSet()

	entries := make([]domain.ScoredChirp, 0, len(candidates))
	for _, chirp := range candidates {
		if chirp.Status == domain.StatusBlocked || anyTopicIn(chirp, muted) {
			feed.Excluded++
			continue
		}
		entries = append(entries, r.score(chirp, viewer, cfg, liked, interests, now))
	}

	if len(entries) == 0 {
		feed.EmptyReason = diagnoseEmpty(viewer, cfg)
		return feed
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].Chirp.CreatedAt.Equal(entries[j].Chirp.CreatedAt) {
			return entries[i].Chirp.CreatedAt.After(entries[j].Chirp.CreatedAt)
		}
		return entries[i].Chirp.ID < entries[j].Chirp.ID
	})

	feed.Entries = entries
	return feed
}

// score computes one chirp's weighted signal sum and explanation.
func (r *Ranker) score(chirp domain.Chirp, viewer domain.User, cfg domain.ForYouConfig, liked, interests map[string]struct{}, now time.Time) domain.ScoredChirp {
	w := r.weights

	relationship := 0.0
	if viewer.Follows(chirp.AuthorID) {
		relationship = cfg.FollowingWeight.Multiplier()
	}

	matched := matchedTopics(chirp, liked, interests)
	affinity := math.Min(1, 0.5*float64(len(matched)))

	recency := math.Pow(0.5, chirp.Age(now).Hours()/w.RecencyHalfLife.Hours())

	conversation := 0.0
	if cfg.BoostActiveConversations && chirp.CommentCount > 0 {
		conversation = math.Min(1, float64(chirp.CommentCount)/float64(w.ConversationScale))
	}

	value := w.NeutralValue
	if chirp.ValueScore != nil {
		value = clamp01(chirp.ValueScore.Total)
	}

	parts := map[string]float64{
		signalRelationship: relationship * w.Relationship,
		signalTopic:        affinity * w.TopicAffinity,
		signalRecency:      recency * w.Recency,
		signalConversation: conversation * w.Conversation,
		signalValue:        value * w.Value,
	}

	total := 0.0
	for _, part := range parts {
		total += part
	}
	dampened := chirp.Status == domain.StatusNeedsReview
	if dampened {
		total *= w.ReviewDampen
	}

	return domain.ScoredChirp{
		Chirp:       chirp,
		Score:       total,
		Parts:       parts,
		Explanation: explain(parts, matched, dampened),
	}
}

func diagnoseEmpty(viewer domain.User, cfg domain.ForYouConfig) domain.EmptyReason {
	if len(cfg.MutedTopics) > 0 {
		return domain.EmptyOverMuted
	}
	if len(viewer.Following) == 0 && len(cfg.LikedTopics) == 0 && len(viewer.Interests) == 0 {
		return domain.EmptyNoSignals
	}
	return domain.EmptyNoCandidates
}

func anyTopicIn(chirp domain.Chirp, set map[string]struct{}) bool {
	if len(set) == 0 {
		return false
	}
	for _, t := range chirp.Topics() {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

// matchedTopics returns the chirp topics found in the viewer's liked
// topics or interests, in the chirp's own topic order so explanations
// stay deterministic.
func matchedTopics(chirp domain.Chirp, liked, interests map[string]struct{}) []string {
	var matched []string
	for _, t := range chirp.Topics() {
		if _, ok := liked[t]; ok {
			matched = append(matched, t)
			continue
		}
		if _, ok := interests[t]; ok {
			matched = append(matched, t)
		}
	}
	return matched
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
