package domain

import (
	"strings"
	"time"
)

// FollowingWeight controls how strongly followed authors are boosted in
// a viewer's feed.
type FollowingWeight string

const (
	FollowingNone   FollowingWeight = "none"
	FollowingLight  FollowingWeight = "light"
	FollowingMedium FollowingWeight = "medium"
	FollowingHeavy  FollowingWeight = "heavy"
)

// Multiplier maps the weight to its ranking multiplier. Unknown values
// fall back to medium rather than silently zeroing the signal.
func (w FollowingWeight) Multiplier() float64 {
	switch w {
	case FollowingNone:
		return 0
	case FollowingLight:
		return 0.25
	case FollowingMedium:
		return 0.5
	case FollowingHeavy:
		return 1.0
	default:
		return 0.5
	}
}

// ParseFollowingWeight normalizes a raw weight string, defaulting to
// medium.
func ParseFollowingWeight(raw string) FollowingWeight {
	switch FollowingWeight(strings.ToLower(strings.TrimSpace(raw))) {
	case FollowingNone:
		return FollowingNone
	case FollowingLight:
		return FollowingLight
	case FollowingMedium:
		return FollowingMedium
	case FollowingHeavy:
		return FollowingHeavy
	default:
		return FollowingMedium
	}
}

// ForYouConfig is the viewer-owned personalization for the For You feed.
// These four knobs are the only recognized options.
type ForYouConfig struct {
	FollowingWeight          FollowingWeight `json:"following_weight" yaml:"following_weight"`
	BoostActiveConversations bool            `json:"boost_active_conversations" yaml:"boost_active_conversations"`
	LikedTopics              []string        `json:"liked_topics" yaml:"liked_topics"`
	MutedTopics              []string        `json:"muted_topics" yaml:"muted_topics"`
}

// DefaultForYouConfig returns the configuration a new viewer starts
// with.
func DefaultForYouConfig() ForYouConfig {
	return ForYouConfig{
		FollowingWeight:          FollowingMedium,
		BoostActiveConversations: true,
	}
}

// LikedSet returns the liked topics as a lowercase lookup set.
func (c ForYouConfig) LikedSet() map[string]struct{} {
	return topicSet(c.LikedTopics)
}

// MutedSet returns the muted topics as a lowercase lookup set.
func (c ForYouConfig) MutedSet() map[string]struct{} {
	return topicSet(c.MutedTopics)
}

func topicSet(topics []string) map[string]struct{} {
	set := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// User is a feed participant, both author and viewer.
type User struct {
	ID        string       `json:"id"`
	Handle    string       `json:"handle"`
	Following []string     `json:"following,omitempty"`
	Interests []string     `json:"interests,omitempty"`
	Config    ForYouConfig `json:"for_you_config"`
}

// NewUser fills defaults for a freshly registered user.
func NewUser(id, handle string) User {
	return User{ID: id, Handle: handle, Config: DefaultForYouConfig()}
}

// Follows reports whether the user follows the given author.
func (u User) Follows(authorID string) bool {
	for _, id := range u.Following {
		if id == authorID {
			return true
		}
	}
	return false
}

// InterestSet returns the user's interests as a lowercase lookup set.
func (u User) InterestSet() map[string]struct{} {
	return topicSet(u.Interests)
}

// ScoreComponents are the five decayed aggregates behind a KurralScore.
// All are held in [0,100]; ViolationHistory counts against the score.
type ScoreComponents struct {
	QualityHistory    float64 `json:"quality_history"`
	ViolationHistory  float64 `json:"violation_history"`
	EngagementQuality float64 `json:"engagement_quality"`
	Consistency       float64 `json:"consistency"`
	CommunityTrust    float64 `json:"community_trust"`
}

// ScoreSnapshot is one historical point of an author's score.
type ScoreSnapshot struct {
	Score      float64         `json:"score"`
	Components ScoreComponents `json:"components"`
	Reason     string          `json:"reason"`
	Timestamp  time.Time       `json:"timestamp"`
}

// KurralScore is an author's long-lived trust record: the current
// 0-100 score, its components, and a bounded history of past snapshots.
type KurralScore struct {
	AuthorID    string          `json:"author_id"`
	Score       float64         `json:"score"`
	Components  ScoreComponents `json:"components"`
	LastUpdated time.Time       `json:"last_updated"`
	History     []ScoreSnapshot `json:"history,omitempty"`
}

// EngagementKind classifies a single viewer interaction with a chirp.
type EngagementKind string

const (
	EngageView    EngagementKind = "view"
	EngageLike    EngagementKind = "like"
	EngageReply   EngagementKind = "reply"
	EngageRechirp EngagementKind = "rechirp"
	EngageIgnore  EngagementKind = "ignore"
	EngageMute    EngagementKind = "mute"
)

// Negative reports whether the interaction signals disinterest.
func (k EngagementKind) Negative() bool {
	return k == EngageIgnore || k == EngageMute
}

// EngagementEvent records one interaction, the raw material for tuning
// suggestions.
type EngagementEvent struct {
	ID       string         `json:"id"`
	ViewerID string         `json:"viewer_id"`
	ChirpID  string         `json:"chirp_id"`
	Topic    string         `json:"topic"`
	AuthorID string         `json:"author_id"`
	Followed bool           `json:"followed"`
	Kind     EngagementKind `json:"kind"`
	At       time.Time      `json:"at"`
}

// TuningSuggestion is a proposed ForYouConfig edit derived from
// engagement history. It is advisory: the viewer applies or ignores it.
type TuningSuggestion struct {
	ViewerID    string       `json:"viewer_id"`
	Proposed    ForYouConfig `json:"proposed"`
	Confidence  float64      `json:"confidence"`
	Explanation string       `json:"explanation"`
	GeneratedAt time.Time    `json:"generated_at"`
}
