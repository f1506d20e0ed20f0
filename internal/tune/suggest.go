// Package tune turns a viewer's engagement history into advisory
// ForYouConfig edits. Suggestions are never auto-applied; the viewer
// accepts or ignores them.
package tune

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kurral/feedengine/internal/domain"
)

// Config tunes suggestion generation.
type Config struct {
	// MinEvents is the history size below which no confident suggestion
	// exists.
	MinEvents int `yaml:"min_events"`
	// LikeThreshold is the net positive engagement count at which a
	// topic is proposed as liked.
	LikeThreshold int `yaml:"like_threshold"`
	// MuteThreshold is the net negative engagement count at which a
	// topic is proposed as muted.
	MuteThreshold int `yaml:"mute_threshold"`
	// HeavyFollowShare is the fraction of engagement coming from
	// followed authors above which heavier following weight is
	// proposed.
	HeavyFollowShare float64 `yaml:"heavy_follow_share"`
	// LightFollowShare is the fraction below which lighter following
	// weight is proposed.
	LightFollowShare float64 `yaml:"light_follow_share"`
	// ConversationShare is the fraction of reply engagement above which
	// conversation boosting is proposed.
	ConversationShare float64 `yaml:"conversation_share"`
	// MaxTopics caps how many liked/muted topics one suggestion adds.
	MaxTopics int `yaml:"max_topics"`
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		MinEvents:         10,
		LikeThreshold:     3,
		MuteThreshold:     3,
		HeavyFollowShare:  0.6,
		LightFollowShare:  0.15,
		ConversationShare: 0.3,
		MaxTopics:         3,
	}
}

// topicTally accumulates per-topic engagement pressure.
type topicTally struct {
	topic    string
	positive int
	negative int
}

func (t topicTally) net() int { return t.positive - t.negative }

// Suggester folds engagement events into a TuningSuggestion.
type Suggester struct {
	cfg   Config
	clock func() time.Time
}

// NewSuggester creates a suggester; a zero config falls back to
// defaults.
func NewSuggester(cfg Config) *Suggester {
	if cfg.MinEvents == 0 {
		cfg = DefaultConfig()
	}
	return &Suggester{cfg: cfg, clock: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Suggester) WithClock(clock func() time.Time) *Suggester {
	s.clock = clock
	return s
}

// Suggest proposes a config edit from the viewer's engagement history.
// With little or contradictory history the current config comes back
// unchanged at low confidence.
func (s *Suggester) Suggest(viewerID string, history []domain.EngagementEvent, current domain.ForYouConfig) domain.TuningSuggestion {
	suggestion := domain.TuningSuggestion{
		ViewerID:    viewerID,
		Proposed:    current,
		Confidence:  0,
		Explanation: "Not enough engagement history to tune your feed yet",
		GeneratedAt: s.clock(),
	}
	if len(history) < s.cfg.MinEvents {
		return suggestion
	}

	tallies, followed, replies, total := fold(history)
	var changes []string

	// Topic proposals: toward what the viewer engages with, away from
	// what they ignore or mute repeatedly.
	liked := current.LikedSet()
	muted := current.MutedSet()
	addLiked, addMuted := 0, 0
	for _, tally := range tallies {
		if addLiked < s.cfg.MaxTopics && tally.net() >= s.cfg.LikeThreshold {
			if _, has := liked[tally.topic]; !has {
				suggestion.Proposed.LikedTopics = append(suggestion.Proposed.LikedTopics, tally.topic)
				changes = append(changes, fmt.Sprintf("like %q", tally.topic))
				addLiked++
			}
		}
		if addMuted < s.cfg.MaxTopics && -tally.net() >= s.cfg.MuteThreshold {
			if _, has := muted[tally.topic]; !has {
				suggestion.Proposed.MutedTopics = append(suggestion.Proposed.MutedTopics, tally.topic)
				changes = append(changes, fmt.Sprintf("mute %q", tally.topic))
				addMuted++
			}
		}
	}

	followShare := float64(followed) / float64(total)
	if followShare >= s.cfg.HeavyFollowShare && current.FollowingWeight != domain.FollowingHeavy {
		suggestion.Proposed.FollowingWeight = bumpWeight(current.FollowingWeight, 1)
		changes = append(changes, "lean harder on people you follow")
	} else if followShare <= s.cfg.LightFollowShare && current.FollowingWeight != domain.FollowingNone {
		suggestion.Proposed.FollowingWeight = bumpWeight(current.FollowingWeight, -1)
		changes = append(changes, "lean less on people you follow")
	}

	replyShare := float64(replies) / float64(total)
	if replyShare >= s.cfg.ConversationShare && !current.BoostActiveConversations {
		suggestion.Proposed.BoostActiveConversations = true
		changes = append(changes, "boost active conversations")
	}

	if len(changes) == 0 {
		suggestion.Explanation = "Your current feed settings already match how you engage"
		suggestion.Confidence = 0.3
		return suggestion
	}

	suggestion.Confidence = confidence(len(history), len(changes), s.cfg.MinEvents)
	suggestion.Explanation = "Based on your recent activity: " + strings.Join(changes, ", ")
	return suggestion
}

// Apply merges an accepted suggestion into the config. Callers invoke
// this only after explicit viewer acceptance; nothing in the engine
// applies suggestions on its own.
func Apply(current domain.ForYouConfig, suggestion domain.TuningSuggestion) domain.ForYouConfig {
	return suggestion.Proposed
}

// fold tallies history into per-topic pressure plus follow and reply
// counts, sorted for deterministic proposal order.
func fold(history []domain.EngagementEvent) (tallies []topicTally, followed, replies, total int) {
	byTopic := make(map[string]*topicTally)
	for _, ev := range history {
		total++
		topic := strings.ToLower(strings.TrimSpace(ev.Topic))
		if topic != "" {
			tally, ok := byTopic[topic]
			if !ok {
				tally = &topicTally{topic: topic}
				byTopic[topic] = tally
			}
			if ev.Kind.Negative() {
				tally.negative++
			} else {
				tally.positive++
			}
		}
		if !ev.Kind.Negative() {
			if ev.Followed {
				followed++
			}
			if ev.Kind == domain.EngageReply {
				replies++
			}
		}
	}
	tallies = make([]topicTally, 0, len(byTopic))
	for _, tally := range byTopic {
		tallies = append(tallies, *tally)
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].net() != tallies[j].net() {
			return tallies[i].net() > tallies[j].net()
		}
		return tallies[i].topic < tallies[j].topic
	})
	return tallies, followed, replies, total
}

func bumpWeight(w domain.FollowingWeight, delta int) domain.FollowingWeight {
	order := []domain.FollowingWeight{
		domain.FollowingNone, domain.FollowingLight, domain.FollowingMedium, domain.FollowingHeavy,
	}
	idx := 2 // medium, the parse fallback
	for i, candidate := range order {
		if candidate == w {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(order) {
		idx = len(order) - 1
	}
	return order[idx]
}

// confidence grows with history depth and shrinks as a suggestion asks
// for more changes at once.
func confidence(events, changes, minEvents int) float64 {
	depth := float64(events) / float64(minEvents*4)
	if depth > 1 {
		depth = 1
	}
	c := 0.4 + 0.5*depth - 0.05*float64(changes-1)
	if c < 0.2 {
		c = 0.2
	}
	if c > 0.95 {
		c = 0.95
	}
	return c
}
