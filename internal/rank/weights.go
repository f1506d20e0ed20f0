package rank

import (
	"fmt"
	"time"
)

// SignalWeights are the fixed aggregation weights for the For You
// scorer. Viewers steer ranking only through ForYouConfig; these knobs
// are operator tuning.
type SignalWeights struct {
	Relationship  float64 `yaml:"relationship"`
	TopicAffinity float64 `yaml:"topic_affinity"`
	Recency       float64 `yaml:"recency"`
	Conversation  float64 `yaml:"conversation"`
	Value         float64 `yaml:"value"`

	// RecencyHalfLife is the age at which the recency signal halves.
	RecencyHalfLife time.Duration `yaml:"recency_half_life"`
	// ConversationScale is the comment count at which the conversation
	// signal saturates.
	ConversationScale int `yaml:"conversation_scale"`
	// NeutralValue substitutes for a missing value score so unscored
	// chirps are neither promoted nor buried.
	NeutralValue float64 `yaml:"neutral_value"`
	// ReviewDampen multiplies the score of needs_review chirps. Always
	// a down-weight, never an exclusion.
	ReviewDampen float64 `yaml:"review_dampen"`
}

// DefaultWeights returns the production tuning.
func DefaultWeights() SignalWeights {
	return SignalWeights{
		Relationship:      0.30,
		TopicAffinity:     0.25,
		Recency:           0.20,
		Conversation:      0.10,
		Value:             0.15,
		RecencyHalfLife:   6 * time.Hour,
		ConversationScale: 25,
		NeutralValue:      0.5,
		ReviewDampen:      0.4,
	}
}

// Validate checks the tuning for sanity.
func (w SignalWeights) Validate() error {
	sum := w.Relationship + w.TopicAffinity + w.Recency + w.Conversation + w.Value
	if sum <= 0 {
		return fmt.Errorf("rank: signal weights must sum above 0, got %.3f", sum)
	}
	if w.RecencyHalfLife <= 0 {
		return fmt.Errorf("rank: recency_half_life must be positive")
	}
	if w.ConversationScale <= 0 {
		return fmt.Errorf("rank: conversation_scale must be positive, got %d", w.ConversationScale)
	}
	if w.ReviewDampen <= 0 || w.ReviewDampen > 1 {
		return fmt.Errorf("rank: review_dampen must be in (0,1], got %.3f", w.ReviewDampen)
	}
	if w.NeutralValue < 0 || w.NeutralValue > 1 {
		return fmt.Errorf("rank: neutral_value must be in [0,1], got %.3f", w.NeutralValue)
	}
	return nil
}
