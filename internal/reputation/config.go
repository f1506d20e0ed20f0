package reputation

import (
	"fmt"
	"time"
)

// Weights combine the five components into the 0-100 composite. The
// four positive weights should sum to 1; violation weight is applied as
// a deduction.
type Weights struct {
	Quality     float64 `yaml:"quality"`
	Engagement  float64 `yaml:"engagement"`
	Consistency float64 `yaml:"consistency"`
	Trust       float64 `yaml:"trust"`
	Violation   float64 `yaml:"violation"`
}

// Config tunes the reputation engine.
type Config struct {
	Weights Weights `yaml:"weights"`

	// QualityHalfLife controls how fast positive history fades back
	// toward the neutral resting level.
	QualityHalfLife time.Duration `yaml:"quality_half_life"`
	// ViolationHalfLife controls how fast violation influence fades.
	// Recovery is monotonic: absent new events, the deduction only
	// shrinks.
	ViolationHalfLife time.Duration `yaml:"violation_half_life"`

	// ContributionGain and ViolationGain set how far one event moves a
	// component toward its target, in (0,1].
	ContributionGain float64 `yaml:"contribution_gain"`
	ViolationGain    float64 `yaml:"violation_gain"`

	// HistoryCap bounds the per-author snapshot history; the oldest
	// entries are dropped on append.
	HistoryCap int `yaml:"history_cap"`

	// ReviewThreshold is the minimum score at which an author is
	// offered review duties. The offer itself is the caller's call.
	ReviewThreshold float64 `yaml:"review_threshold"`
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Quality:     0.35,
			Engagement:  0.25,
			Consistency: 0.20,
			Trust:       0.20,
			Violation:   0.8,
		},
		QualityHalfLife:   14 * 24 * time.Hour,
		ViolationHalfLife: 7 * 24 * time.Hour,
		ContributionGain:  0.15,
		ViolationGain:     0.35,
		HistoryCap:        50,
		ReviewThreshold:   70,
	}
}

// Validate checks the tuning for internal consistency.
func (c Config) Validate() error {
	sum := c.Weights.Quality + c.Weights.Engagement + c.Weights.Consistency + c.Weights.Trust
	if sum <= 0 {
		return fmt.Errorf("reputation: positive component weights must sum above 0, got %.3f", sum)
	}
	if c.ContributionGain <= 0 || c.ContributionGain > 1 {
		return fmt.Errorf("reputation: contribution_gain must be in (0,1], got %.3f", c.ContributionGain)
	}
	if c.ViolationGain <= 0 || c.ViolationGain > 1 {
		return fmt.Errorf("reputation: violation_gain must be in (0,1], got %.3f", c.ViolationGain)
	}
	if c.QualityHalfLife <= 0 || c.ViolationHalfLife <= 0 {
		return fmt.Errorf("reputation: half-lives must be positive")
	}
	if c.HistoryCap <= 0 {
		return fmt.Errorf("reputation: history_cap must be positive, got %d", c.HistoryCap)
	}
	return nil
}
