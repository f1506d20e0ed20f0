// Package reputation maintains per-author KurralScores: a 0-100
// composite of five decayed components. Old behavior loses influence
// over time, so sustained quality activity recovers a score after
// violations.
package reputation

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/kurral/feedengine/internal/domain"
)

// Component resting levels. Positive components drift back to neutral,
// violations drift to zero.
const (
	restingNeutral = 50.0
	restingZero    = 0.0
	scoreMax       = 100.0
)

const lockStripes = 64

// Store persists KurralScores. Implementations live in internal/store.
type Store interface {
	LoadScore(ctx context.Context, authorID string) (domain.KurralScore, bool, error)
	SaveScore(ctx context.Context, score domain.KurralScore) error
}

// Contribution is a positive reputation event: a chirp survived as
// clean with a value assessment attached.
type Contribution struct {
	ChirpID    string
	ValueTotal float64 // [0,1]
	Engagement float64 // [0,1], quality-weighted engagement received
	At         time.Time
}

// Violation is a negative reputation event, typically a blocked policy
// decision.
type Violation struct {
	ChirpID  string
	Severity float64 // [0,1]
	Reason   string
	At       time.Time
}

// Engine folds contribution and violation events into stored scores.
// Updates for the same author are serialized through striped locks;
// different authors proceed in parallel.
type Engine struct {
	cfg   Config
	store Store
	locks [lockStripes]sync.Mutex
	clock func() time.Time
}

// NewEngine creates a reputation engine over the given store.
func NewEngine(cfg Config, store Store) *Engine {
	if cfg.HistoryCap == 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, store: store, clock: time.Now}
}

// WithClock overrides the time source, for tests.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// CurrentScore returns the author's score with decay applied as of now.
// Pure read: nothing is persisted.
func (e *Engine) CurrentScore(ctx context.Context, authorID string) (domain.KurralScore, error) {
	ks, found, err := e.store.LoadScore(ctx, authorID)
	if err != nil {
		return domain.KurralScore{}, fmt.Errorf("load score for %s: %w", authorID, err)
	}
	if !found {
		ks = e.newScore(authorID)
	}
	now := e.clock()
	e.decay(&ks, now)
	ks.Score = e.composite(ks.Components)
	return ks, nil
}

// RecordContribution applies a positive event and returns the updated
// score.
func (e *Engine) RecordContribution(ctx context.Context, authorID string, c Contribution) (domain.KurralScore, error) {
	return e.mutate(ctx, authorID, c.At, fmt.Sprintf("contribution %s", c.ChirpID), func(comp *domain.ScoreComponents) {
		gain := e.cfg.ContributionGain
		comp.QualityHistory = approach(comp.QualityHistory, clamp01(c.ValueTotal)*scoreMax, gain)
		comp.EngagementQuality = approach(comp.EngagementQuality, clamp01(c.Engagement)*scoreMax, gain)
		// Showing up at all nudges consistency and community standing.
		comp.Consistency = approach(comp.Consistency, scoreMax, gain/2)
		comp.CommunityTrust = approach(comp.CommunityTrust, scoreMax, gain/4)
	})
}

// RecordViolation applies a negative event and returns the updated
// score.
func (e *Engine) RecordViolation(ctx context.Context, authorID string, v Violation) (domain.KurralScore, error) {
	reason := v.Reason
	if reason == "" {
		reason = fmt.Sprintf("violation %s", v.ChirpID)
	}
	return e.mutate(ctx, authorID, v.At, reason, func(comp *domain.ScoreComponents) {
		severity := clamp01(v.Severity)
		if severity == 0 {
			severity = 1 // an unscored violation is a full violation
		}
		comp.ViolationHistory = approach(comp.ViolationHistory, severity*scoreMax, e.cfg.ViolationGain)
		comp.CommunityTrust = approach(comp.CommunityTrust, restingZero, e.cfg.ViolationGain/2)
	})
}

// EligibleForReview reports whether a score clears the review-duty
// threshold. The decision to offer duties stays with the caller.
func (e *Engine) EligibleForReview(ks domain.KurralScore) bool {
	return ks.Score >= e.cfg.ReviewThreshold
}

func (e *Engine) mutate(ctx context.Context, authorID string, at time.Time, reason string, apply func(*domain.ScoreComponents)) (domain.KurralScore, error) {
	lock := &e.locks[stripe(authorID)]
	lock.Lock()
	defer lock.Unlock()

	ks, found, err := e.store.LoadScore(ctx, authorID)
	if err != nil {
		return domain.KurralScore{}, fmt.Errorf("load score for %s: %w", authorID, err)
	}
	if !found {
		ks = e.newScore(authorID)
	}
	if at.IsZero() {
		at = e.clock()
	}
	e.decayTo(&ks, at)
	apply(&ks.Components)
	clampComponents(&ks.Components)
	ks.Score = e.composite(ks.Components)
	ks.LastUpdated = at
	ks.History = appendSnapshot(ks.History, domain.ScoreSnapshot{
		Score:      ks.Score,
		Components: ks.Components,
		Reason:     reason,
		Timestamp:  at,
	}, e.cfg.HistoryCap)

	if err := e.store.SaveScore(ctx, ks); err != nil {
		return domain.KurralScore{}, fmt.Errorf("save score for %s: %w", authorID, err)
	}
	return ks, nil
}

func (e *Engine) newScore(authorID string) domain.KurralScore {
	comp := domain.ScoreComponents{
		QualityHistory:    restingNeutral,
		ViolationHistory:  restingZero,
		EngagementQuality: restingNeutral,
		Consistency:       restingNeutral,
		CommunityTrust:    restingNeutral,
	}
	return domain.KurralScore{
		AuthorID:    authorID,
		Score:       e.composite(comp),
		Components:  comp,
		LastUpdated: e.clock(),
	}
}

// decay moves components toward their resting levels for the time
// elapsed since the last update, without advancing LastUpdated.
func (e *Engine) decay(ks *domain.KurralScore, now time.Time) {
	elapsed := now.Sub(ks.LastUpdated)
	if elapsed <= 0 {
		return
	}
	qf := halfLifeFactor(elapsed, e.cfg.QualityHalfLife)
	vf := halfLifeFactor(elapsed, e.cfg.ViolationHalfLife)
	comp := &ks.Components
	comp.QualityHistory = restingNeutral + (comp.QualityHistory-restingNeutral)*qf
	comp.EngagementQuality = restingNeutral + (comp.EngagementQuality-restingNeutral)*qf
	comp.Consistency = restingNeutral + (comp.Consistency-restingNeutral)*qf
	comp.CommunityTrust = restingNeutral + (comp.CommunityTrust-restingNeutral)*qf
	comp.ViolationHistory = comp.ViolationHistory * vf
}

func (e *Engine) decayTo(ks *domain.KurralScore, at time.Time) {
	e.decay(ks, at)
}

// composite is the one deterministic mapping from components to score,
// clamped to [0,100].
func (e *Engine) composite(comp domain.ScoreComponents) float64 {
	w := e.cfg.Weights
	score := comp.QualityHistory*w.Quality +
		comp.EngagementQuality*w.Engagement +
		comp.Consistency*w.Consistency +
		comp.CommunityTrust*w.Trust -
		comp.ViolationHistory*w.Violation
	if score < 0 {
		return 0
	}
	if score > scoreMax {
		return scoreMax
	}
	return score
}

func appendSnapshot(history []domain.ScoreSnapshot, snap domain.ScoreSnapshot, limit int) []domain.ScoreSnapshot {
	history = append(history, snap)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

func approach(current, target, gain float64) float64 {
	return current + gain*(target-current)
}

func halfLifeFactor(elapsed, halfLife time.Duration) float64 {
	return math.Pow(0.5, elapsed.Hours()/halfLife.Hours())
}

func clampComponents(comp *domain.ScoreComponents) {
	for _, p := range []*float64{
		&comp.QualityHistory, &comp.ViolationHistory, &comp.EngagementQuality,
		&comp.Consistency, &comp.CommunityTrust,
	} {
		if *p < 0 {
			*p = 0
		}
		if *p > scoreMax {
			*p = scoreMax
		}
	}
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

func stripe(authorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(authorID))
	return int(h.Sum32() % lockStripes)
}
