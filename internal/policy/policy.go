// Package policy reduces a chirp's claims and fact-check verdicts into
// a single visibility status: clean, needs_review, or blocked.
//
// Each claim is judged independently, then the post takes the worst
// per-claim status. A single high-confidence false claim blocks the
// whole chirp no matter how many other claims check out — ambiguity in
// a sensitive claim is never masked by unrelated verified ones.
package policy

import (
	"github.com/kurral/feedengine/internal/domain"
)

// Config holds the decision thresholds. The shipped values are tuned
// defaults, not constants of nature.
type Config struct {
	// BlockConfidence is the minimum confidence at which a false
	// verdict blocks the post outright.
	BlockConfidence float64 `yaml:"block_confidence"`
	// ReviewConfidence is the minimum confidence below which a
	// high-risk claim is held for review even when a verdict exists.
	ReviewConfidence float64 `yaml:"review_confidence"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		BlockConfidence:  0.8,
		ReviewConfidence: 0.6,
	}
}

// Validate checks threshold sanity.
func (c Config) Validate() error {
	if c.BlockConfidence < 0 || c.BlockConfidence > 1 {
		return errThreshold("block_confidence", c.BlockConfidence)
	}
	if c.ReviewConfidence < 0 || c.ReviewConfidence > 1 {
		return errThreshold("review_confidence", c.ReviewConfidence)
	}
	return nil
}

// Engine applies the fact-check policy. Stateless and safe for
// concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates a policy engine; nil-ish zero config falls back to
// defaults.
func NewEngine(cfg Config) *Engine {
	if cfg.BlockConfidence == 0 && cfg.ReviewConfidence == 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// DecideStatus folds a claim/fact-check set into a post-level status.
// Total: no claims means clean by absence, never an error.
func (e *Engine) DecideStatus(claims []domain.Claim, factChecks []domain.FactCheck) domain.FactCheckStatus {
	status := domain.StatusClean
	byClaim := indexFactChecks(factChecks)
	for _, claim := range claims {
		fc, ok := byClaim[claim.ID]
		status = status.Worse(e.decideClaim(claim, fc, ok))
		if status == domain.StatusBlocked {
			// Already at maximum severity.
			return status
		}
	}
	return status
}

// Restatus recomputes and stamps a chirp's derived status. The status
// field is never written any other way.
func (e *Engine) Restatus(c *domain.Chirp) domain.FactCheckStatus {
	c.Status = e.DecideStatus(c.Claims, c.FactChecks)
	return c.Status
}

// decideClaim classifies a single claim given its fact-check, if any.
func (e *Engine) decideClaim(claim domain.Claim, fc domain.FactCheck, checked bool) domain.FactCheckStatus {
	if checked {
		confidence := fc.BoundedConfidence()
		if fc.Verdict == domain.VerdictFalse && confidence >= e.cfg.BlockConfidence {
			return domain.StatusBlocked
		}
		if claim.Domain.HighRisk() {
			if fc.Verdict == domain.VerdictMixed || confidence < e.cfg.ReviewConfidence {
				return domain.StatusNeedsReview
			}
		}
		return domain.StatusClean
	}
	// No verdict yet: risky domains wait for review, everything else is
	// clean by absence.
	if claim.Domain.HighRisk() {
		return domain.StatusNeedsReview
	}
	return domain.StatusClean
}

func indexFactChecks(factChecks []domain.FactCheck) map[string]domain.FactCheck {
	byClaim := make(map[string]domain.FactCheck, len(factChecks))
	for _, fc := range factChecks {
		// Later re-verifications win over stale entries for the same
		// claim.
		byClaim[fc.ClaimID] = fc
	}
	return byClaim
}
