// Package app wires the policy, ranking, reputation, and tuning
// engines to their stores and exposes the operations the HTTP layer and
// CLI call. The engines stay pure; everything stateful lives here.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kurral/feedengine/internal/domain"
	"github.com/kurral/feedengine/internal/metrics"
	"github.com/kurral/feedengine/internal/policy"
	"github.com/kurral/feedengine/internal/rank"
	"github.com/kurral/feedengine/internal/reputation"
	"github.com/kurral/feedengine/internal/store"
	"github.com/kurral/feedengine/internal/tune"
)

// minContributionValue is the value-score floor below which a clean
// chirp earns no quality contribution.
const minContributionValue = 0.5

// engagementHistoryWindow bounds how many events one suggestion folds
// over.
const engagementHistoryWindow = 200

// Service is the feed engine facade.
type Service struct {
	chirps      store.ChirpRepository
	users       store.UserRepository
	engagements store.EngagementLog

	policy     *policy.Engine
	ranker     *rank.Ranker
	reputation *reputation.Engine
	suggester  *tune.Suggester

	cache   *store.FeedCache
	metrics *metrics.Registry
}

// Options collects the collaborators a Service needs.
type Options struct {
	Chirps      store.ChirpRepository
	Users       store.UserRepository
	Engagements store.EngagementLog
	Policy      *policy.Engine
	Ranker      *rank.Ranker
	Reputation  *reputation.Engine
	Suggester   *tune.Suggester
	Cache       *store.FeedCache
	Metrics     *metrics.Registry
}

// NewService assembles the facade.
func NewService(opts Options) *Service {
	return &Service{
		chirps:      opts.Chirps,
		users:       opts.Users,
		engagements: opts.Engagements,
		policy:      opts.Policy,
		ranker:      opts.Ranker,
		reputation:  opts.Reputation,
		suggester:   opts.Suggester,
		cache:       opts.Cache,
		metrics:     opts.Metrics,
	}
}

// BuildFeed ranks the current candidate set for one viewer, memoized by
// (viewer, config hash, candidate-set version).
func (s *Service) BuildFeed(ctx context.Context, viewerID string) (domain.Feed, error) {
	started := time.Now()

	viewer, found, err := s.users.Get(ctx, viewerID)
	if err != nil {
		return domain.Feed{}, fmt.Errorf("resolve viewer %s: %w", viewerID, err)
	}
	cfg := domain.DefaultForYouConfig()
	if found {
		cfg = viewer.Config
	}

	version, err := s.chirps.Version(ctx)
	if err != nil {
		return domain.Feed{}, fmt.Errorf("candidate version: %w", err)
	}

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.Key(viewerID, cfg, version)
		if feed, ok := s.cache.Get(cacheKey); ok {
			s.metrics.FeedCacheHits.Inc()
			return feed, nil
		}
		s.metrics.FeedCacheMisses.Inc()
	}

	candidates, err := s.chirps.ListCandidates(ctx)
	if err != nil {
		s.metrics.FeedBuildDuration.WithLabelValues("error").Observe(time.Since(started).Seconds())
		return domain.Feed{}, fmt.Errorf("list candidates: %w", err)
	}

	// A viewer never sees their own chirps in For You; that filter is
	// the caller's job, so it lives here and not in the ranker.
	filtered := candidates[:0:0]
	for _, chirp := range candidates {
		if chirp.AuthorID != viewerID {
			filtered = append(filtered, chirp)
		}
	}

	resolve := func(id string) (domain.User, bool) {
		u, ok, err := s.users.Get(ctx, id)
		if err != nil {
			return domain.User{}, false
		}
		return u, ok
	}

	feed := s.ranker.Rank(filtered, viewerID, cfg, resolve)
	if s.cache != nil {
		s.cache.Set(cacheKey, feed)
	}
	s.metrics.FeedBuildDuration.WithLabelValues("ok").Observe(time.Since(started).Seconds())

	log.Debug().Str("viewer", viewerID).
		Int("candidates", feed.Candidates).
		Int("entries", len(feed.Entries)).
		Str("empty_reason", string(feed.EmptyReason)).
		Msg("feed built")
	return feed, nil
}

// ApplyVerification attaches a fresh claim/fact-check set to a chirp,
// recomputes its status, and feeds the outcome into reputation: blocked
// is a violation, clean with a strong value score is a contribution.
func (s *Service) ApplyVerification(ctx context.Context, chirpID string, claims []domain.Claim, factChecks []domain.FactCheck) (domain.FactCheckStatus, error) {
	chirp, found, err := s.chirps.Get(ctx, chirpID)
	if err != nil {
		return "", fmt.Errorf("load chirp %s: %w", chirpID, err)
	}
	if !found {
		return "", fmt.Errorf("chirp %s not found", chirpID)
	}

	chirp.Claims = claims
	chirp.FactChecks = factChecks
	status := s.policy.Restatus(&chirp)
	s.metrics.PolicyDecisions.WithLabelValues(string(status)).Inc()

	if err := s.chirps.Upsert(ctx, chirp); err != nil {
		return "", fmt.Errorf("store chirp %s: %w", chirpID, err)
	}

	switch status {
	case domain.StatusBlocked:
		if _, err := s.reputation.RecordViolation(ctx, chirp.AuthorID, reputation.Violation{
			ChirpID:  chirp.ID,
			Severity: 1,
			Reason:   "blocked by fact-check policy",
		}); err != nil {
			return status, fmt.Errorf("record violation: %w", err)
		}
		s.metrics.ReputationEvents.WithLabelValues("violation").Inc()
	case domain.StatusClean:
		if chirp.ValueScore != nil && chirp.ValueScore.Total >= minContributionValue {
			if _, err := s.reputation.RecordContribution(ctx, chirp.AuthorID, reputation.Contribution{
				ChirpID:    chirp.ID,
				ValueTotal: chirp.ValueScore.Total,
				Engagement: engagementLevel(chirp.CommentCount),
			}); err != nil {
				return status, fmt.Errorf("record contribution: %w", err)
			}
			s.metrics.ReputationEvents.WithLabelValues("contribution").Inc()
		}
	}

	log.Info().Str("chirp", chirp.ID).Str("author", chirp.AuthorID).
		Str("status", string(status)).Int("claims", len(claims)).
		Msg("verification applied")
	return status, nil
}

// IngestEngagement records one viewer interaction for future tuning.
func (s *Service) IngestEngagement(ctx context.Context, ev domain.EngagementEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if err := s.engagements.Append(ctx, ev); err != nil {
		return fmt.Errorf("append engagement: %w", err)
	}
	s.metrics.EngagementIngested.WithLabelValues(string(ev.Kind)).Inc()
	return nil
}

// SuggestTuning builds an advisory config edit for the viewer.
func (s *Service) SuggestTuning(ctx context.Context, viewerID string) (domain.TuningSuggestion, error) {
	viewer, found, err := s.users.Get(ctx, viewerID)
	if err != nil {
		return domain.TuningSuggestion{}, fmt.Errorf("resolve viewer %s: %w", viewerID, err)
	}
	cfg := domain.DefaultForYouConfig()
	if found {
		cfg = viewer.Config
	}
	history, err := s.engagements.History(ctx, viewerID, engagementHistoryWindow)
	if err != nil {
		return domain.TuningSuggestion{}, fmt.Errorf("engagement history: %w", err)
	}
	return s.suggester.Suggest(viewerID, history, cfg), nil
}

// AcceptSuggestion merges a suggestion into the viewer's stored config.
// Only ever called on explicit viewer acceptance.
func (s *Service) AcceptSuggestion(ctx context.Context, viewerID string, suggestion domain.TuningSuggestion) (domain.ForYouConfig, error) {
	viewer, found, err := s.users.Get(ctx, viewerID)
	if err != nil {
		return domain.ForYouConfig{}, fmt.Errorf("resolve viewer %s: %w", viewerID, err)
	}
	if !found {
		viewer = domain.NewUser(viewerID, viewerID)
	}
	viewer.Config = tune.Apply(viewer.Config, suggestion)
	if err := s.users.Upsert(ctx, viewer); err != nil {
		return domain.ForYouConfig{}, fmt.Errorf("store viewer %s: %w", viewerID, err)
	}
	if s.cache != nil {
		// Config changed; memoized feeds for the old config are dead
		// keys anyway, but flushing keeps memory tidy.
		s.cache.Flush()
	}
	return viewer.Config, nil
}

// AuthorScore reads an author's current trust score with decay applied.
type AuthorScore struct {
	Score          domain.KurralScore `json:"score"`
	ReviewEligible bool               `json:"review_eligible"`
}

// Score returns the author's decayed score and review eligibility.
func (s *Service) Score(ctx context.Context, authorID string) (AuthorScore, error) {
	ks, err := s.reputation.CurrentScore(ctx, authorID)
	if err != nil {
		return AuthorScore{}, err
	}
	return AuthorScore{Score: ks, ReviewEligible: s.reputation.EligibleForReview(ks)}, nil
}

// ChirpStatus returns a chirp's current fact-check status.
func (s *Service) ChirpStatus(ctx context.Context, chirpID string) (domain.FactCheckStatus, error) {
	chirp, found, err := s.chirps.Get(ctx, chirpID)
	if err != nil {
		return "", fmt.Errorf("load chirp %s: %w", chirpID, err)
	}
	if !found {
		return "", fmt.Errorf("chirp %s not found", chirpID)
	}
	return chirp.Status, nil
}

// engagementLevel maps raw comment counts into [0,1] for reputation
// contributions.
func engagementLevel(comments int) float64 {
	const scale = 50.0
	level := float64(comments) / scale
	if level > 1 {
		return 1
	}
	return level
}
