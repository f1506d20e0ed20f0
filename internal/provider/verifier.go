// Package provider wraps the external fact-verification service. The
// engine never verifies anything itself; it fetches already-computed
// claims and verdicts, behind a rate limiter and a circuit breaker so a
// degraded provider cannot stall feed building.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/kurral/feedengine/internal/domain"
)

// Config tunes the verifier client.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// RPS and Burst bound outbound request rate.
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
	// Circuit breaker tuning.
	FailureThreshold uint32        `yaml:"failure_threshold"`
	OpenDuration     time.Duration `yaml:"open_duration"`
}

// DefaultConfig returns conservative production settings.
func DefaultConfig() Config {
	return Config{
		Timeout:          5 * time.Second,
		RPS:              10,
		Burst:            20,
		FailureThreshold: 5,
		OpenDuration:     30 * time.Second,
	}
}

// VerificationResult is the provider's payload for one chirp.
type VerificationResult struct {
	ChirpID    string             `json:"chirp_id"`
	Claims     []domain.Claim     `json:"claims"`
	FactChecks []domain.FactCheck `json:"fact_checks"`
	VerifiedAt time.Time          `json:"verified_at"`
}

// VerifierClient fetches verification results over HTTP.
type VerifierClient struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewVerifierClient creates a guarded client for the provider at
// cfg.BaseURL.
func NewVerifierClient(cfg Config) *VerifierClient {
	if cfg.Timeout == 0 {
		cfg = mergeDefaults(cfg)
	}
	settings := gobreaker.Settings{
		Name:    "fact-verifier",
		Timeout: cfg.OpenDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("verifier circuit state change")
		},
	}
	return &VerifierClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Fetch returns the current claims and fact-checks for a chirp. A chirp
// the provider has not processed yet comes back as an empty result, not
// an error: clean-by-absence is the documented policy default.
func (vc *VerifierClient) Fetch(ctx context.Context, chirpID string) (*VerificationResult, error) {
	if err := vc.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("verifier rate limit: %w", err)
	}
	raw, err := vc.breaker.Execute(func() (interface{}, error) {
		return vc.fetch(ctx, chirpID)
	})
	if err != nil {
		return nil, err
	}
	return raw.(*VerificationResult), nil
}

func (vc *VerifierClient) fetch(ctx context.Context, chirpID string) (*VerificationResult, error) {
	url := fmt.Sprintf("%s/v1/verifications/%s", vc.cfg.BaseURL, chirpID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build verifier request: %w", err)
	}
	resp, err := vc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verifier request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var result VerificationResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("decode verifier response: %w", err)
		}
		result.ChirpID = chirpID
		return &result, nil
	case http.StatusNotFound:
		// Not verified yet.
		return &VerificationResult{ChirpID: chirpID}, nil
	default:
		return nil, fmt.Errorf("verifier returned %d for chirp %s", resp.StatusCode, chirpID)
	}
}

func mergeDefaults(cfg Config) Config {
	def := DefaultConfig()
	def.BaseURL = cfg.BaseURL
	return def
}
