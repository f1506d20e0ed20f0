// Package metrics holds the Prometheus collectors for the feed engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every collector the service exports.
type Registry struct {
	registry *prometheus.Registry

	// FeedBuildDuration tracks end-to-end rank passes by outcome.
	FeedBuildDuration *prometheus.HistogramVec
	// PolicyDecisions counts status decisions by resulting status.
	PolicyDecisions *prometheus.CounterVec
	// ReputationEvents counts contribution/violation applications.
	ReputationEvents *prometheus.CounterVec
	// FeedCacheHits and FeedCacheMisses track memoization efficiency.
	FeedCacheHits   prometheus.Counter
	FeedCacheMisses prometheus.Counter
	// EngagementIngested counts accepted engagement events by kind.
	EngagementIngested *prometheus.CounterVec
}

// NewRegistry creates and registers all collectors on a private
// prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		FeedBuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feedengine_feed_build_duration_seconds",
				Help:    "Duration of feed rank passes in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"result"},
		),
		PolicyDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedengine_policy_decisions_total",
				Help: "Fact-check policy decisions by resulting status",
			},
			[]string{"status"},
		),
		ReputationEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedengine_reputation_events_total",
				Help: "Reputation events applied by kind",
			},
			[]string{"kind"},
		),
		FeedCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedengine_feed_cache_hits_total",
			Help: "Feed cache hits",
		}),
		FeedCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedengine_feed_cache_misses_total",
			Help: "Feed cache misses",
		}),
		EngagementIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedengine_engagement_events_total",
				Help: "Engagement events ingested by kind",
			},
			[]string{"kind"},
		),
	}

	r.registry.MustRegister(
		r.FeedBuildDuration,
		r.PolicyDecisions,
		r.ReputationEvents,
		r.FeedCacheHits,
		r.FeedCacheMisses,
		r.EngagementIngested,
	)
	return r
}

// Handler exposes the registry for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
