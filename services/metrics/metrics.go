// Package metrics exposes Prometheus counters for provider calls and social activity.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	OddsLookups      *prometheus.CounterVec
	PicksShared      *prometheus.CounterVec
	SocialActions    *prometheus.CounterVec
	RealtimeBatches  prometheus.Counter
	PicksSettled     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picks_upstream_requests_total",
				Help: "Requests made to sports and odds providers",
			},
			[]string{"provider", "status"},
		),
		UpstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "picks_upstream_request_seconds",
				Help:    "Latency of provider requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		OddsLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picks_odds_lookups_total",
				Help: "Odds lookups by outcome (matched, unmatched, stale, error)",
			},
			[]string{"outcome"},
		),
		PicksShared: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picks_shared_total",
				Help: "Pick posts shared, by mode",
			},
			[]string{"mode"},
		),
		SocialActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picks_social_actions_total",
				Help: "Likes, reposts, follows and comments, by result",
			},
			[]string{"action", "result"},
		),
		RealtimeBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "picks_realtime_batches_total",
			Help: "Non-empty change batches delivered to feed subscribers",
		}),
		PicksSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picks_settled_total",
				Help: "Pick legs settled, by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamLatency,
		m.OddsLookups,
		m.PicksShared,
		m.SocialActions,
		m.RealtimeBatches,
		m.PicksSettled,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordUpstream(provider, status string, seconds float64) {
	m.UpstreamRequests.WithLabelValues(provider, status).Inc()
	m.UpstreamLatency.WithLabelValues(provider).Observe(seconds)
}

func (m *Metrics) RecordOddsLookup(outcome string) {
	m.OddsLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordSocial(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SocialActions.WithLabelValues(action, result).Inc()
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns a process-wide instance for callers that are not handed one.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}
