package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger service.
type Metrics struct {
	MembersCreated    prometheus.Counter
	PoolsCreated      prometheus.Counter
	ClaimsSubmitted   prometheus.Counter
	ClaimsProcessed   *prometheus.CounterVec
	PremiumsCollected prometheus.Counter
	RequestLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		MembersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carepool_members_created_total",
			Help: "Total number of members enrolled across all pools",
		}),
		PoolsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carepool_pools_created_total",
			Help: "Total number of insurance pools created",
		}),
		ClaimsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carepool_claims_submitted_total",
			Help: "Total number of claims submitted",
		}),
		ClaimsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carepool_claims_processed_total",
			Help: "Total number of claims reaching a terminal review decision",
		}, []string{"outcome"}),
		PremiumsCollected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carepool_premiums_collected_units",
			Help: "Cumulative premiums collected, in minor currency units",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carepool_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
