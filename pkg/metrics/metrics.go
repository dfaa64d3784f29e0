package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinkRequests records magic-link issuance attempts by result
	// (sent|invalid_email|rate_limited|delivery_failed|error).
	LinkRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkauth_link_requests_total",
			Help: "Total number of magic link issuance requests",
		},
		[]string{"result"},
	)

	// Redemptions counts token redemption attempts by result
	// (success|not_found|expired|error).
	Redemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkauth_redemptions_total",
			Help: "Total number of magic link redemption attempts",
		},
		[]string{"result"},
	)

	// SessionsIssued tracks signed session credentials handed to clients.
	SessionsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkauth_sessions_issued_total",
			Help: "Number of session credentials issued",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkauth_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
