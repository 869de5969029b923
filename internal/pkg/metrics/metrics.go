package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orderlygate_request_latency_seconds",
		Help:    "Inbound request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	VenueCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderlygate_venue_calls_total",
		Help: "Outbound venue calls by outcome",
	}, []string{"method", "outcome"})

	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderlygate_auth_failures_total",
		Help: "Partner authentication failures",
	}, []string{"reason"})
)
