package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "areacheck_checks_total",
		Help: "Evaluated hit checks by outcome",
	}, []string{"result"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "areacheck_rejected_total",
		Help: "Requests answered without a hit check, by reason",
	}, []string{"reason"})

	checkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "areacheck_request_duration_seconds",
		Help:    "Time spent in the check pipeline",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}, []string{"status"})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "areacheck_rate_limited_total",
		Help: "Requests refused by the per-client rate limiter",
	})
)
