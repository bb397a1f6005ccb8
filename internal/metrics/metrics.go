package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OracleRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oracle_requests_total",
		Help: "Scoring oracle calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	OracleFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oracle_fallbacks_total",
		Help: "Oracle calls that exhausted retries and used the fallback result.",
	}, []string{"operation"})

	AutoSubmits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_autosubmits_total",
		Help: "Answers submitted by timer expiry instead of the candidate.",
	})

	SessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_sessions_completed_total",
		Help: "Sessions reaching completed status, by reason (finished, exited).",
	}, []string{"reason"})

	ActiveControllers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "interview_active_controllers",
		Help: "Live interview session controllers currently attached.",
	})
)
