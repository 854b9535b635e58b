package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	// keyRegistrations prometheus metric.
	keyRegistrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of key registration requests",
			Name:      "key_registrations_total",
			Namespace: "zkreg",
		},
		[]string{"scheme", "result"},
	)
	// proofSubmissions prometheus metric.
	proofSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of proof submissions by outcome",
			Name:      "proof_submissions_total",
			Namespace: "zkreg",
		},
		[]string{"scheme", "result"},
	)
	// verificationDuration prometheus metric.
	verificationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Help:      "Proof submission processing time",
			Name:      "proof_submission_duration_seconds",
			Namespace: "zkreg",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"scheme"},
	)
)

func init() {
	prometheus.MustRegister(
		keyRegistrations,
		proofSubmissions,
		verificationDuration,
	)
}

func updateKeyRegistrationMetric(scheme string, result string) {
	keyRegistrations.WithLabelValues(scheme, result).Inc()
}

func updateProofSubmissionMetric(scheme string, result string, start time.Time) {
	proofSubmissions.WithLabelValues(scheme, result).Inc()
	verificationDuration.WithLabelValues(scheme).Observe(time.Since(start).Seconds())
}
