// Package metrics exposes Prometheus counters for classification and
// k-mer extraction outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aria-lang/fivepseq-go/internal/classify"
	"github.com/aria-lang/fivepseq-go/internal/kmer"
)

var (
	// readsTotal counts seed-path reads by status and matched target
	readsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fivepseq_reads_total",
		Help: "Total reads classified by status and target",
	}, []string{"status", "target"})

	// recordsTotal counts mapped records by extraction status
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fivepseq_kmer_records_total",
		Help: "Total mapped records processed by status",
	}, []string{"status"})

	// requestDuration tracks API latency
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fivepseq_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"method", "status"})
)

// ObserveRead records one classification outcome.
func ObserveRead(out classify.Outcome) {
	readsTotal.WithLabelValues(out.Status.String(), out.Target).Inc()
}

// ObserveRecord records one k-mer extraction outcome.
func ObserveRecord(out kmer.Outcome) {
	recordsTotal.WithLabelValues(out.Status.String()).Inc()
}

// ObserveRequest records the duration of one HTTP request.
func ObserveRequest(method, status string, seconds float64) {
	requestDuration.WithLabelValues(method, status).Observe(seconds)
}
