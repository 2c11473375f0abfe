// Package metrics provides centralized Prometheus metrics registry for the vote runner.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "boatrace_vote"

// Feed record statuses
const (
	FeedStatusParsed       = "parsed"
	FeedStatusSkipped      = "skipped"
	FeedStatusFailed       = "failed"
	FeedStatusUnclassified = "unclassified"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Feed metrics
var (
	FeedRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_records_total",
		Help:      "Total number of feed records by kind and parse status",
	}, []string{"kind", "status"})
	FeedParseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_parse_duration_seconds",
		Help:      "Duration of feed batch parsing in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// Storage metrics
var (
	StorageRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_requests_total",
		Help:      "Total number of object storage requests by operation and result",
	}, []string{"operation", "result"})
	StorageRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "storage_request_duration_seconds",
		Help:      "Latency of object storage requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// Loop metrics
var (
	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Duration of one vote and payoff cycle in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
	CyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_total",
		Help:      "Total number of loop cycles by result",
	}, []string{"result"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(FeedRecordsTotal)
		registry.MustRegister(FeedParseDuration)

		registry.MustRegister(StorageRequestsTotal)
		registry.MustRegister(StorageRequestDuration)

		registry.MustRegister(CycleDuration)
		registry.MustRegister(CyclesTotal)

		// Register ledger metrics
		registry.MustRegister(VotesPlacedTotal)
		registry.MustRegister(VoteStakeUnits)
		registry.MustRegister(SettlementsTotal)
		registry.MustRegister(PayoffAmountTotal)
		registry.MustRegister(RacesRemaining)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordFeedRecord counts one feed record.
func RecordFeedRecord(kind, status string) {
	FeedRecordsTotal.WithLabelValues(kind, status).Inc()
}

// ObserveFeedParse records how long a batch took to parse.
func ObserveFeedParse(durationSeconds float64) {
	FeedParseDuration.Observe(durationSeconds)
}

// RecordStorageRequest records one object storage call.
func RecordStorageRequest(operation string, err error, durationSeconds float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StorageRequestsTotal.WithLabelValues(operation, result).Inc()
	StorageRequestDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordCycle records one loop cycle.
func RecordCycle(err error, durationSeconds float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CyclesTotal.WithLabelValues(result).Inc()
	CycleDuration.Observe(durationSeconds)
}
