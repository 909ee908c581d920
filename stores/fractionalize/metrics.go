package fractionalize

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusStoreCalls    *prometheus.CounterVec
	prometheusStoreErrors   *prometheus.CounterVec
	prometheusStoreDuration *prometheus.HistogramVec
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusStoreCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fractionalize",
			Subsystem: "store",
			Name:      "calls",
			Help:      "Number of record store calls",
		},
		[]string{
			"backend",  // memory, sql, mongo
			"function", // Count, Find, Metadata, Ping
		},
	)

	prometheusStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fractionalize",
			Subsystem: "store",
			Name:      "errors",
			Help:      "Number of failed record store calls",
		},
		[]string{
			"backend",
			"function",
		},
	)

	prometheusStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fractionalize",
			Subsystem: "store",
			Name:      "duration_seconds",
			Help:      "Duration of record store calls",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{
			"backend",
			"function",
		},
	)
}

// Observe records one store call. Backends call it as
// defer fractionalize.Observe("sql", "Count", time.Now(), &err).
func Observe(backend, function string, start time.Time, err *error) {
	initPrometheusMetrics()

	prometheusStoreCalls.WithLabelValues(backend, function).Inc()
	prometheusStoreDuration.WithLabelValues(backend, function).Observe(time.Since(start).Seconds())

	if err != nil && *err != nil {
		prometheusStoreErrors.WithLabelValues(backend, function).Inc()
	}
}
