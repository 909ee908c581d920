package httpimpl

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusFractionalizeHTTPRequests *prometheus.CounterVec
	prometheusFractionalizeHTTPDuration *prometheus.HistogramVec
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusFractionalizeHTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fractionalize",
			Subsystem: "http",
			Name:      "requests",
			Help:      "Number of API requests",
		},
		[]string{
			"route",  // registered route path
			"status", // HTTP status code of the response
		},
	)

	prometheusFractionalizeHTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fractionalize",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{
			"route",
		},
	)
}

// metricsMiddleware counts every API response by route and status.
func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		status := c.Response().Status

		if err != nil && !c.Response().Committed {
			status = http.StatusInternalServerError

			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}
		}

		prometheusFractionalizeHTTPRequests.WithLabelValues(c.Path(), strconv.Itoa(status)).Inc()
		prometheusFractionalizeHTTPDuration.WithLabelValues(c.Path()).Observe(time.Since(start).Seconds())

		return err
	}
}
