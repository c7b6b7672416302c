package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "worktime",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "HTTP requests handled, by route pattern and status code.",
	}, []string{"route", "status"})
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "worktime",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	operationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "worktime",
		Subsystem: "service",
		Name:      "errors_total",
		Help:      "Failed operations by error code.",
	}, []string{"code"})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, operationErrors)
}

// ObserveRequest records one handled HTTP request.
func ObserveRequest(route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// RecordError counts a failed operation by its error code.
func RecordError(code string) {
	if code == "" {
		return
	}
	operationErrors.WithLabelValues(code).Inc()
}
