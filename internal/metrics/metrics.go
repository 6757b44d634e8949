// Package metrics registers the application's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homeledger_http_requests_total",
		Help: "HTTP requests by method, path pattern and status.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "homeledger_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// SettlementResolutions counts full settlement-resolver runs.
	SettlementResolutions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homeledger_settlement_resolutions_total",
		Help: "Settlement resolver invocations.",
	})

	// BalanceComputations counts balance-aggregator runs.
	BalanceComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homeledger_balance_computations_total",
		Help: "Balance aggregator invocations.",
	})

	// PaymentsRecorded counts recorded bill payments.
	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homeledger_payments_recorded_total",
		Help: "Bill payment events recorded.",
	})
)

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// statusRecorder mirrors middleware.statusRecorder; duplicated to keep
// this package free of internal imports.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument records request count and latency for a handler. The path
// label uses the route pattern, not the raw URL, to bound cardinality.
func Instrument(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		requestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}
