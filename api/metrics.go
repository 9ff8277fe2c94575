package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics
var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cashback_ledger_operations_total",
		Help: "Ledger commands by operation and outcome (ok, rejected, malformed)",
	}, []string{"operation", "outcome"})

	pendingCashback = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cashback_ledger_pending_cashback",
		Help: "Cashback credits scheduled but not yet applied",
	})

	totalBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cashback_ledger_total_balance",
		Help: "Sum of all live account balances",
	})

	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cashback_ledger_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cashback_ledger_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "route"})
)

// instrument records request count and latency labelled by chi route
// pattern, so path parameters do not explode cardinality.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			httpLatency.WithLabelValues(r.Method, routePattern(r)).Observe(v)
		}))

		next.ServeHTTP(ww, r)

		timer.ObserveDuration()
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpReqTotal.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(status)).Inc()
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
