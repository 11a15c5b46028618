package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	unlockOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_unlock_outcomes_total",
			Help: "Total number of lead unlock attempts by outcome",
		},
		[]string{"outcome"},
	)

	leadsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_confirmed_total",
			Help: "Total number of leads confirmed via PIN",
		},
	)

	commissionCentsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commission_cents_released_total",
			Help: "Total referral commission released, in cents",
		},
	)

	pinFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pin_verification_failures_total",
			Help: "Total number of failed PIN verification attempts",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordUnlockOutcome(outcome string) {
	unlockOutcomes.WithLabelValues(outcome).Inc()
}

func RecordLeadConfirmed(commissionCents int) {
	leadsConfirmed.Inc()
	commissionCentsReleased.Add(float64(commissionCents))
}

func RecordPinFailure() {
	pinFailures.Inc()
}
