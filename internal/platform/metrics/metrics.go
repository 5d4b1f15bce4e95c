// Package metrics registers the application-wide Prometheus collectors.
// Feature packages keep their own collectors next to their services; this
// package holds cross-cutting HTTP metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the shared Prometheus metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	AuthDenials     *prometheus.CounterVec
}

// New creates and registers all shared metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vowline_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
		AuthDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vowline_auth_denials_total",
			Help: "Guard denials by reason.",
		}, []string{"reason"}),
	}
}

// IncDenial records a guard denial.
func (m *Metrics) IncDenial(reason string) {
	if m == nil {
		return
	}
	m.AuthDenials.WithLabelValues(reason).Inc()
}

// Latency is the HTTP middleware observing request durations.
func (m *Metrics) Latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.RequestDuration.WithLabelValues(r.Method, statusClass(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
