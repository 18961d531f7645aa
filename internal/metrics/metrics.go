// Package metrics exposes request-level Prometheus instrumentation for
// the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/asaulyak/goit-pythonweb-hw-012/internal/router"
)

type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_http_requests_total",
			Help: "Count of handled HTTP requests.",
		}, []string{"method", "pattern", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contacts_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "pattern"}),
	}
}

// Handler serves the scrape endpoint for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusWriter struct {
	status int
	inner  http.ResponseWriter
}

func (sw *statusWriter) Header() http.Header { return sw.inner.Header() }

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.inner.WriteHeader(status)
}

func (sw *statusWriter) Write(b []byte) (int, error) { return sw.inner.Write(b) }

// Instrument records a counter and latency sample per request. The
// pattern label is the matched route, not the raw URL, to keep
// cardinality bounded.
func (m *Metrics) Instrument() router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{status: http.StatusOK, inner: w}
			start := time.Now()

			next.ServeHTTP(sw, r)

			pattern := r.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}

			m.requests.WithLabelValues(r.Method, pattern, strconv.Itoa(sw.status)).Inc()
			m.duration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		})
	}
}
