// Package observability holds the Prometheus metrics for nudge-engine.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	httpDuration     *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	chatResponseTime prometheus.Histogram
	chatDeflections  prometheus.Counter
	chatFallbacks    prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nudge_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nudge_http_requests_total",
				Help: "Total HTTP requests by route and status code.",
			},
			[]string{"route", "method", "status"},
		),
		chatResponseTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nudge_chat_response_seconds",
				Help:    "Wall time of assistant chat completions.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		chatDeflections: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "nudge_chat_deflections_total",
				Help: "Chat replies answered without escalating to human support.",
			},
		),
		chatFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "nudge_chat_fallbacks_total",
				Help: "Chat replies served from the apology fallback after a provider error.",
			},
		),
	}
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method, status string, d time.Duration) {
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
	m.httpRequests.WithLabelValues(route, method, status).Inc()
}

// RecordChatResponse records the wall time of one assistant reply.
func (m *Metrics) RecordChatResponse(d time.Duration) {
	m.chatResponseTime.Observe(d.Seconds())
}

// IncrDeflection increments the deflected-reply counter.
func (m *Metrics) IncrDeflection() {
	m.chatDeflections.Inc()
}

// IncrFallback increments the fallback-reply counter.
func (m *Metrics) IncrFallback() {
	m.chatFallbacks.Inc()
}
