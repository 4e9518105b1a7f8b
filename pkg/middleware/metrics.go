package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/quartermasters/nudge-engine/pkg/observability"
)

// HTTPMetrics returns middleware that records request counts and latency.
func HTTPMetrics(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			// Label by the matched ServeMux pattern, not the raw path:
			// /api/chat/{sessionId} would otherwise mint one series per
			// session. The mux fills in r.Pattern during ServeHTTP.
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(wrapped.statusCode), time.Since(start))
		})
	}
}
