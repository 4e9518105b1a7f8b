// Package integrations holds the outbound HTTP clients for Shopify, Twilio
// and SendGrid. Clients are constructed once in main and injected; they never
// read the environment at call time.
package integrations

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const defaultRequestTimeout = 15 * time.Second

// newBreaker creates a circuit breaker for one upstream service. Trips after
// 5+ requests with a 60% failure ratio, recovers through 3 half-open probes.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultRequestTimeout}
}
