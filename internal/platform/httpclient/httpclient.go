// Package httpclient builds the outbound HTTP client shared by collaborator
// adapters. Requests carry the caller's trace context.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 5 * time.Second

// New returns a client with an overall request timeout and an instrumented
// transport. A zero timeout uses the default.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
