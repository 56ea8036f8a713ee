// Package ops records routine operational events, such as rejected issuance
// attempts, without ever failing the caller. Events are sampled and shed while
// the store is unhealthy.
package ops

import (
	"context"
	"log/slog"
	"time"

	audit "relief/pkg/platform/audit"
)

// Tracker writes ops events best-effort.
type Tracker struct {
	store   audit.Store
	sampler *Sampler
	breaker *CircuitBreaker
	metrics *Metrics
	logger  *slog.Logger
}

type Option func(*Tracker)

func WithSampler(s *Sampler) Option {
	return func(t *Tracker) { t.sampler = s }
}

func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(t *Tracker) { t.breaker = cb }
}

func WithMetrics(m *Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// New creates a tracker that keeps every event and opens after five failures.
func New(store audit.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:   store,
		sampler: NewSampler(1.0),
		breaker: NewCircuitBreaker(5, time.Minute),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track records event if sampled and the store is healthy. It never returns
// an error; failures only show up in metrics and logs.
func (t *Tracker) Track(ctx context.Context, event audit.Event) {
	if !t.sampler.ShouldSample(event.Action) {
		t.metrics.incSampled()
		return
	}
	if !t.breaker.Allow() {
		t.metrics.incDropped()
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Category = audit.CategoryOperations

	if err := t.store.Append(ctx, event); err != nil {
		t.breaker.RecordFailure()
		t.metrics.incPersistFailures()
		t.metrics.setBreakerState(t.breaker.IsOpen())
		if t.logger != nil {
			t.logger.WarnContext(ctx, "ops audit event dropped",
				"action", event.Action,
				"error", err,
			)
		}
		return
	}
	t.breaker.RecordSuccess()
	t.metrics.setBreakerState(false)
	t.metrics.incTracked()
}
