// Package compliance provides a fail-closed audit publisher for events that
// must never be lost.
//
// Emit is synchronous: the caller blocks until the store accepts the event and
// must fail its own operation when Emit returns an error.
//
// Use for: voucher_issued and every parameter change.
package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	audit "relief/pkg/platform/audit"
	"relief/pkg/requestcontext"
)

type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// New wraps store. In postgres mode store is the outbox-backed audit store.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Sentinel errors for events the publisher refuses before touching the store.
var (
	ErrMissingPrincipal = errors.New("compliance event requires a principal")
	ErrMissingAction    = errors.New("compliance event requires an action")
)

// Emit writes the event before returning. When ctx carries a transaction the
// outbox row commits or rolls back with the caller's state change.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	switch {
	case event.Principal.IsNil():
		return ErrMissingPrincipal
	case event.Action == "":
		return ErrMissingAction
	}

	start := time.Now()
	if event.Timestamp.IsZero() {
		event.Timestamp = start
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	event.Category = audit.CategoryCompliance

	err := p.store.Append(ctx, event)
	if err != nil {
		p.metrics.IncPersistFailures()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "compliance audit write failed, aborting operation",
				"action", event.Action,
				"principal", event.Principal,
				"request_id", event.RequestID,
				"error", err,
			)
		}
		return fmt.Errorf("append compliance event %s: %w", event.Action, err)
	}

	p.metrics.ObservePersistDuration(time.Since(start).Seconds())
	p.metrics.IncEventsEmitted()
	return nil
}
