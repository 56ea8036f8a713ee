// Package consumer materializes audit events published by the outbox relay
// into the queryable audit_events table.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "relief/pkg/platform/audit"
	"relief/pkg/platform/audit/store/postgres"
)

// EventStore persists consumed events idempotently.
type EventStore interface {
	AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error
}

// Fetcher is satisfied by *kgo.Client configured with a consumer group.
type Fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
}

// Materializer polls the audit topic and stores each event once.
type Materializer struct {
	fetcher Fetcher
	store   EventStore
	logger  *slog.Logger
}

func NewMaterializer(fetcher Fetcher, store EventStore, logger *slog.Logger) *Materializer {
	return &Materializer{fetcher: fetcher, store: store, logger: logger}
}

// Run consumes until ctx is cancelled or the client is closed.
func (m *Materializer) Run(ctx context.Context) error {
	for {
		fetches := m.fetcher.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for _, fe := range fetches.Errors() {
			if errors.Is(fe.Err, context.Canceled) {
				return ctx.Err()
			}
			m.logger.ErrorContext(ctx, "audit fetch failed",
				"topic", fe.Topic,
				"partition", fe.Partition,
				"error", fe.Err,
			)
		}
		var failed error
		fetches.EachRecord(func(rec *kgo.Record) {
			if failed != nil {
				return
			}
			failed = m.Handle(ctx, rec)
		})
		if failed != nil {
			return failed
		}
	}
}

// Handle stores one record. Malformed records are logged and skipped so they
// cannot block the partition; storage errors are returned.
func (m *Materializer) Handle(ctx context.Context, rec *kgo.Record) error {
	var payload postgres.Payload
	if err := json.Unmarshal(rec.Value, &payload); err != nil {
		m.logger.ErrorContext(ctx, "CRITICAL: failed to unmarshal audit payload",
			"offset", rec.Offset,
			"error", err,
		)
		return nil
	}
	eventID, err := uuid.Parse(payload.ID)
	if err != nil {
		m.logger.ErrorContext(ctx, "CRITICAL: failed to parse audit event ID",
			"offset", rec.Offset,
			"id", payload.ID,
			"error", err,
		)
		return nil
	}
	event, err := payload.ToEvent()
	if err != nil {
		m.logger.ErrorContext(ctx, "CRITICAL: malformed audit event",
			"event_id", eventID,
			"error", err,
		)
		return nil
	}
	return m.store.AppendWithID(ctx, eventID, event)
}
