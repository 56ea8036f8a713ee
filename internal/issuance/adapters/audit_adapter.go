package adapters

import (
	"context"
	"maps"

	"relief/internal/issuance/ports"
	id "relief/pkg/domain"
	"relief/pkg/platform/audit"
	"relief/pkg/requestcontext"
)

// CompliancePublisher is the fail-closed audit sink.
type CompliancePublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AuditAdapter implements ports.AuditLogger over the compliance publisher.
// With the PostgreSQL outbox store, the insert joins the engine transaction
// carried in ctx, so a rolled-back issuance leaves no audit row behind.
type AuditAdapter struct {
	publisher CompliancePublisher
}

// NewAuditAdapter creates a new audit adapter.
func NewAuditAdapter(publisher CompliancePublisher) ports.AuditLogger {
	return &AuditAdapter{publisher: publisher}
}

// LogEvent records eventType for principal, tagging it with the request id
// and request time when present.
func (a *AuditAdapter) LogEvent(ctx context.Context, principal id.Principal, eventType string, data map[string]string) error {
	return a.publisher.Emit(ctx, audit.Event{
		Principal: principal,
		Action:    eventType,
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: requestcontext.Now(ctx),
		Data:      maps.Clone(data),
	})
}
