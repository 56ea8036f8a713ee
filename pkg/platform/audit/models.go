package audit

import (
	"context"
	"time"

	id "relief/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// Categories drive retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers events that must never be lost: every value
	// movement and every change to issuance parameters.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers access violations and throttling.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that may be sampled.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	// Issuance
	EventVoucherIssued    AuditEvent = "voucher_issued"
	EventIssuanceRejected AuditEvent = "issuance_rejected"

	// Parameters and governance
	EventRuleSet          AuditEvent = "rule_set"
	EventEnginePaused     AuditEvent = "engine_paused"
	EventEngineUnpaused   AuditEvent = "engine_unpaused"
	EventMaxPerVictimSet  AuditEvent = "max_per_victim_set"
	EventMinSeveritySet   AuditEvent = "min_severity_set"
	EventAdminTransferred AuditEvent = "admin_transferred"
	EventRoleGranted      AuditEvent = "role_granted"
	EventRoleRevoked      AuditEvent = "role_revoked"

	// Access
	EventUnauthorizedAttempt AuditEvent = "unauthorized_attempt"
	EventRateLimitExceeded   AuditEvent = "rate_limit_exceeded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventVoucherIssued:    CategoryCompliance,
	EventRuleSet:          CategoryCompliance,
	EventEnginePaused:     CategoryCompliance,
	EventEngineUnpaused:   CategoryCompliance,
	EventMaxPerVictimSet:  CategoryCompliance,
	EventMinSeveritySet:   CategoryCompliance,
	EventAdminTransferred: CategoryCompliance,
	EventRoleGranted:      CategoryCompliance,
	EventRoleRevoked:      CategoryCompliance,

	EventUnauthorizedAttempt: CategorySecurity,
	EventRateLimitExceeded:   CategorySecurity,

	EventIssuanceRejected: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is one audit record. Data carries the event-specific fields as flat
// string pairs so every sink can persist it without schema changes.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Principal id.Principal
	Action    string
	RequestID string
	Data      map[string]string
}

// Severity levels for security events.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister reads back persisted events, most recent first.
type Lister interface {
	ListRecent(ctx context.Context, limit int) ([]Event, error)
	ListByPrincipal(ctx context.Context, principal id.Principal) ([]Event, error)
}
