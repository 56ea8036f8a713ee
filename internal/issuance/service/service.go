// Package service implements the voucher issuance engine: the guarded issue
// operation, the administrative operations and the read accessors.
//
// Every issue and administrative call runs inside ports.StoreTx.RunInTx, so
// calls never overlap and a failed call leaves engine state untouched.
// Collaborators are injected once at construction and never hold a reference
// back into the engine.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"relief/internal/issuance/metrics"
	"relief/internal/issuance/models"
	"relief/internal/issuance/policy"
	"relief/internal/issuance/ports"
	id "relief/pkg/domain"
	dErrors "relief/pkg/domain-errors"
	"relief/pkg/platform/audit"
	"relief/pkg/platform/sentinel"
)

const tracerName = "relief/internal/issuance"

// OpsTracker records sampled operational events. It never fails the caller.
type OpsTracker interface {
	Track(ctx context.Context, event audit.Event)
}

// SecurityEmitter records security-relevant events asynchronously.
type SecurityEmitter interface {
	Emit(ctx context.Context, event audit.Event)
}

// Collaborators are the external capabilities the engine consumes.
type Collaborators struct {
	Ledger   ports.TokenLedger
	Registry ports.BeneficiaryRegistry
	Oracle   ports.EventOracle
	Audit    ports.AuditLogger
	Clock    ports.Clock

	// Custodian is the engine's own account whose balance funds each mint.
	Custodian id.Principal
}

func (c Collaborators) validate() error {
	switch {
	case c.Ledger == nil:
		return errors.New("token ledger is required")
	case c.Registry == nil:
		return errors.New("beneficiary registry is required")
	case c.Oracle == nil:
		return errors.New("event oracle is required")
	case c.Audit == nil:
		return errors.New("audit logger is required")
	case c.Clock == nil:
		return errors.New("clock is required")
	case c.Custodian.IsNil():
		return errors.New("custodian principal is required")
	}
	return nil
}

// Service orchestrates issuance against the engine store and collaborators.
type Service struct {
	tx    ports.StoreTx
	reads ports.Store

	ledger    ports.TokenLedger
	registry  ports.BeneficiaryRegistry
	oracle    ports.EventOracle
	auditor   ports.AuditLogger
	clock     ports.Clock
	custodian id.Principal

	logger   *slog.Logger
	metrics  *metrics.Metrics
	ops      OpsTracker
	security SecurityEmitter
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithOpsTracker records rejected issuances as sampled operational events.
func WithOpsTracker(t OpsTracker) Option {
	return func(s *Service) {
		s.ops = t
	}
}

// WithSecurityEmitter records unauthorized calls as security events.
func WithSecurityEmitter(e SecurityEmitter) Option {
	return func(s *Service) {
		s.security = e
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service. tx serializes mutating calls; reads serves the
// read accessors outside any transaction.
func New(tx ports.StoreTx, reads ports.Store, c Collaborators, opts ...Option) (*Service, error) {
	if tx == nil || reads == nil {
		return nil, errors.New("issuance store is required")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	s := &Service{
		tx:        tx,
		reads:     reads,
		ledger:    c.Ledger,
		registry:  c.Registry,
		oracle:    c.Oracle,
		auditor:   c.Audit,
		clock:     c.Clock,
		custodian: c.Custodian,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s, nil
}

// authorize checks caller against the current admin, then against role grants.
func (s *Service) authorize(ctx context.Context, store ports.Store, state *models.EngineState, caller id.Principal, action policy.Action) error {
	if policy.IsAdmin(state.Admin, caller) {
		return nil
	}
	if !caller.IsNil() {
		for _, role := range policy.RolesGranting(action) {
			ok, err := store.HasRole(ctx, role, caller)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check role grant")
			}
			if ok {
				return nil
			}
		}
	}
	s.emitSecurity(ctx, caller, action)
	return dErrors.New(dErrors.CodeUnauthorized, "caller is not permitted to "+string(action))
}

func (s *Service) emitSecurity(ctx context.Context, caller id.Principal, action policy.Action) {
	if s.security == nil {
		return
	}
	s.security.Emit(ctx, audit.Event{
		Principal: caller,
		Action:    string(audit.EventUnauthorizedAttempt),
		Timestamp: time.Now(),
		Data:      map[string]string{"attempted_action": string(action)},
	})
}

// loadState reads the engine state inside a transaction.
func loadState(ctx context.Context, store ports.Store) (*models.EngineState, error) {
	state, err := store.LoadState(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load engine state")
	}
	return state, nil
}

// storageFailure keeps results inside the engine's outcome set. Store faults
// and aborted transactions come back as external failures with the cause
// still wrapped; other coded errors pass through untouched.
func storageFailure(err error, message string) error {
	var de *dErrors.Error
	if errors.As(err, &de) && de.Code != dErrors.CodeInternal && de.Code != dErrors.CodeTimeout {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeExternalFailure, message)
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}

// outcome labels a result for metrics and logs.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(dErrors.CodeOf(err))
}

// observe times a collaborator call and records it on the current span.
func (s *Service) observe(ctx context.Context, port string, start time.Time, err error) {
	s.metrics.ObserveCollaboratorLatency(port, time.Since(start))
	span := trace.SpanFromContext(ctx)
	span.AddEvent("collaborator."+port, trace.WithAttributes(
		attribute.Bool("error", err != nil),
		attribute.Int64("duration_us", time.Since(start).Microseconds()),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
	}
	span.End()
}
