package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"relief/internal/issuance/models"
	id "relief/pkg/domain"
	dErrors "relief/pkg/domain-errors"
	"relief/pkg/platform/httputil"
	"relief/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mocks.go -package=mocks Service

// Service is the issuance engine as seen by the transport.
type Service interface {
	Issue(ctx context.Context, req models.IssueRequest) (*models.IssueResult, error)
	SetAllocationRule(ctx context.Context, caller id.Principal, rule models.AllocationRule) error
	Pause(ctx context.Context, caller id.Principal) error
	Unpause(ctx context.Context, caller id.Principal) error
	SetMaxPerVictim(ctx context.Context, caller id.Principal, limit uint64) error
	SetMinSeverity(ctx context.Context, caller id.Principal, threshold uint64) error
	TransferAdmin(ctx context.Context, caller, newAdmin id.Principal) error
	GrantRole(ctx context.Context, caller id.Principal, role models.Role, principal id.Principal) error
	RevokeRole(ctx context.Context, caller id.Principal, role models.Role, principal id.Principal) error

	Claim(ctx context.Context, beneficiary id.Principal, disasterID id.DisasterID) (*models.VictimClaim, error)
	Rule(ctx context.Context, disasterID id.DisasterID) (*models.AllocationRule, error)
	Voucher(ctx context.Context, voucherID id.VoucherID) (*models.IssuedVoucher, error)
	State(ctx context.Context) (*models.EngineState, error)
	HasRole(ctx context.Context, role models.Role, principal id.Principal) (bool, error)
	Height(ctx context.Context) id.Height
}

// Handler serves the issuance HTTP API.
type Handler struct {
	svc         Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
	rateLimit   func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithAuth installs the middleware that resolves the caller on write routes.
func WithAuth(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.requireAuth = mw }
}

// WithRateLimit installs the limiter applied to every route after authentication.
func WithRateLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) { h.rateLimit = mw }
}

func New(svc Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes. Reads are public; every state change requires
// an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		h.use(r, h.rateLimit)
		r.Get("/v1/state", h.handleState)
		r.Get("/v1/vouchers/{id}", h.handleGetVoucher)
		r.Get("/v1/claims/{beneficiary}/{disasterID}", h.handleGetClaim)
		r.Get("/v1/rules/{disasterID}", h.handleGetRule)
		r.Get("/v1/admin/roles/{role}/{principal}", h.handleGetRole)
	})

	r.Group(func(r chi.Router) {
		h.use(r, h.requireAuth)
		h.use(r, h.rateLimit)
		r.Post("/v1/vouchers", h.handleIssue)
		r.Put("/v1/rules/{disasterID}", h.handleSetRule)
		r.Post("/v1/admin/pause", h.handlePause)
		r.Post("/v1/admin/unpause", h.handleUnpause)
		r.Put("/v1/admin/max-per-victim", h.handleSetMaxPerVictim)
		r.Put("/v1/admin/min-severity", h.handleSetMinSeverity)
		r.Post("/v1/admin/transfer", h.handleTransferAdmin)
		r.Put("/v1/admin/roles/{role}/{principal}", h.handleGrantRole)
		r.Delete("/v1/admin/roles/{role}/{principal}", h.handleRevokeRole)
	})
}

func (h *Handler) use(r chi.Router, mw func(http.Handler) http.Handler) {
	if mw != nil {
		r.Use(mw)
	}
}

// caller returns the authenticated principal or writes a 401.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (id.Principal, bool) {
	ctx := r.Context()
	p := requestcontext.Principal(ctx)
	if p.IsNil() {
		h.logger.ErrorContext(ctx, "caller missing from context on authenticated route",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "authentication required"))
		return "", false
	}
	return p, true
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[IssueVoucherRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.svc.Issue(ctx, models.IssueRequest{
		Caller:     caller,
		Recipient:  id.Principal(req.Recipient),
		DisasterID: id.DisasterID(*req.DisasterID),
		Metadata:   req.Metadata,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toIssueResponse(res))
}

func (h *Handler) handleSetRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	disasterID, err := id.ParseDisasterID(chi.URLParam(r, "disasterID"))
	if err != nil {
		notFound(w, "allocation rule")
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetRuleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rule := models.AllocationRule{
		DisasterID:         disasterID,
		BaseAmount:         *req.BaseAmount,
		SeverityMultiplier: *req.SeverityMultiplier,
		MaxVictims:         req.MaxVictims,
		FundsAllocated:     req.FundsAllocated,
	}
	if err := h.svc.SetAllocationRule(ctx, caller, rule); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRuleResponse(&rule))
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.adminCall(w, r, h.svc.Pause)
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	h.adminCall(w, r, h.svc.Unpause)
}

func (h *Handler) handleSetMaxPerVictim(w http.ResponseWriter, r *http.Request) {
	h.setValue(w, r, h.svc.SetMaxPerVictim)
}

func (h *Handler) handleSetMinSeverity(w http.ResponseWriter, r *http.Request) {
	h.setValue(w, r, h.svc.SetMinSeverity)
}

func (h *Handler) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferAdminRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.svc.TransferAdmin(ctx, caller, id.Principal(*req.NewAdmin)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	h.roleCall(w, r, h.svc.GrantRole)
}

func (h *Handler) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	h.roleCall(w, r, h.svc.RevokeRole)
}

func (h *Handler) adminCall(w http.ResponseWriter, r *http.Request, fn func(context.Context, id.Principal) error) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context(), caller); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setValue(w http.ResponseWriter, r *http.Request, fn func(context.Context, id.Principal, uint64) error) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetValueRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := fn(ctx, caller, *req.Value); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) roleCall(w http.ResponseWriter, r *http.Request, fn func(context.Context, id.Principal, models.Role, id.Principal) error) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	role := models.Role(chi.URLParam(r, "role"))
	grantee := id.Principal(chi.URLParam(r, "principal"))
	if err := fn(r.Context(), caller, role, grantee); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.svc.State(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StateResponse{
		Admin:         state.Admin.String(),
		Paused:        state.Paused,
		TotalIssued:   state.TotalIssued,
		MaxPerVictim:  state.MaxPerVictim,
		MinSeverity:   state.MinSeverity,
		NextVoucherID: uint64(state.NextVoucherID),
		Height:        uint64(h.svc.Height(ctx)),
	})
}

func (h *Handler) handleGetVoucher(w http.ResponseWriter, r *http.Request) {
	voucherID, err := id.ParseVoucherID(chi.URLParam(r, "id"))
	if err != nil {
		notFound(w, "voucher")
		return
	}
	v, err := h.svc.Voucher(r.Context(), voucherID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if v == nil {
		notFound(w, "voucher")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VoucherResponse{
		ID:         uint64(v.ID),
		Recipient:  v.Recipient.String(),
		Amount:     v.Amount,
		DisasterID: uint64(v.DisasterID),
		IssuedAt:   uint64(v.IssuedAt),
	})
}

func (h *Handler) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	beneficiary, err := id.ParsePrincipal(chi.URLParam(r, "beneficiary"))
	if err != nil {
		notFound(w, "claim")
		return
	}
	disasterID, err := id.ParseDisasterID(chi.URLParam(r, "disasterID"))
	if err != nil {
		notFound(w, "claim")
		return
	}
	c, err := h.svc.Claim(ctx, beneficiary, disasterID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if c == nil {
		notFound(w, "claim")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ClaimResponse{
		Beneficiary: c.Beneficiary.String(),
		DisasterID:  uint64(c.DisasterID),
		Amount:      c.Amount,
		ClaimedAt:   uint64(c.ClaimedAt),
		ExpiresAt:   uint64(c.ExpiresAt),
		Expired:     c.ExpiredAt(h.svc.Height(ctx)),
		Metadata:    c.Metadata,
	})
}

func (h *Handler) handleGetRule(w http.ResponseWriter, r *http.Request) {
	disasterID, err := id.ParseDisasterID(chi.URLParam(r, "disasterID"))
	if err != nil {
		notFound(w, "allocation rule")
		return
	}
	rule, err := h.svc.Rule(r.Context(), disasterID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if rule == nil {
		notFound(w, "allocation rule")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRuleResponse(rule))
}

func (h *Handler) handleGetRole(w http.ResponseWriter, r *http.Request) {
	role, err := models.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		notFound(w, "role")
		return
	}
	principal, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		notFound(w, "role")
		return
	}
	granted, err := h.svc.HasRole(r.Context(), role, principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RoleResponse{
		Role:      string(role),
		Principal: principal.String(),
		Granted:   granted,
	})
}

func notFound(w http.ResponseWriter, what string) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, what+" not found"))
}
