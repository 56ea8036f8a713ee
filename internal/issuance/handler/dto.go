package handler

import (
	validation "github.com/jellydator/validation"

	"relief/internal/issuance/models"
	dErrors "relief/pkg/domain-errors"
)

// Request bodies validate only their shape. Recipient, metadata and principal
// values are judged by the service so its check order decides the outcome.
// Metadata is opaque bytes and travels base64-encoded.

type IssueVoucherRequest struct {
	Recipient  string  `json:"recipient"`
	DisasterID *uint64 `json:"disaster_id"`
	Metadata   []byte  `json:"metadata"`
}

func (r *IssueVoucherRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(r,
		validation.Field(&r.DisasterID, validation.NotNil),
	))
}

type SetRuleRequest struct {
	BaseAmount         *uint64 `json:"base_amount"`
	SeverityMultiplier *uint64 `json:"severity_multiplier"`
	MaxVictims         uint64  `json:"max_victims"`
	FundsAllocated     uint64  `json:"funds_allocated"`
}

func (r *SetRuleRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(r,
		validation.Field(&r.BaseAmount, validation.NotNil),
		validation.Field(&r.SeverityMultiplier, validation.NotNil),
	))
}

// SetValueRequest carries the new cap or severity threshold.
type SetValueRequest struct {
	Value *uint64 `json:"value"`
}

func (r *SetValueRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(r,
		validation.Field(&r.Value, validation.NotNil),
	))
}

type TransferAdminRequest struct {
	NewAdmin *string `json:"new_admin"`
}

func (r *TransferAdminRequest) Validate() error {
	return wrapValidation(validation.ValidateStruct(r,
		validation.Field(&r.NewAdmin, validation.NotNil),
	))
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
}

type IssueVoucherResponse struct {
	VoucherID  uint64 `json:"voucher_id"`
	Amount     uint64 `json:"amount"`
	DisasterID uint64 `json:"disaster_id"`
	Recipient  string `json:"recipient"`
	ClaimedAt  uint64 `json:"claimed_at"`
	ExpiresAt  uint64 `json:"expires_at"`
}

func toIssueResponse(res *models.IssueResult) IssueVoucherResponse {
	return IssueVoucherResponse{
		VoucherID:  uint64(res.VoucherID),
		Amount:     res.Amount,
		DisasterID: uint64(res.DisasterID),
		Recipient:  res.Recipient.String(),
		ClaimedAt:  uint64(res.ClaimedAt),
		ExpiresAt:  uint64(res.ExpiresAt),
	}
}

type ClaimResponse struct {
	Beneficiary string `json:"beneficiary"`
	DisasterID  uint64 `json:"disaster_id"`
	Amount      uint64 `json:"amount"`
	ClaimedAt   uint64 `json:"claimed_at"`
	ExpiresAt   uint64 `json:"expires_at"`
	Expired     bool   `json:"expired"`
	Metadata    []byte `json:"metadata"`
}

type RuleResponse struct {
	DisasterID         uint64 `json:"disaster_id"`
	BaseAmount         uint64 `json:"base_amount"`
	SeverityMultiplier uint64 `json:"severity_multiplier"`
	MaxVictims         uint64 `json:"max_victims"`
	FundsAllocated     uint64 `json:"funds_allocated"`
}

func toRuleResponse(r *models.AllocationRule) RuleResponse {
	return RuleResponse{
		DisasterID:         uint64(r.DisasterID),
		BaseAmount:         r.BaseAmount,
		SeverityMultiplier: r.SeverityMultiplier,
		MaxVictims:         r.MaxVictims,
		FundsAllocated:     r.FundsAllocated,
	}
}

type VoucherResponse struct {
	ID         uint64 `json:"id"`
	Recipient  string `json:"recipient"`
	Amount     uint64 `json:"amount"`
	DisasterID uint64 `json:"disaster_id"`
	IssuedAt   uint64 `json:"issued_at"`
}

type StateResponse struct {
	Admin         string `json:"admin"`
	Paused        bool   `json:"paused"`
	TotalIssued   uint64 `json:"total_issued"`
	MaxPerVictim  uint64 `json:"max_per_victim"`
	MinSeverity   uint64 `json:"min_severity"`
	NextVoucherID uint64 `json:"next_voucher_id"`
	Height        uint64 `json:"height"`
}

type RoleResponse struct {
	Role      string `json:"role"`
	Principal string `json:"principal"`
	Granted   bool   `json:"granted"`
}
