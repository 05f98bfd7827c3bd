package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
)

// ApplyRuleRequest represents a request to apply a transaction rule.
// OriginUserID lets an admin apply on another user's behalf; it defaults
// to the authenticated caller.
type ApplyRuleRequest struct {
	OriginUserID      string `json:"origin_user_id,omitempty"`
	DestinationUserID string `json:"destination_user_id"`
	DisciplineID      string `json:"discipline_id,omitempty"`
	Description       string `json:"description,omitempty"`
	VATRateRef        string `json:"vat_rate_ref,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ApplyRuleRequest) ToUseCaseInput(ruleID, callerID string) usecase.ApplyRuleInput {
	origin := r.OriginUserID
	if origin == "" {
		origin = callerID
	}

	return usecase.ApplyRuleInput{
		RuleID:            ruleID,
		OriginUserID:      origin,
		DestinationUserID: r.DestinationUserID,
		DisciplineID:      r.DisciplineID,
		Description:       r.Description,
		VATRateRef:        r.VATRateRef,
	}
}

// CheckApplicabilityRequest represents a dry-run applicability check.
// OriginUserID defaults to the authenticated caller.
type CheckApplicabilityRequest struct {
	OriginUserID      string `json:"origin_user_id,omitempty"`
	DestinationUserID string `json:"destination_user_id,omitempty"`
	DisciplineID      string `json:"discipline_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CheckApplicabilityRequest) ToUseCaseInput(ruleID, callerID string) usecase.CheckInput {
	origin := r.OriginUserID
	if origin == "" {
		origin = callerID
	}

	return usecase.CheckInput{
		RuleID:            ruleID,
		OriginUserID:      origin,
		DestinationUserID: r.DestinationUserID,
		DisciplineID:      r.DisciplineID,
	}
}

// CreateTransactionRequest represents a request to create a manual
// transaction.
type CreateTransactionRequest struct {
	OriginUserID      string          `json:"origin_user_id"`
	DestinationUserID string          `json:"destination_user_id"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description"`
	VATRateRef        string          `json:"vat_rate_ref,omitempty"`
	Approve           bool            `json:"approve,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() usecase.ManualTransactionInput {
	return usecase.ManualTransactionInput{
		OriginUserID:      r.OriginUserID,
		DestinationUserID: r.DestinationUserID,
		Amount:            r.Amount,
		Description:       r.Description,
		VATRateRef:        r.VATRateRef,
		Approve:           r.Approve,
	}
}

// UpdateTransactionRequest represents an edit of a pending transaction.
type UpdateTransactionRequest struct {
	OriginUserID      string          `json:"origin_user_id"`
	DestinationUserID string          `json:"destination_user_id"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description"`
	VATRateRef        string          `json:"vat_rate_ref,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransactionRequest) ToUseCaseInput(id string) usecase.UpdateTransactionInput {
	return usecase.UpdateTransactionInput{
		ID:                id,
		OriginUserID:      r.OriginUserID,
		DestinationUserID: r.DestinationUserID,
		Amount:            r.Amount,
		Description:       r.Description,
		VATRateRef:        r.VATRateRef,
	}
}

// RejectTransactionRequest carries the rejection reason.
type RejectTransactionRequest struct {
	Reason string `json:"reason"`
}

// CreateRuleRequest represents a request to create a rule.
type CreateRuleRequest struct {
	Name            string             `json:"name"`
	Amount          decimal.Decimal    `json:"amount"`
	Direction       domain.Direction   `json:"direction"`
	OriginRole      domain.Role        `json:"origin_role"`
	DestinationRole domain.Role        `json:"destination_role"`
	LimitAmount     decimal.Decimal    `json:"limit_amount"`
	LimitPeriod     domain.LimitPeriod `json:"limit_period"`
	PerDiscipline   bool               `json:"per_discipline"`
	Category        string             `json:"category,omitempty"`
	VATRateRef      string             `json:"vat_rate_ref,omitempty"`
	YearMin         *int               `json:"year_min,omitempty"`
	YearMax         *int               `json:"year_max,omitempty"`
	Icon            string             `json:"icon,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateRuleRequest) ToUseCaseInput() usecase.CreateRuleInput {
	return usecase.CreateRuleInput{
		Name:            r.Name,
		Amount:          r.Amount,
		Direction:       r.Direction,
		OriginRole:      r.OriginRole,
		DestinationRole: r.DestinationRole,
		LimitAmount:     r.LimitAmount,
		LimitPeriod:     r.LimitPeriod,
		PerDiscipline:   r.PerDiscipline,
		Category:        r.Category,
		VATRateRef:      r.VATRateRef,
		YearMin:         r.YearMin,
		YearMax:         r.YearMax,
		Icon:            r.Icon,
	}
}

// UpdateRuleRequest represents a partial rule update. Omitted fields keep
// their current values.
type UpdateRuleRequest struct {
	Name            *string             `json:"name,omitempty"`
	Amount          *decimal.Decimal    `json:"amount,omitempty"`
	Direction       *domain.Direction   `json:"direction,omitempty"`
	OriginRole      *domain.Role        `json:"origin_role,omitempty"`
	DestinationRole *domain.Role        `json:"destination_role,omitempty"`
	LimitAmount     *decimal.Decimal    `json:"limit_amount,omitempty"`
	LimitPeriod     *domain.LimitPeriod `json:"limit_period,omitempty"`
	PerDiscipline   *bool               `json:"per_discipline,omitempty"`
	Category        *string             `json:"category,omitempty"`
	VATRateRef      *string             `json:"vat_rate_ref,omitempty"`
	YearMin         *int                `json:"year_min,omitempty"`
	YearMax         *int                `json:"year_max,omitempty"`
	Icon            *string             `json:"icon,omitempty"`
	Active          *bool               `json:"active,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateRuleRequest) ToUseCaseInput() usecase.UpdateRuleInput {
	return usecase.UpdateRuleInput{
		Name:            r.Name,
		Amount:          r.Amount,
		Direction:       r.Direction,
		OriginRole:      r.OriginRole,
		DestinationRole: r.DestinationRole,
		LimitAmount:     r.LimitAmount,
		LimitPeriod:     r.LimitPeriod,
		PerDiscipline:   r.PerDiscipline,
		Category:        r.Category,
		VATRateRef:      r.VATRateRef,
		YearMin:         r.YearMin,
		YearMax:         r.YearMax,
		Icon:            r.Icon,
		Active:          r.Active,
	}
}

// UpdateSettingsRequest carries raw setting values keyed by name.
type UpdateSettingsRequest map[string]json.RawMessage
