package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
)

// RuleResponse represents a transaction rule in API responses.
type RuleResponse struct {
	ID              string             `json:"id"`
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
	Active          bool               `json:"active"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// RuleFromDomain converts a domain rule to a response.
func RuleFromDomain(r *domain.TransactionRule) *RuleResponse {
	return &RuleResponse{
		ID:              r.ID,
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
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// RulesFromDomain converts domain rules to responses.
func RulesFromDomain(rules []*domain.TransactionRule) []*RuleResponse {
	result := make([]*RuleResponse, len(rules))
	for i, r := range rules {
		result[i] = RuleFromDomain(r)
	}
	return result
}

// TransactionResponse represents a ledger row in API responses.
type TransactionResponse struct {
	ID                string                   `json:"id"`
	GroupID           string                   `json:"group_id"`
	OriginUserID      string                   `json:"origin_user_id"`
	DestinationUserID string                   `json:"destination_user_id"`
	Amount            decimal.Decimal          `json:"amount"`
	Direction         domain.Direction         `json:"direction"`
	Status            domain.TransactionStatus `json:"status"`
	OriginKind        domain.OriginKind        `json:"origin_kind"`
	Description       string                   `json:"description"`
	VATRateRef        string                   `json:"vat_rate_ref,omitempty"`
	RuleID            *string                  `json:"rule_id,omitempty"`
	DisciplineID      *string                  `json:"discipline_id,omitempty"`
	RejectionReason   string                   `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`

	// Enrichment fields, present on read-side listings.
	OriginName      string           `json:"origin_name,omitempty"`
	DestinationName string           `json:"destination_name,omitempty"`
	VATRate         *decimal.Decimal `json:"vat_rate,omitempty"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                t.ID,
		GroupID:           t.GroupID,
		OriginUserID:      t.OriginUserID,
		DestinationUserID: t.DestinationUserID,
		Amount:            t.Amount,
		Direction:         t.Direction,
		Status:            t.Status,
		OriginKind:        t.OriginKind,
		Description:       t.Description,
		VATRateRef:        t.VATRateRef,
		RuleID:            t.RuleID,
		DisciplineID:      t.DisciplineID,
		RejectionReason:   t.RejectionReason,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// TransactionFromEnriched converts an enriched row to a response.
func TransactionFromEnriched(t *usecase.EnrichedTransaction) *TransactionResponse {
	resp := TransactionFromDomain(t.Transaction)
	resp.OriginName = t.OriginName
	resp.DestinationName = t.DestinationName
	rate := t.VATRate
	resp.VATRate = &rate
	return resp
}

// TransactionsFromEnriched converts enriched rows to responses.
func TransactionsFromEnriched(rows []*usecase.EnrichedTransaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(rows))
	for i, t := range rows {
		result[i] = TransactionFromEnriched(t)
	}
	return result
}

// LimitStateResponse represents a rule's period-limit window.
type LimitStateResponse struct {
	Allowed   bool               `json:"allowed"`
	Remaining decimal.Decimal    `json:"remaining"`
	Total     decimal.Decimal    `json:"total"`
	Period    domain.LimitPeriod `json:"period,omitempty"`
	Message   string             `json:"message,omitempty"`
}

// LimitStateFromDomain converts a domain limit state to a response.
func LimitStateFromDomain(s domain.LimitState) LimitStateResponse {
	return LimitStateResponse{
		Allowed:   s.Allowed,
		Remaining: s.Remaining,
		Total:     s.Total,
		Period:    s.Period,
		Message:   s.Message,
	}
}

// ApplicabilityResponse represents the result of a dry-run check.
type ApplicabilityResponse struct {
	CanApply bool               `json:"can_apply"`
	Errors   []string           `json:"errors"`
	Warnings []string           `json:"warnings"`
	Limits   LimitStateResponse `json:"limits"`
}

// ApplicabilityFromDomain converts a domain report to a response.
func ApplicabilityFromDomain(r *domain.ApplicabilityReport) *ApplicabilityResponse {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	warnings := r.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return &ApplicabilityResponse{
		CanApply: r.CanApply,
		Errors:   errs,
		Warnings: warnings,
		Limits:   LimitStateFromDomain(r.Limits),
	}
}

// ApplicableRuleResponse pairs a rule with its remaining budget.
type ApplicableRuleResponse struct {
	Rule     *RuleResponse      `json:"rule"`
	CanApply bool               `json:"can_apply"`
	Limits   LimitStateResponse `json:"limits"`
}

// ApplicableRulesFromUseCase converts applicable rules to responses.
func ApplicableRulesFromUseCase(rules []*usecase.ApplicableRule) []*ApplicableRuleResponse {
	result := make([]*ApplicableRuleResponse, len(rules))
	for i, r := range rules {
		result[i] = &ApplicableRuleResponse{
			Rule:     RuleFromDomain(r.Rule),
			CanApply: r.CanApply,
			Limits:   LimitStateFromDomain(r.Limits),
		}
	}
	return result
}

// LegadoResponse represents a legado audit record in API responses.
type LegadoResponse struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	GrantorID   string    `json:"grantor_id"`
	RuleID      string    `json:"rule_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// LegadoFromDomain converts a domain legado to a response.
func LegadoFromDomain(l *domain.Legado) *LegadoResponse {
	return &LegadoResponse{
		ID:          l.ID,
		StudentID:   l.StudentID,
		GrantorID:   l.GrantorID,
		RuleID:      l.RuleID,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
	}
}

// LegadosFromDomain converts domain legados to responses.
func LegadosFromDomain(legados []*domain.Legado) []*LegadoResponse {
	result := make([]*LegadoResponse, len(legados))
	for i, l := range legados {
		result[i] = LegadoFromDomain(l)
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
