package domain

import "github.com/shopspring/decimal"

// LimitState describes a rule's period-limit window for one origin.
type LimitState struct {
	Allowed   bool
	Remaining decimal.Decimal
	Total     decimal.Decimal
	Period    LimitPeriod
	Message   string
}

// ApplicabilityReport is the result of the dry-run applicability check.
// CanApply is true iff Errors is empty; Warnings never block.
type ApplicabilityReport struct {
	CanApply bool
	Errors   []string
	Warnings []string
	Limits   LimitState
}

// Fail records a hard error on the report.
func (r *ApplicabilityReport) Fail(reason string) {
	r.Errors = append(r.Errors, reason)
	r.CanApply = false
}

// Warn records a non-blocking warning on the report.
func (r *ApplicabilityReport) Warn(reason string) {
	r.Warnings = append(r.Warnings, reason)
}
