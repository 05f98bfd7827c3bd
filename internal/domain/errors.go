package domain

import (
	"errors"
	"strings"
)

var (
	// Rule errors
	ErrRuleNotFound = errors.New("transaction rule not found")
	ErrRuleInactive = errors.New("transaction rule is inactive")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user is inactive")
	ErrSameUser     = errors.New("origin and destination must be different users")

	// Rule validation errors
	ErrInvalidDirection = errors.New("invalid transaction direction")
	ErrInvalidRole      = errors.New("invalid user role")

	// Applicability errors
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrLimitExceeded       = errors.New("period limit exceeded")
	ErrDisciplineRequired  = errors.New("discipline is required for this rule")
	ErrDisciplineNotFound  = errors.New("discipline not found")
	ErrNotEnrolled         = errors.New("student is not enrolled in the discipline")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrEmptyDescription    = errors.New("description is required")
	ErrAlreadyApproved     = errors.New("transaction already approved")
	ErrAlreadyRejected     = errors.New("transaction already rejected")
	ErrSystemGenerated     = errors.New("system-generated transaction is immutable")

	// Settings errors
	ErrVATSinkNotConfigured = errors.New("VAT settlement account is not configured")
	ErrSettingNotFound      = errors.New("setting not found")

	// Audit errors
	ErrLegadoNotFound = errors.New("legado record not found")
)

// NotApplicableError carries every reason a rule application was refused,
// so callers can surface the full diagnostic list unchanged.
type NotApplicableError struct {
	Reasons []string
}

func (e *NotApplicableError) Error() string {
	if len(e.Reasons) == 0 {
		return "rule is not applicable"
	}

	return strings.Join(e.Reasons, "; ")
}
