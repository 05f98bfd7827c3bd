package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a ledger row.
// PENDENTE -> APROVADA applies balance effects exactly once;
// PENDENTE -> REJEITADA is terminal with no balance effect.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDENTE"
	StatusApproved TransactionStatus = "APROVADA"
	StatusRejected TransactionStatus = "REJEITADA"
)

// OriginKind distinguishes user-intent rows from rows the ledger
// generates itself. System rows are created already approved and are
// immutable afterwards.
type OriginKind string

const (
	OriginUser          OriginKind = "USER"
	OriginVATSettlement OriginKind = "VAT_SETTLEMENT"
	OriginCounterparty  OriginKind = "COUNTERPARTY"
)

// VATRateExempt is the rate reference placed on VAT settlement rows so
// they never accrue VAT themselves.
const VATRateExempt = "isento"

// Transaction is a ledger entry. GroupID correlates a primary transfer
// with the companion rows generated for it.
type Transaction struct {
	ID                string
	GroupID           string
	OriginUserID      string
	DestinationUserID string
	Amount            decimal.Decimal
	Direction         Direction
	Status            TransactionStatus
	OriginKind        OriginKind
	Description       string
	VATRateRef        string
	RuleID            *string
	DisciplineID      *string
	RejectionReason   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks structural invariants of a new transaction.
func (t *Transaction) Validate() error {
	if t.OriginUserID == t.DestinationUserID {
		return ErrSameUser
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}

	return nil
}

// IsSystemGenerated reports whether the row was produced by the ledger
// itself rather than by a caller.
func (t *Transaction) IsSystemGenerated() bool {
	return t.OriginKind != OriginUser && t.OriginKind != ""
}

// CanApprove checks the PENDENTE -> APROVADA transition.
func (t *Transaction) CanApprove() error {
	switch t.Status {
	case StatusApproved:
		return ErrAlreadyApproved
	case StatusRejected:
		return ErrAlreadyRejected
	}

	return nil
}

// CanReject checks the PENDENTE -> REJEITADA transition.
func (t *Transaction) CanReject() error {
	switch t.Status {
	case StatusApproved:
		return ErrAlreadyApproved
	case StatusRejected:
		return ErrAlreadyRejected
	}

	return nil
}

// CanModify checks whether a caller may edit or delete the row.
// Approved rows and system rows are immutable.
func (t *Transaction) CanModify() error {
	if t.IsSystemGenerated() {
		return ErrSystemGenerated
	}

	if t.Status == StatusApproved {
		return ErrAlreadyApproved
	}

	return nil
}
