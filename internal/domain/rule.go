package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether a rule debits or credits the origin user.
type Direction string

const (
	DirectionDebit  Direction = "DEBITO"
	DirectionCredit Direction = "CREDITO"
)

// IsValid checks if the direction is a known direction.
func (d Direction) IsValid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// LimitPeriod is the unit of a rule's period limit window.
type LimitPeriod string

const (
	PeriodNone    LimitPeriod = "nenhum"
	PeriodDaily   LimitPeriod = "diario"
	PeriodWeekly  LimitPeriod = "semanal"
	PeriodMonthly LimitPeriod = "mensal"
	PeriodYearly  LimitPeriod = "anual"
)

// WindowStart returns the start of the limit window that contains now.
// Weeks start on Monday.
func (p LimitPeriod) WindowStart(now time.Time) time.Time {
	y, m, d := now.Date()

	switch p {
	case PeriodDaily:
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case PeriodWeekly:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}

		return time.Date(y, m, d-weekday+1, 0, 0, 0, 0, now.Location())
	case PeriodMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	case PeriodYearly:
		return time.Date(y, 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

// CategoryLegado marks rules whose application also inserts an append-only
// legado audit record.
const CategoryLegado = "Legado"

// TransactionRule is a named, pre-authorized transaction template.
type TransactionRule struct {
	ID              string
	Name            string
	Amount          decimal.Decimal
	Direction       Direction
	OriginRole      Role
	DestinationRole Role
	LimitAmount     decimal.Decimal
	LimitPeriod     LimitPeriod
	PerDiscipline   bool
	Category        string
	VATRateRef      string
	YearMin         *int
	YearMax         *int
	Icon            string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasPeriodLimit reports whether the rule carries a usable period limit.
func (r *TransactionRule) HasPeriodLimit() bool {
	return r.LimitAmount.IsPositive() && r.LimitPeriod != PeriodNone && r.LimitPeriod != ""
}

// AllowsYear checks the destination student's school year against the
// rule's optional bounds. A nil year passes when no bounds are set.
func (r *TransactionRule) AllowsYear(year *int) bool {
	if r.YearMin == nil && r.YearMax == nil {
		return true
	}

	if year == nil {
		return false
	}

	if r.YearMin != nil && *year < *r.YearMin {
		return false
	}

	if r.YearMax != nil && *year > *r.YearMax {
		return false
	}

	return true
}

// Validate checks structural rule invariants.
func (r *TransactionRule) Validate() error {
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !r.Direction.IsValid() {
		return ErrInvalidDirection
	}

	if !r.OriginRole.IsValid() || !r.DestinationRole.IsValid() {
		return ErrInvalidRole
	}

	return nil
}
