package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/valcoin/internal/domain"
)

// ApplicabilityChecker answers "can rule R be applied from A to B right
// now?". The same instance backs the read-only dry run and the gate the
// ledger writer re-runs inside its database transaction, so the two paths
// can never diverge.
type ApplicabilityChecker struct {
	rules            RuleRepository
	users            UserRepository
	disciplines      DisciplineRepository
	transactions     TransactionRepository
	lowBalanceWarnAt decimal.Decimal
}

// NewApplicabilityChecker creates a new ApplicabilityChecker.
// lowBalanceWarnAt is the residual balance below which a debit raises a
// warning without blocking.
func NewApplicabilityChecker(
	rules RuleRepository,
	users UserRepository,
	disciplines DisciplineRepository,
	transactions TransactionRepository,
	lowBalanceWarnAt decimal.Decimal,
) *ApplicabilityChecker {
	return &ApplicabilityChecker{
		rules:            rules,
		users:            users,
		disciplines:      disciplines,
		transactions:     transactions,
		lowBalanceWarnAt: lowBalanceWarnAt,
	}
}

// CheckInput identifies the rule application being validated.
// DestinationUserID and DisciplineID are optional in the dry run.
type CheckInput struct {
	RuleID            string
	OriginUserID      string
	DestinationUserID string
	DisciplineID      string
}

// Check runs the full applicability check outside any transaction,
// collecting every failure instead of stopping at the first one.
func (c *ApplicabilityChecker) Check(ctx context.Context, input CheckInput, now time.Time) (*domain.ApplicabilityReport, error) {
	return c.CheckTx(ctx, nil, input, now)
}

// CheckTx runs the same check reading current rows through tx. The ledger
// writer calls it after locking the involved user rows, so the limit
// aggregate cannot race with a concurrent application of the same rule.
func (c *ApplicabilityChecker) CheckTx(ctx context.Context, tx Transaction, input CheckInput, now time.Time) (*domain.ApplicabilityReport, error) {
	rule, err := c.rules.GetByID(ctx, tx, input.RuleID)
	if err != nil {
		return nil, err
	}

	report := &domain.ApplicabilityReport{CanApply: true}

	if !rule.Active {
		report.Fail("rule is inactive")
	}

	origin, err := c.checkUser(ctx, tx, report, input.OriginUserID, rule.OriginRole, "origin")
	if err != nil {
		return nil, err
	}

	var destination *domain.User
	if input.DestinationUserID != "" {
		destination, err = c.checkUser(ctx, tx, report, input.DestinationUserID, rule.DestinationRole, "destination")
		if err != nil {
			return nil, err
		}
	}

	if origin != nil && destination != nil && origin.ID == destination.ID {
		report.Fail("origin and destination must be different users")
	}

	if destination != nil && !rule.AllowsYear(destination.SchoolYear) {
		report.Fail("destination school year is outside the rule bounds")
	}

	if rule.PerDiscipline {
		if err := c.checkDiscipline(ctx, tx, report, input.DisciplineID, destination); err != nil {
			return nil, err
		}
	}

	if rule.Direction == domain.DirectionDebit && origin != nil {
		if !origin.CanCover(rule.Amount) {
			report.Fail(fmt.Sprintf("insufficient balance (%s/%s)", origin.Balance, rule.Amount))
		} else if origin.Balance.Sub(rule.Amount).LessThan(c.lowBalanceWarnAt) {
			report.Warn("balance will be low after this transaction")
		}
	}

	limits, err := c.CheckLimit(ctx, tx, rule, input, now)
	if err != nil {
		return nil, err
	}

	report.Limits = *limits
	if !limits.Allowed {
		report.Fail(limits.Message)
	}

	return report, nil
}

func (c *ApplicabilityChecker) checkUser(ctx context.Context, tx Transaction, report *domain.ApplicabilityReport, id string, allowed domain.Role, side string) (*domain.User, error) {
	user, err := c.users.GetByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			report.Fail(fmt.Sprintf("%s user not found: %s", side, id))
			return nil, nil
		}

		return nil, err
	}

	if !user.Active {
		report.Fail(fmt.Sprintf("%s user is inactive: %s", side, id))
	}

	if user.Role != allowed {
		report.Fail(fmt.Sprintf("%s must be %s, got %s", side, allowed, user.Role))
	}

	return user, nil
}

func (c *ApplicabilityChecker) checkDiscipline(ctx context.Context, tx Transaction, report *domain.ApplicabilityReport, disciplineID string, destination *domain.User) error {
	if disciplineID == "" {
		report.Fail("discipline is required for this rule")
		return nil
	}

	discipline, err := c.disciplines.GetByID(ctx, tx, disciplineID)
	if err != nil {
		if errors.Is(err, domain.ErrDisciplineNotFound) {
			report.Fail(fmt.Sprintf("discipline not found: %s", disciplineID))
			return nil
		}

		return err
	}

	if !discipline.Active {
		report.Fail(fmt.Sprintf("discipline is inactive: %s", disciplineID))
		return nil
	}

	if destination != nil {
		enrolled, err := c.disciplines.IsEnrolled(ctx, tx, destination.ID, disciplineID)
		if err != nil {
			return err
		}

		if !enrolled {
			report.Fail("student is not enrolled in the discipline")
		}
	}

	return nil
}

// CheckLimit computes the rule's remaining period-limit budget for one
// origin (and destination/discipline, when the rule scopes them). Rules
// without a period limit always pass with their full budget.
func (c *ApplicabilityChecker) CheckLimit(ctx context.Context, tx Transaction, rule *domain.TransactionRule, input CheckInput, now time.Time) (*domain.LimitState, error) {
	if !rule.HasPeriodLimit() {
		return &domain.LimitState{
			Allowed:   true,
			Remaining: rule.LimitAmount,
			Total:     rule.LimitAmount,
			Period:    rule.LimitPeriod,
		}, nil
	}

	filter := domain.RuleUsageFilter{
		RuleID:            rule.ID,
		OriginUserID:      input.OriginUserID,
		DestinationUserID: input.DestinationUserID,
		Since:             rule.LimitPeriod.WindowStart(now),
		Until:             now,
	}
	if rule.PerDiscipline {
		filter.DisciplineID = input.DisciplineID
	}

	used, err := c.transactions.SumRuleUsage(ctx, tx, filter)
	if err != nil {
		return nil, err
	}

	remaining := rule.LimitAmount.Sub(used)

	state := &domain.LimitState{
		Allowed:   true,
		Remaining: remaining,
		Total:     rule.LimitAmount,
		Period:    rule.LimitPeriod,
	}

	if remaining.LessThan(rule.Amount) {
		state.Allowed = false
		state.Message = fmt.Sprintf(
			"limit of %s ValCoins per %s exceeded, already used %s",
			rule.LimitAmount, rule.LimitPeriod, used,
		)
	}

	return state, nil
}
