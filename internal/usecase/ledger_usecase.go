package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/infrastructure/metrics"
)

// LedgerUseCase performs every balance-mutating operation as one database
// transaction: re-validation against locked rows, primary row insertion,
// arithmetic balance updates, the VAT counter-transaction and category
// side effects all commit or roll back together. Cache invalidation runs
// after the commit and never reverses it.
type LedgerUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	users        UserRepository
	rules        RuleRepository
	transactions TransactionRepository
	settings     SettingsRepository
	checker      *ApplicabilityChecker
	invalidator  *CacheInvalidator
	hooks        CategoryHooks
	idGen        IDGenerator
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	retrier Retrier,
	users UserRepository,
	rules RuleRepository,
	transactions TransactionRepository,
	settings SettingsRepository,
	checker *ApplicabilityChecker,
	invalidator *CacheInvalidator,
	hooks CategoryHooks,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:    txManager,
		retrier:      retrier,
		users:        users,
		rules:        rules,
		transactions: transactions,
		settings:     settings,
		checker:      checker,
		invalidator:  invalidator,
		hooks:        hooks,
		idGen:        idGen,
		metrics:      m,
		logger:       logger,
	}
}

// ApplyRuleInput identifies the rule application to commit.
type ApplyRuleInput struct {
	RuleID            string
	OriginUserID      string
	DestinationUserID string
	DisciplineID      string
	Description       string
	VATRateRef        string
}

// ApplyRule validates and commits a rule-driven transfer. The primary row
// is created already approved; VAT and legado side effects ride the same
// transaction.
func (uc *LedgerUseCase) ApplyRule(ctx context.Context, input ApplyRuleInput) (*domain.Transaction, error) {
	var created *domain.Transaction

	err := uc.retrier.Retry(ctx, func() error {
		t, err := uc.applyRuleOnce(ctx, input)
		if err != nil {
			return err
		}

		created = t

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidator.InvalidateForTransaction(ctx, input.OriginUserID, input.DestinationUserID)

	return created, nil
}

func (uc *LedgerUseCase) applyRuleOnce(ctx context.Context, input ApplyRuleInput) (*domain.Transaction, error) {
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rule, err := uc.rules.GetByID(ctx, tx, input.RuleID)
	if err != nil {
		return nil, err
	}

	vatRef := input.VATRateRef
	if vatRef == "" {
		vatRef = rule.VATRateRef
	}

	rate, sinkID, err := uc.resolveVAT(ctx, tx, vatRef)
	if err != nil {
		return nil, err
	}

	// Lock every balance-affected row before validating. The origin lock
	// also serializes concurrent limit checks for the same rule window.
	err = uc.lockUsers(ctx, tx, input.OriginUserID, input.DestinationUserID, sinkID)
	if err != nil {
		return nil, err
	}

	report, err := uc.checker.CheckTx(ctx, tx, CheckInput{
		RuleID:            input.RuleID,
		OriginUserID:      input.OriginUserID,
		DestinationUserID: input.DestinationUserID,
		DisciplineID:      input.DisciplineID,
	}, now)
	if err != nil {
		return nil, err
	}

	if !report.CanApply {
		if uc.metrics != nil {
			uc.metrics.ApplyRejections.WithLabelValues("not_applicable").Inc()
		}

		return nil, &domain.NotApplicableError{Reasons: report.Errors}
	}

	primary := &domain.Transaction{
		ID:                uc.idGen.Generate(),
		GroupID:           uc.idGen.Generate(),
		OriginUserID:      input.OriginUserID,
		DestinationUserID: input.DestinationUserID,
		Amount:            rule.Amount,
		Direction:         rule.Direction,
		Status:            domain.StatusApproved,
		OriginKind:        domain.OriginUser,
		Description:       input.Description,
		VATRateRef:        vatRef,
		RuleID:            &rule.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if input.DisciplineID != "" {
		primary.DisciplineID = &input.DisciplineID
	}

	if err := primary.Validate(); err != nil {
		return nil, err
	}

	if err := uc.transactions.Create(ctx, tx, primary); err != nil {
		return nil, err
	}

	if err := uc.settleBalances(ctx, tx, primary, rate, sinkID, now); err != nil {
		return nil, err
	}

	if hook, ok := uc.hooks[rule.Category]; ok {
		err := hook(ctx, tx, &HookContext{Rule: rule, Transaction: primary, Now: now})
		if err != nil {
			return nil, fmt.Errorf("category hook %q: %w", rule.Category, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RulesApplied.WithLabelValues(rule.ID).Inc()
		uc.metrics.TransactionAmount.Observe(rule.Amount.InexactFloat64())
		uc.metrics.ApplyDuration.Observe(time.Since(now).Seconds())
	}

	uc.logger.Info().
		Str("transaction_id", primary.ID).
		Str("rule_id", rule.ID).
		Str("origin", primary.OriginUserID).
		Str("destination", primary.DestinationUserID).
		Msg("rule applied")

	return primary, nil
}

// ManualTransactionInput describes a transfer created outside the rule
// catalog. Approve commits the balance effect immediately; otherwise the
// row waits as PENDENTE for a later approval.
type ManualTransactionInput struct {
	OriginUserID      string
	DestinationUserID string
	Amount            decimal.Decimal
	Description       string
	VATRateRef        string
	Approve           bool
}

// CreateManualTransaction creates a manual transfer.
func (uc *LedgerUseCase) CreateManualTransaction(ctx context.Context, input ManualTransactionInput) (*domain.Transaction, error) {
	var created *domain.Transaction

	err := uc.retrier.Retry(ctx, func() error {
		t, err := uc.createManualOnce(ctx, input)
		if err != nil {
			return err
		}

		created = t

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidator.InvalidateForTransaction(ctx, input.OriginUserID, input.DestinationUserID)

	return created, nil
}

func (uc *LedgerUseCase) createManualOnce(ctx context.Context, input ManualTransactionInput) (*domain.Transaction, error) {
	now := time.Now().UTC()

	vatRef := input.VATRateRef
	if vatRef == "" {
		vatRef = domain.VATRateExempt
	}

	status := domain.StatusPending
	if input.Approve {
		status = domain.StatusApproved
	}

	t := &domain.Transaction{
		ID:                uc.idGen.Generate(),
		GroupID:           uc.idGen.Generate(),
		OriginUserID:      input.OriginUserID,
		DestinationUserID: input.DestinationUserID,
		Amount:            input.Amount,
		Direction:         domain.DirectionDebit,
		Status:            status,
		OriginKind:        domain.OriginUser,
		Description:       input.Description,
		VATRateRef:        vatRef,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rate, sinkID, err := uc.resolveVAT(ctx, tx, vatRef)
	if err != nil {
		return nil, err
	}

	if input.Approve {
		err = uc.lockUsers(ctx, tx, t.OriginUserID, t.DestinationUserID, sinkID)
		if err != nil {
			return nil, err
		}
	}

	origin, err := uc.requireActiveUser(ctx, tx, t.OriginUserID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.requireActiveUser(ctx, tx, t.DestinationUserID); err != nil {
		return nil, err
	}

	if input.Approve && !origin.CanCover(t.Amount) {
		return nil, domain.ErrInsufficientBalance
	}

	if err := uc.transactions.Create(ctx, tx, t); err != nil {
		return nil, err
	}

	if input.Approve {
		if err := uc.settleBalances(ctx, tx, t, rate, sinkID, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ManualTransactions.WithLabelValues(string(t.Status)).Inc()
		uc.metrics.TransactionAmount.Observe(t.Amount.InexactFloat64())
	}

	return t, nil
}

// ApproveTransaction transitions one PENDENTE row to APROVADA, applying
// its balance effect exactly once.
func (uc *LedgerUseCase) ApproveTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	var approved *domain.Transaction

	err := uc.retrier.Retry(ctx, func() error {
		t, err := uc.approveOnce(ctx, id)
		if err != nil {
			return err
		}

		approved = t

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidator.InvalidateForTransaction(ctx, approved.OriginUserID, approved.DestinationUserID)

	return approved, nil
}

func (uc *LedgerUseCase) approveOnce(ctx context.Context, id string) (*domain.Transaction, error) {
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := uc.transactions.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := t.CanApprove(); err != nil {
		return nil, err
	}

	rate, sinkID, err := uc.resolveVAT(ctx, tx, t.VATRateRef)
	if err != nil {
		return nil, err
	}

	err = uc.lockUsers(ctx, tx, t.OriginUserID, t.DestinationUserID, sinkID)
	if err != nil {
		return nil, err
	}

	origin, err := uc.users.GetByID(ctx, tx, t.OriginUserID)
	if err != nil {
		return nil, err
	}

	if !origin.CanCover(t.Amount) {
		return nil, domain.ErrInsufficientBalance
	}

	err = uc.transactions.UpdateStatus(ctx, tx, t.ID, domain.StatusApproved, "", now)
	if err != nil {
		return nil, err
	}

	if err := uc.settleBalances(ctx, tx, t, rate, sinkID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	t.Status = domain.StatusApproved
	t.UpdatedAt = now

	return t, nil
}

// RejectTransaction transitions one PENDENTE row to REJEITADA. Terminal,
// no balance effect, so no caches need invalidating.
func (uc *LedgerUseCase) RejectTransaction(ctx context.Context, id, reason string) (*domain.Transaction, error) {
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := uc.transactions.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := t.CanReject(); err != nil {
		return nil, err
	}

	err = uc.transactions.UpdateStatus(ctx, tx, t.ID, domain.StatusRejected, reason, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	t.Status = domain.StatusRejected
	t.RejectionReason = reason
	t.UpdatedAt = now

	return t, nil
}

// UpdateTransactionInput carries the editable fields of a pending row.
type UpdateTransactionInput struct {
	ID                string
	OriginUserID      string
	DestinationUserID string
	Amount            decimal.Decimal
	Description       string
	VATRateRef        string
}

// UpdateTransaction edits a pending user-created row. Approved rows and
// system-generated rows are immutable; status changes go through
// ApproveTransaction and RejectTransaction.
func (uc *LedgerUseCase) UpdateTransaction(ctx context.Context, input UpdateTransactionInput) (*domain.Transaction, error) {
	now := time.Now().UTC()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := uc.transactions.GetByIDForUpdate(ctx, tx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := t.CanModify(); err != nil {
		return nil, err
	}

	t.OriginUserID = input.OriginUserID
	t.DestinationUserID = input.DestinationUserID
	t.Amount = input.Amount
	t.Description = input.Description
	t.UpdatedAt = now
	if input.VATRateRef != "" {
		t.VATRateRef = input.VATRateRef
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.requireActiveUser(ctx, tx, t.OriginUserID); err != nil {
		return nil, err
	}

	if _, err := uc.requireActiveUser(ctx, tx, t.DestinationUserID); err != nil {
		return nil, err
	}

	if err := uc.transactions.Update(ctx, tx, t); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return t, nil
}

// DeleteTransaction removes a pending user-created row. The row is
// locked first so a concurrent approval cannot slip in between the
// modifiability check and the delete.
func (uc *LedgerUseCase) DeleteTransaction(ctx context.Context, id string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	t, err := uc.transactions.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := t.CanModify(); err != nil {
		return err
	}

	if err := uc.transactions.Delete(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.invalidator.InvalidateForTransaction(ctx, t.OriginUserID, t.DestinationUserID)

	return nil
}

// resolveVAT resolves a rate reference to its percentage and, when the
// rate is nonzero, the configured settlement account. A nonzero rate
// without a configured sink is a hard error.
func (uc *LedgerUseCase) resolveVAT(ctx context.Context, tx Transaction, vatRef string) (decimal.Decimal, string, error) {
	rates, err := uc.settings.GetVATRates(ctx, tx)
	if err != nil {
		return decimal.Zero, "", err
	}

	rate := rates.RateFor(vatRef)
	if !rate.IsPositive() {
		return decimal.Zero, "", nil
	}

	sinkID, err := uc.settings.GetVATSinkUserID(ctx, tx)
	if err != nil {
		return decimal.Zero, "", err
	}

	return rate, sinkID, nil
}

// lockUsers acquires FOR UPDATE locks on the given user rows in sorted
// id order so concurrent writers cannot deadlock.
func (uc *LedgerUseCase) lockUsers(ctx context.Context, tx Transaction, ids ...string) error {
	seen := make(map[string]bool, len(ids))

	var unique []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}

		seen[id] = true
		unique = append(unique, id)
	}

	sort.Strings(unique)

	users, err := uc.users.GetByIDsForUpdate(ctx, tx, unique)
	if err != nil {
		return err
	}

	if len(users) != len(unique) {
		return domain.ErrUserNotFound
	}

	return nil
}

// settleBalances moves the transaction amount origin -> destination with
// arithmetic column updates, then splits out the VAT portion destination
// -> sink as an immutable companion row. The deltas always sum to zero.
func (uc *LedgerUseCase) settleBalances(ctx context.Context, tx Transaction, t *domain.Transaction, rate decimal.Decimal, sinkID string, now time.Time) error {
	err := uc.users.AddToBalance(ctx, tx, t.OriginUserID, t.Amount.Neg(), now)
	if err != nil {
		return err
	}

	err = uc.users.AddToBalance(ctx, tx, t.DestinationUserID, t.Amount, now)
	if err != nil {
		return err
	}

	if !rate.IsPositive() {
		return nil
	}

	split := domain.SplitVAT(t.Amount, rate)
	if split.VAT.IsZero() {
		return nil
	}

	err = uc.users.AddToBalance(ctx, tx, t.DestinationUserID, split.VAT.Neg(), now)
	if err != nil {
		return err
	}

	err = uc.users.AddToBalance(ctx, tx, sinkID, split.VAT, now)
	if err != nil {
		return err
	}

	vatRow := &domain.Transaction{
		ID:                uc.idGen.Generate(),
		GroupID:           t.GroupID,
		OriginUserID:      t.DestinationUserID,
		DestinationUserID: sinkID,
		Amount:            split.VAT,
		Direction:         domain.DirectionDebit,
		Status:            domain.StatusApproved,
		OriginKind:        domain.OriginVATSettlement,
		Description:       fmt.Sprintf("[IVA %s%%] %s", rate, t.Description),
		VATRateRef:        domain.VATRateExempt,
		RuleID:            t.RuleID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := uc.transactions.Create(ctx, tx, vatRow); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.VATSettlements.Inc()
	}

	return nil
}

// IsValidationError reports whether err should map to a caller mistake
// rather than an infrastructure failure.
func IsValidationError(err error) bool {
	var notApplicable *domain.NotApplicableError
	if errors.As(err, &notApplicable) {
		return true
	}

	for _, target := range []error{
		domain.ErrRuleInactive,
		domain.ErrUserInactive,
		domain.ErrSameUser,
		domain.ErrInvalidAmount,
		domain.ErrEmptyDescription,
		domain.ErrInsufficientBalance,
		domain.ErrLimitExceeded,
		domain.ErrDisciplineRequired,
		domain.ErrNotEnrolled,
		domain.ErrAlreadyApproved,
		domain.ErrAlreadyRejected,
		domain.ErrSystemGenerated,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

func (uc *LedgerUseCase) requireActiveUser(ctx context.Context, tx Transaction, id string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserInactive, id)
	}

	return user, nil
}
