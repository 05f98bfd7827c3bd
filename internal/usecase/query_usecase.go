package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/valcoin/internal/domain"
)

// TimeFilter is a named listing shortcut.
type TimeFilter string

const (
	FilterToday     TimeFilter = "today"
	FilterThisWeek  TimeFilter = "week"
	FilterThisMonth TimeFilter = "month"
)

// EnrichedTransaction is a ledger row joined with display names and the
// resolved VAT percentage for the read side.
type EnrichedTransaction struct {
	*domain.Transaction
	OriginName      string
	DestinationName string
	VATRate         decimal.Decimal
}

// TransactionQueryUseCase is the read side of the ledger: listing,
// filtering and enrichment, no mutation. Enrichment is pure, so repeated
// calls over the same rows yield identical output.
type TransactionQueryUseCase struct {
	transactions TransactionRepository
	users        UserRepository
	settings     SettingsRepository
	legados      LegadoRepository
}

// NewTransactionQueryUseCase creates a new TransactionQueryUseCase.
func NewTransactionQueryUseCase(
	transactions TransactionRepository,
	users UserRepository,
	settings SettingsRepository,
	legados LegadoRepository,
) *TransactionQueryUseCase {
	return &TransactionQueryUseCase{
		transactions: transactions,
		users:        users,
		settings:     settings,
		legados:      legados,
	}
}

// ListInput selects ledger rows by named shortcut or explicit range.
// System-generated companion rows are excluded.
type ListInput struct {
	TimeFilter TimeFilter
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

// List returns enriched user-intent rows, newest first.
func (uc *TransactionQueryUseCase) List(ctx context.Context, input ListInput) ([]*EnrichedTransaction, error) {
	filter := domain.TransactionFilter{
		Limit:  normalizeLimit(input.Limit),
		Offset: max(input.Offset, 0),
	}

	now := time.Now().UTC()

	switch input.TimeFilter {
	case FilterToday:
		since := domain.PeriodDaily.WindowStart(now)
		filter.Since = &since
	case FilterThisWeek:
		since := domain.PeriodWeekly.WindowStart(now)
		filter.Since = &since
	case FilterThisMonth:
		since := domain.PeriodMonthly.WindowStart(now)
		filter.Since = &since
	default:
		filter.Since = input.StartDate
		filter.Until = input.EndDate
	}

	rows, err := uc.transactions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return uc.Enrich(ctx, rows)
}

// Get returns one enriched row by id.
func (uc *TransactionQueryUseCase) Get(ctx context.Context, id string) (*EnrichedTransaction, error) {
	row, err := uc.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	enriched, err := uc.Enrich(ctx, []*domain.Transaction{row})
	if err != nil {
		return nil, err
	}

	return enriched[0], nil
}

// GetGroup resolves a transaction to its group and returns every row
// sharing that group, companions included, for reconciliation.
func (uc *TransactionQueryUseCase) GetGroup(ctx context.Context, transactionID string) ([]*EnrichedTransaction, error) {
	row, err := uc.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	rows, err := uc.transactions.ListByGroup(ctx, row.GroupID)
	if err != nil {
		return nil, err
	}

	return uc.Enrich(ctx, rows)
}

// Enrich joins display names and VAT percentages onto raw rows. Unknown
// users keep an empty name; unknown VAT references resolve to zero.
func (uc *TransactionQueryUseCase) Enrich(ctx context.Context, rows []*domain.Transaction) ([]*EnrichedTransaction, error) {
	if len(rows) == 0 {
		return []*EnrichedTransaction{}, nil
	}

	seen := make(map[string]bool)

	var ids []string
	for _, row := range rows {
		for _, id := range []string{row.OriginUserID, row.DestinationUserID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	names, err := uc.users.GetNamesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	rates, err := uc.settings.GetVATRates(ctx, nil)
	if err != nil {
		return nil, err
	}

	enriched := make([]*EnrichedTransaction, 0, len(rows))
	for _, row := range rows {
		enriched = append(enriched, &EnrichedTransaction{
			Transaction:     row,
			OriginName:      names[row.OriginUserID],
			DestinationName: names[row.DestinationUserID],
			VATRate:         rates.RateFor(row.VATRateRef),
		})
	}

	return enriched, nil
}

// ListLegados returns the append-only legado audit trail, newest first.
func (uc *TransactionQueryUseCase) ListLegados(ctx context.Context, limit, offset int) ([]*domain.Legado, error) {
	return uc.legados.List(ctx, normalizeLimit(limit), max(offset, 0))
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}

	if limit > MaxListLimit {
		return MaxListLimit
	}

	return limit
}
