package usecase

import (
	"context"
	"time"

	"github.com/iho/valcoin/internal/domain"
)

// HookContext is what a category hook sees about the rule application
// being committed.
type HookContext struct {
	Rule        *domain.TransactionRule
	Transaction *domain.Transaction
	Now         time.Time
}

// CategoryHook runs inside the ledger writer's database transaction after
// the primary row and balance effects are in place. Returning an error
// rolls back the whole application.
type CategoryHook func(ctx context.Context, tx Transaction, hc *HookContext) error

// CategoryHooks maps a rule category to its side effect. Categories
// without an entry have no side effect.
type CategoryHooks map[string]CategoryHook

// DefaultCategoryHooks wires the built-in hooks: Legado-category rules
// insert an append-only legado audit record.
func DefaultCategoryHooks(legados LegadoRepository, idGen IDGenerator) CategoryHooks {
	return CategoryHooks{
		domain.CategoryLegado: func(ctx context.Context, tx Transaction, hc *HookContext) error {
			return legados.Create(ctx, tx, &domain.Legado{
				ID:          idGen.Generate(),
				StudentID:   hc.Transaction.DestinationUserID,
				GrantorID:   hc.Transaction.OriginUserID,
				RuleID:      hc.Rule.ID,
				Description: hc.Transaction.Description,
				CreatedAt:   hc.Now,
			})
		},
	}
}
