package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/infrastructure/metrics"
)

// RuleUseCase serves and administers the rule catalog. Listings go
// through the cache with a fixed TTL; every mutation invalidates the
// cached listing plus the aggregate views embedding rule data.
type RuleUseCase struct {
	rules       RuleRepository
	users       UserRepository
	cache       Cache
	checker     *ApplicabilityChecker
	invalidator *CacheInvalidator
	idGen       IDGenerator
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewRuleUseCase creates a new RuleUseCase.
func NewRuleUseCase(
	rules RuleRepository,
	users UserRepository,
	cache Cache,
	checker *ApplicabilityChecker,
	invalidator *CacheInvalidator,
	idGen IDGenerator,
	cacheTTL time.Duration,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *RuleUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultRuleCacheTTL
	}

	return &RuleUseCase{
		rules:       rules,
		users:       users,
		cache:       cache,
		checker:     checker,
		invalidator: invalidator,
		idGen:       idGen,
		cacheTTL:    cacheTTL,
		metrics:     m,
		logger:      logger,
	}
}

// List returns all active rules ordered by name, served from cache when
// present. Cache failures fall back to the store silently; the cache is
// never required for correctness.
func (uc *RuleUseCase) List(ctx context.Context) ([]*domain.TransactionRule, error) {
	if data, err := uc.cache.Get(ctx, CacheKeyRules); err == nil {
		var rules []*domain.TransactionRule
		if err := json.Unmarshal(data, &rules); err == nil {
			if uc.metrics != nil {
				uc.metrics.CacheHits.WithLabelValues(CacheKeyRules).Inc()
			}

			return rules, nil
		}

		uc.logger.Warn().Msg("discarding malformed rule cache entry")
	}

	if uc.metrics != nil {
		uc.metrics.CacheMisses.WithLabelValues(CacheKeyRules).Inc()
	}

	rules, err := uc.rules.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rules); err == nil {
		if err := uc.cache.Set(ctx, CacheKeyRules, data, uc.cacheTTL); err != nil {
			uc.logger.Warn().Err(err).Msg("failed to cache rule listing")
		}
	}

	return rules, nil
}

// CreateRuleInput carries the fields of a new rule.
type CreateRuleInput struct {
	Name            string
	Amount          decimal.Decimal
	Direction       domain.Direction
	OriginRole      domain.Role
	DestinationRole domain.Role
	LimitAmount     decimal.Decimal
	LimitPeriod     domain.LimitPeriod
	PerDiscipline   bool
	Category        string
	VATRateRef      string
	YearMin         *int
	YearMax         *int
	Icon            string
}

// Create persists a new active rule and invalidates the rule caches.
func (uc *RuleUseCase) Create(ctx context.Context, input CreateRuleInput) (*domain.TransactionRule, error) {
	now := time.Now().UTC()

	rule := &domain.TransactionRule{
		ID:              uc.idGen.Generate(),
		Name:            input.Name,
		Amount:          input.Amount,
		Direction:       input.Direction,
		OriginRole:      input.OriginRole,
		DestinationRole: input.DestinationRole,
		LimitAmount:     input.LimitAmount,
		LimitPeriod:     input.LimitPeriod,
		PerDiscipline:   input.PerDiscipline,
		Category:        input.Category,
		VATRateRef:      input.VATRateRef,
		YearMin:         input.YearMin,
		YearMax:         input.YearMax,
		Icon:            input.Icon,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if err := uc.rules.Create(ctx, rule); err != nil {
		return nil, err
	}

	uc.invalidator.InvalidateRules(ctx)

	return rule, nil
}

// UpdateRuleInput carries a partial rule update. Nil fields keep the
// existing value.
type UpdateRuleInput struct {
	Name            *string
	Amount          *decimal.Decimal
	Direction       *domain.Direction
	OriginRole      *domain.Role
	DestinationRole *domain.Role
	LimitAmount     *decimal.Decimal
	LimitPeriod     *domain.LimitPeriod
	PerDiscipline   *bool
	Category        *string
	VATRateRef      *string
	YearMin         *int
	YearMax         *int
	Icon            *string
	Active          *bool
}

// Update persists a partial rule edit and invalidates the rule caches.
func (uc *RuleUseCase) Update(ctx context.Context, id string, input UpdateRuleInput) (*domain.TransactionRule, error) {
	rule, err := uc.rules.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		rule.Name = *input.Name
	}
	if input.Amount != nil {
		rule.Amount = *input.Amount
	}
	if input.Direction != nil {
		rule.Direction = *input.Direction
	}
	if input.OriginRole != nil {
		rule.OriginRole = *input.OriginRole
	}
	if input.DestinationRole != nil {
		rule.DestinationRole = *input.DestinationRole
	}
	if input.LimitAmount != nil {
		rule.LimitAmount = *input.LimitAmount
	}
	if input.LimitPeriod != nil {
		rule.LimitPeriod = *input.LimitPeriod
	}
	if input.PerDiscipline != nil {
		rule.PerDiscipline = *input.PerDiscipline
	}
	if input.Category != nil {
		rule.Category = *input.Category
	}
	if input.VATRateRef != nil {
		rule.VATRateRef = *input.VATRateRef
	}
	if input.YearMin != nil {
		rule.YearMin = input.YearMin
	}
	if input.YearMax != nil {
		rule.YearMax = input.YearMax
	}
	if input.Icon != nil {
		rule.Icon = *input.Icon
	}
	if input.Active != nil {
		rule.Active = *input.Active
	}

	rule.UpdatedAt = time.Now().UTC()

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if err := uc.rules.Update(ctx, rule); err != nil {
		return nil, err
	}

	uc.invalidator.InvalidateRules(ctx)

	return rule, nil
}

// Delete removes a rule and invalidates the rule caches.
func (uc *RuleUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.rules.Delete(ctx, id); err != nil {
		return err
	}

	uc.invalidator.InvalidateRules(ctx)

	return nil
}

// ApplicableRule is a rule annotated with its current limit state for
// one origin.
type ApplicableRule struct {
	Rule     *domain.TransactionRule
	CanApply bool
	Limits   domain.LimitState
}

// ListApplicableInput scopes the applicable-rule listing.
type ListApplicableInput struct {
	OriginUserID      string
	DestinationRole   domain.Role
	DestinationUserID string
	DisciplineID      string
}

// ListApplicable returns every active rule whose origin role matches the
// caller, each annotated with its remaining period-limit budget.
func (uc *RuleUseCase) ListApplicable(ctx context.Context, input ListApplicableInput) ([]*ApplicableRule, error) {
	origin, err := uc.users.GetByID(ctx, nil, input.OriginUserID)
	if err != nil {
		return nil, err
	}

	rules, err := uc.rules.ListActiveByOriginRole(ctx, origin.Role, input.DestinationRole)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	result := make([]*ApplicableRule, 0, len(rules))
	for _, rule := range rules {
		limits, err := uc.checker.CheckLimit(ctx, nil, rule, CheckInput{
			RuleID:            rule.ID,
			OriginUserID:      input.OriginUserID,
			DestinationUserID: input.DestinationUserID,
			DisciplineID:      input.DisciplineID,
		}, now)
		if err != nil {
			uc.logger.Warn().Err(err).Str("rule_id", rule.ID).Msg("limit check failed")

			result = append(result, &ApplicableRule{
				Rule:     rule,
				CanApply: false,
				Limits: domain.LimitState{
					Allowed: false,
					Total:   rule.LimitAmount,
					Period:  rule.LimitPeriod,
					Message: "limit check failed",
				},
			})

			continue
		}

		result = append(result, &ApplicableRule{
			Rule:     rule,
			CanApply: limits.Allowed,
			Limits:   *limits,
		})
	}

	return result, nil
}
