package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
	"github.com/iho/valcoin/internal/usecase/mocks"
)

type ruleFixture struct {
	rules        *mocks.MockRuleRepository
	users        *mocks.MockUserRepository
	transactions *mocks.MockTransactionRepository
	cache        *mocks.MockCache
	uc           *usecase.RuleUseCase
}

func newRuleFixture() *ruleFixture {
	f := &ruleFixture{
		rules:        mocks.NewMockRuleRepository(),
		users:        mocks.NewMockUserRepository(),
		transactions: mocks.NewMockTransactionRepository(),
		cache:        mocks.NewMockCache(),
	}

	logger := zerolog.Nop()
	checker := usecase.NewApplicabilityChecker(f.rules, f.users, mocks.NewMockDisciplineRepository(), f.transactions, decimal.NewFromInt(10))
	invalidator := usecase.NewCacheInvalidator(f.cache, nil, logger)

	f.uc = usecase.NewRuleUseCase(
		f.rules,
		f.users,
		f.cache,
		checker,
		invalidator,
		mocks.NewMockIDGenerator(),
		time.Hour,
		nil,
		logger,
	)

	return f
}

func TestRuleUseCase_List_CachesResult(t *testing.T) {
	f := newRuleFixture()
	f.rules.Seed(creditRule("rule-1", 10))

	ctx := context.Background()

	rules, err := f.uc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	if !f.cache.Has(usecase.CacheKeyRules) {
		t.Fatal("expected the listing to be cached")
	}

	// Second call is served from cache, never touching the store.
	f.rules.ListActiveFunc = func(ctx context.Context) ([]*domain.TransactionRule, error) {
		t.Error("store queried despite a warm cache")
		return nil, nil
	}

	rules, err = f.uc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != "rule-1" {
		t.Errorf("cached listing mismatch: %+v", rules)
	}
}

func TestRuleUseCase_List_SurvivesCacheFailure(t *testing.T) {
	f := newRuleFixture()
	f.rules.Seed(creditRule("rule-1", 10))

	cacheErr := errors.New("redis down")
	f.cache.GetFunc = func(ctx context.Context, key string) ([]byte, error) { return nil, cacheErr }
	f.cache.SetFunc = func(ctx context.Context, key string, value []byte, ttl time.Duration) error { return cacheErr }

	rules, err := f.uc.List(context.Background())
	if err != nil {
		t.Fatalf("expected the store fallback, got %v", err)
	}
	if len(rules) != 1 {
		t.Errorf("expected 1 rule, got %d", len(rules))
	}
}

func TestRuleUseCase_List_DiscardsMalformedCacheEntry(t *testing.T) {
	f := newRuleFixture()
	f.rules.Seed(creditRule("rule-1", 10))

	f.cache.Set(context.Background(), usecase.CacheKeyRules, []byte("{not json"), time.Minute)

	rules, err := f.uc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 {
		t.Errorf("expected 1 rule from the store, got %d", len(rules))
	}
}

func TestRuleUseCase_Create(t *testing.T) {
	f := newRuleFixture()

	// Warm the cache so the create has something to invalidate.
	f.cache.Set(context.Background(), usecase.CacheKeyRules, []byte("[]"), time.Minute)

	created, err := f.uc.Create(context.Background(), usecase.CreateRuleInput{
		Name:            "Reward",
		Amount:          decimal.NewFromInt(10),
		Direction:       domain.DirectionCredit,
		OriginRole:      domain.RoleTeacher,
		DestinationRole: domain.RoleStudent,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !created.Active {
		t.Error("expected a new rule to be active")
	}
	if created.ID == "" {
		t.Error("expected a generated id")
	}

	if f.cache.Has(usecase.CacheKeyRules) {
		t.Error("expected the rule cache to be invalidated")
	}

	if _, err := f.rules.GetByID(context.Background(), nil, created.ID); err != nil {
		t.Errorf("created rule not persisted: %v", err)
	}
}

func TestRuleUseCase_Create_Invalid(t *testing.T) {
	f := newRuleFixture()

	tests := []struct {
		name  string
		input usecase.CreateRuleInput
		want  error
	}{
		{
			name: "non-positive amount",
			input: usecase.CreateRuleInput{
				Name: "Reward", Amount: decimal.Zero,
				Direction: domain.DirectionCredit, OriginRole: domain.RoleTeacher, DestinationRole: domain.RoleStudent,
			},
			want: domain.ErrInvalidAmount,
		},
		{
			name: "bad direction",
			input: usecase.CreateRuleInput{
				Name: "Reward", Amount: decimal.NewFromInt(10),
				Direction: "SIDEWAYS", OriginRole: domain.RoleTeacher, DestinationRole: domain.RoleStudent,
			},
			want: domain.ErrInvalidDirection,
		},
		{
			name: "bad role",
			input: usecase.CreateRuleInput{
				Name: "Reward", Amount: decimal.NewFromInt(10),
				Direction: domain.DirectionCredit, OriginRole: "JANITOR", DestinationRole: domain.RoleStudent,
			},
			want: domain.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Create(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRuleUseCase_Update_Partial(t *testing.T) {
	f := newRuleFixture()

	rule := creditRule("rule-1", 10)
	rule.Category = "Merit"
	f.rules.Seed(rule)

	newAmount := decimal.NewFromInt(25)
	inactive := false

	updated, err := f.uc.Update(context.Background(), "rule-1", usecase.UpdateRuleInput{
		Amount: &newAmount,
		Active: &inactive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !updated.Amount.Equal(newAmount) {
		t.Errorf("amount = %s, want 25", updated.Amount)
	}
	if updated.Active {
		t.Error("expected the rule to be deactivated")
	}

	// Untouched fields survive.
	if updated.Category != "Merit" {
		t.Errorf("category = %q, want Merit", updated.Category)
	}
	if updated.Direction != domain.DirectionCredit {
		t.Errorf("direction = %q, want %q", updated.Direction, domain.DirectionCredit)
	}
}

func TestRuleUseCase_Update_NotFound(t *testing.T) {
	f := newRuleFixture()

	_, err := f.uc.Update(context.Background(), "ghost", usecase.UpdateRuleInput{})
	if !errors.Is(err, domain.ErrRuleNotFound) {
		t.Errorf("expected ErrRuleNotFound, got %v", err)
	}
}

func TestRuleUseCase_Delete(t *testing.T) {
	f := newRuleFixture()
	f.rules.Seed(creditRule("rule-1", 10))
	f.cache.Set(context.Background(), usecase.CacheKeyRules, []byte("[]"), time.Minute)

	if err := f.uc.Delete(context.Background(), "rule-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.cache.Has(usecase.CacheKeyRules) {
		t.Error("expected the rule cache to be invalidated")
	}

	if err := f.uc.Delete(context.Background(), "rule-1"); !errors.Is(err, domain.ErrRuleNotFound) {
		t.Errorf("expected ErrRuleNotFound, got %v", err)
	}
}

func TestRuleUseCase_ListApplicable(t *testing.T) {
	f := newRuleFixture()

	f.users.Seed(&domain.User{ID: "teacher-1", Name: "Ana", Role: domain.RoleTeacher, Balance: decimal.NewFromInt(100), Active: true})

	limited := creditRule("rule-limited", 10)
	limited.LimitAmount = decimal.NewFromInt(10)
	limited.LimitPeriod = domain.PeriodDaily

	studentRule := creditRule("rule-student", 5)
	studentRule.OriginRole = domain.RoleStudent

	f.rules.Seed(creditRule("rule-open", 10), limited, studentRule)

	ruleID := "rule-limited"
	f.transactions.Seed(&domain.Transaction{
		ID: "t-1", RuleID: &ruleID, OriginUserID: "teacher-1", DestinationUserID: "student-1",
		Amount: decimal.NewFromInt(10), Status: domain.StatusApproved, OriginKind: domain.OriginUser,
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	})

	result, err := f.uc.ListApplicable(context.Background(), usecase.ListApplicableInput{
		OriginUserID: "teacher-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the two teacher-origin rules are listed.
	if len(result) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(result))
	}

	byID := make(map[string]*usecase.ApplicableRule)
	for _, r := range result {
		byID[r.Rule.ID] = r
	}

	if open, ok := byID["rule-open"]; !ok || !open.CanApply {
		t.Error("expected rule-open to be applicable")
	}
	if lim, ok := byID["rule-limited"]; !ok || lim.CanApply {
		t.Error("expected rule-limited to be exhausted")
	}
	if _, ok := byID["rule-student"]; ok {
		t.Error("student-origin rule leaked into a teacher listing")
	}
}
