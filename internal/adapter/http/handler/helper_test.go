package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/valcoin/internal/adapter/http/middleware"
	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
	"github.com/iho/valcoin/internal/usecase/mocks"
)

// handlerFixture wires handlers over in-memory repositories so requests
// run through the real use cases.
type handlerFixture struct {
	users        *mocks.MockUserRepository
	rules        *mocks.MockRuleRepository
	transactions *mocks.MockTransactionRepository
	settings     *mocks.MockSettingsRepository
	disciplines  *mocks.MockDisciplineRepository
	legados      *mocks.MockLegadoRepository
	cache        *mocks.MockCache

	ruleHandler        *RuleHandler
	transactionHandler *TransactionHandler
	legadoHandler      *LegadoHandler
	settingsHandler    *SettingsHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &handlerFixture{
		users:        mocks.NewMockUserRepository(),
		rules:        mocks.NewMockRuleRepository(),
		transactions: mocks.NewMockTransactionRepository(),
		settings:     mocks.NewMockSettingsRepository(),
		disciplines:  mocks.NewMockDisciplineRepository(),
		legados:      mocks.NewMockLegadoRepository(ctrl),
		cache:        mocks.NewMockCache(),
	}

	f.settings.Rates = domain.VATRates{"normal": decimal.NewFromInt(23), domain.VATRateExempt: decimal.Zero}
	f.settings.SinkUserID = "bank-1"

	f.users.Seed(
		&domain.User{ID: "teacher-1", Name: "Ana", Role: domain.RoleTeacher, Balance: decimal.NewFromInt(1000), Active: true},
		&domain.User{ID: "student-1", Name: "Rui", Role: domain.RoleStudent, Balance: decimal.NewFromInt(50), Active: true},
		&domain.User{ID: "bank-1", Name: "Banco IVA", Role: domain.RoleAdmin, Balance: decimal.Zero, Active: true},
	)

	logger := zerolog.Nop()
	idGen := mocks.NewMockIDGenerator()
	txManager := mocks.NewMockTransactionManager()
	retrier := mocks.NewMockRetrier()

	checker := usecase.NewApplicabilityChecker(f.rules, f.users, f.disciplines, f.transactions, decimal.NewFromInt(10))
	invalidator := usecase.NewCacheInvalidator(f.cache, nil, logger)
	hooks := usecase.DefaultCategoryHooks(f.legados, idGen)

	ledgerUC := usecase.NewLedgerUseCase(
		txManager, retrier, f.users, f.rules, f.transactions, f.settings,
		checker, invalidator, hooks, idGen, nil, logger,
	)
	ruleUC := usecase.NewRuleUseCase(f.rules, f.users, f.cache, checker, invalidator, idGen, 0, nil, logger)
	queryUC := usecase.NewTransactionQueryUseCase(f.transactions, f.users, f.settings, f.legados)
	settingsUC := usecase.NewSettingsUseCase(txManager, f.settings)

	f.ruleHandler = NewRuleHandler(ruleUC, ledgerUC, checker)
	f.transactionHandler = NewTransactionHandler(ledgerUC, queryUC)
	f.legadoHandler = NewLegadoHandler(queryUC)
	f.settingsHandler = NewSettingsHandler(settingsUC)

	return f
}

// asCaller stamps the request with a routed id and the caller identity
// the middleware would normally provide.
func asCaller(r *http.Request, callerID string, role domain.Role, urlParams map[string]string) *http.Request {
	ctx := r.Context()

	rctx := chi.NewRouteContext()
	for k, v := range urlParams {
		rctx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)

	if callerID != "" {
		ctx = context.WithValue(ctx, middleware.CallerIDContextKey, callerID)
		ctx = context.WithValue(ctx, middleware.CallerRoleContextKey, role)
	}

	return r.WithContext(ctx)
}
