package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/valcoin/internal/adapter/http/handler"
	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
	"github.com/iho/valcoin/internal/usecase/mocks"
)

func newRouterConfig(t *testing.T) RouterConfig {
	t.Helper()

	ctrl := gomock.NewController(t)

	users := mocks.NewMockUserRepository()
	rules := mocks.NewMockRuleRepository()
	transactions := mocks.NewMockTransactionRepository()
	settings := mocks.NewMockSettingsRepository()
	disciplines := mocks.NewMockDisciplineRepository()
	legados := mocks.NewMockLegadoRepository(ctrl)
	cache := mocks.NewMockCache()

	users.Seed(
		&domain.User{ID: "teacher-1", Name: "Ana", Role: domain.RoleTeacher, Balance: decimal.NewFromInt(100), Active: true},
		&domain.User{ID: "admin-1", Name: "Direção", Role: domain.RoleAdmin, Active: true},
	)

	logger := zerolog.Nop()
	idGen := mocks.NewMockIDGenerator()
	txManager := mocks.NewMockTransactionManager()
	retrier := mocks.NewMockRetrier()

	checker := usecase.NewApplicabilityChecker(rules, users, disciplines, transactions, decimal.NewFromInt(10))
	invalidator := usecase.NewCacheInvalidator(cache, nil, logger)
	hooks := usecase.DefaultCategoryHooks(legados, idGen)

	ledgerUC := usecase.NewLedgerUseCase(
		txManager, retrier, users, rules, transactions, settings,
		checker, invalidator, hooks, idGen, nil, logger,
	)
	ruleUC := usecase.NewRuleUseCase(rules, users, cache, checker, invalidator, idGen, 0, nil, logger)
	queryUC := usecase.NewTransactionQueryUseCase(transactions, users, settings, legados)
	settingsUC := usecase.NewSettingsUseCase(txManager, settings)

	return RouterConfig{
		RuleHandler:        handler.NewRuleHandler(ruleUC, ledgerUC, checker),
		TransactionHandler: handler.NewTransactionHandler(ledgerUC, queryUC),
		LegadoHandler:      handler.NewLegadoHandler(queryUC),
		SettingsHandler:    handler.NewSettingsHandler(settingsUC),
		HealthHandler:      handler.NewHealthHandler(nil, nil),
	}
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RequiresIdentityHeaders(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity headers, got %d", rec.Code)
	}
}

func TestNewRouter_ListRulesWithIdentity(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil)
	req.Header.Set("X-User-ID", "teacher-1")
	req.Header.Set("X-User-Role", string(domain.RoleTeacher))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with identity headers, got %d", rec.Code)
	}
}

func TestNewRouter_RuleManagementRequiresAdmin(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rules", nil)
	req.Header.Set("X-User-ID", "teacher-1")
	req.Header.Set("X-User-Role", string(domain.RoleTeacher))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin rule creation, got %d", rec.Code)
	}
}

func TestNewRouter_ApprovalRefusedForStudents(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/tx-1/approve", nil)
	req.Header.Set("X-User-ID", "student-9")
	req.Header.Set("X-User-Role", string(domain.RoleStudent))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student approval, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
}
