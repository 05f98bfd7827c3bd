package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
)

// MockUserRepository is a mock implementation of UserRepository backed by
// an in-memory map. Func fields override individual methods.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	GetByIDFunc           func(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.User, error)
	AddToBalanceFunc      func(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error
	GetNamesByIDsFunc     func(ctx context.Context, ids []string) (map[string]string, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// Seed stores a user for later lookups.
func (m *MockUserRepository) Seed(users ...*domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		m.users[u.ID] = u
	}
}

// Balance returns the current balance of a seeded user.
func (m *MockUserRepository) Balance(id string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u.Balance
	}
	return decimal.Zero
}

func (m *MockUserRepository) GetByID(ctx context.Context, tx usecase.Transaction, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.User, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []*domain.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			copied := *u
			users = append(users, &copied)
		}
	}
	return users, nil
}

func (m *MockUserRepository) AddToBalance(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error {
	if m.AddToBalanceFunc != nil {
		return m.AddToBalanceFunc(ctx, tx, id, delta, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Balance = u.Balance.Add(delta)
	u.UpdatedAt = updatedAt
	return nil
}

func (m *MockUserRepository) GetNamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if m.GetNamesByIDsFunc != nil {
		return m.GetNamesByIDsFunc(ctx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make(map[string]string)
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			names[id] = u.Name
		}
	}
	return names, nil
}

// MockRuleRepository is a mock implementation of RuleRepository.
type MockRuleRepository struct {
	mu    sync.RWMutex
	rules map[string]*domain.TransactionRule

	GetByIDFunc                func(ctx context.Context, tx usecase.Transaction, id string) (*domain.TransactionRule, error)
	ListActiveFunc             func(ctx context.Context) ([]*domain.TransactionRule, error)
	ListActiveByOriginRoleFunc func(ctx context.Context, originRole, destinationRole domain.Role) ([]*domain.TransactionRule, error)
	CreateFunc                 func(ctx context.Context, rule *domain.TransactionRule) error
	UpdateFunc                 func(ctx context.Context, rule *domain.TransactionRule) error
	DeleteFunc                 func(ctx context.Context, id string) error
}

func NewMockRuleRepository() *MockRuleRepository {
	return &MockRuleRepository{rules: make(map[string]*domain.TransactionRule)}
}

func (m *MockRuleRepository) Seed(rules ...*domain.TransactionRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rules {
		m.rules[r.ID] = r
	}
}

func (m *MockRuleRepository) GetByID(ctx context.Context, tx usecase.Transaction, id string) (*domain.TransactionRule, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rules[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, domain.ErrRuleNotFound
}

func (m *MockRuleRepository) ListActive(ctx context.Context) ([]*domain.TransactionRule, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rules []*domain.TransactionRule
	for _, r := range m.rules {
		if r.Active {
			copied := *r
			rules = append(rules, &copied)
		}
	}
	return rules, nil
}

func (m *MockRuleRepository) ListActiveByOriginRole(ctx context.Context, originRole, destinationRole domain.Role) ([]*domain.TransactionRule, error) {
	if m.ListActiveByOriginRoleFunc != nil {
		return m.ListActiveByOriginRoleFunc(ctx, originRole, destinationRole)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rules []*domain.TransactionRule
	for _, r := range m.rules {
		if !r.Active || r.OriginRole != originRole {
			continue
		}
		if destinationRole != "" && r.DestinationRole != destinationRole {
			continue
		}
		copied := *r
		rules = append(rules, &copied)
	}
	return rules, nil
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *domain.TransactionRule) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rule)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.ID] = rule
	return nil
}

func (m *MockRuleRepository) Update(ctx context.Context, rule *domain.TransactionRule) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, rule)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[rule.ID]; !ok {
		return domain.ErrRuleNotFound
	}
	m.rules[rule.ID] = rule
	return nil
}

func (m *MockRuleRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[id]; !ok {
		return domain.ErrRuleNotFound
	}
	delete(m.rules, id)
	return nil
}

// MockTransactionRepository is a mock implementation of
// TransactionRepository. The default SumRuleUsage aggregates over the
// stored rows the way the real repository does, so limit scenarios can
// run end to end against the mock.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error)
	ListByGroupFunc      func(ctx context.Context, groupID string) ([]*domain.Transaction, error)
	ListFunc             func(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	SumRuleUsageFunc     func(ctx context.Context, tx usecase.Transaction, filter domain.RuleUsageFilter) (decimal.Decimal, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, reason string, updatedAt time.Time) error
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{transactions: make(map[string]*domain.Transaction)}
}

func (m *MockTransactionRepository) Seed(rows ...*domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range rows {
		m.transactions[t.ID] = t
	}
}

// All returns every stored row.
func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []*domain.Transaction
	for _, t := range m.transactions {
		rows = append(rows, t)
	}
	return rows
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = t
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Transaction, error) {
	if m.ListByGroupFunc != nil {
		return m.ListByGroupFunc(ctx, groupID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []*domain.Transaction
	for _, t := range m.transactions {
		if t.GroupID == groupID {
			copied := *t
			rows = append(rows, &copied)
		}
	}
	return rows, nil
}

func (m *MockTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []*domain.Transaction
	for _, t := range m.transactions {
		if !filter.IncludeSystem && t.IsSystemGenerated() {
			continue
		}
		if filter.Since != nil && t.CreatedAt.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && t.CreatedAt.After(*filter.Until) {
			continue
		}
		copied := *t
		rows = append(rows, &copied)
	}
	return rows, nil
}

func (m *MockTransactionRepository) SumRuleUsage(ctx context.Context, tx usecase.Transaction, filter domain.RuleUsageFilter) (decimal.Decimal, error) {
	if m.SumRuleUsageFunc != nil {
		return m.SumRuleUsageFunc(ctx, tx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, t := range m.transactions {
		if t.RuleID == nil || *t.RuleID != filter.RuleID {
			continue
		}
		if t.Status == domain.StatusRejected {
			continue
		}
		if t.OriginUserID != filter.OriginUserID {
			continue
		}
		if filter.DestinationUserID != "" && t.DestinationUserID != filter.DestinationUserID {
			continue
		}
		if filter.DisciplineID != "" && (t.DisciplineID == nil || *t.DisciplineID != filter.DisciplineID) {
			continue
		}
		if t.CreatedAt.Before(filter.Since) || t.CreatedAt.After(filter.Until) {
			continue
		}
		if t.IsSystemGenerated() {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total, nil
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[t.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	m.transactions[t.ID] = t
	return nil
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, reason string, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, reason, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Status = status
	t.RejectionReason = reason
	t.UpdatedAt = updatedAt
	return nil
}

func (m *MockTransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.transactions, id)
	return nil
}

// MockSettingsRepository is a mock implementation of SettingsRepository.
type MockSettingsRepository struct {
	mu         sync.RWMutex
	Rates      domain.VATRates
	SinkUserID string
	Values     map[string]json.RawMessage

	GetVATRatesFunc      func(ctx context.Context, tx usecase.Transaction) (domain.VATRates, error)
	GetVATSinkUserIDFunc func(ctx context.Context, tx usecase.Transaction) (string, error)
	AllFunc              func(ctx context.Context) (map[string]json.RawMessage, error)
	UpsertFunc           func(ctx context.Context, tx usecase.Transaction, key string, value json.RawMessage) error
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		Rates:  domain.VATRates{},
		Values: make(map[string]json.RawMessage),
	}
}

func (m *MockSettingsRepository) GetVATRates(ctx context.Context, tx usecase.Transaction) (domain.VATRates, error) {
	if m.GetVATRatesFunc != nil {
		return m.GetVATRatesFunc(ctx, tx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Rates, nil
}

func (m *MockSettingsRepository) GetVATSinkUserID(ctx context.Context, tx usecase.Transaction) (string, error) {
	if m.GetVATSinkUserIDFunc != nil {
		return m.GetVATSinkUserIDFunc(ctx, tx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.SinkUserID == "" {
		return "", domain.ErrVATSinkNotConfigured
	}
	return m.SinkUserID, nil
}

func (m *MockSettingsRepository) All(ctx context.Context) (map[string]json.RawMessage, error) {
	if m.AllFunc != nil {
		return m.AllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Values, nil
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, tx usecase.Transaction, key string, value json.RawMessage) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Values[key] = value
	return nil
}

// MockDisciplineRepository is a mock implementation of DisciplineRepository.
type MockDisciplineRepository struct {
	mu          sync.RWMutex
	disciplines map[string]*domain.Discipline
	enrollments map[string]bool // studentID + ":" + disciplineID

	GetByIDFunc    func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Discipline, error)
	IsEnrolledFunc func(ctx context.Context, tx usecase.Transaction, studentID, disciplineID string) (bool, error)
}

func NewMockDisciplineRepository() *MockDisciplineRepository {
	return &MockDisciplineRepository{
		disciplines: make(map[string]*domain.Discipline),
		enrollments: make(map[string]bool),
	}
}

func (m *MockDisciplineRepository) Seed(disciplines ...*domain.Discipline) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range disciplines {
		m.disciplines[d.ID] = d
	}
}

func (m *MockDisciplineRepository) Enroll(studentID, disciplineID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollments[studentID+":"+disciplineID] = true
}

func (m *MockDisciplineRepository) GetByID(ctx context.Context, tx usecase.Transaction, id string) (*domain.Discipline, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.disciplines[id]; ok {
		return d, nil
	}
	return nil, domain.ErrDisciplineNotFound
}

func (m *MockDisciplineRepository) IsEnrolled(ctx context.Context, tx usecase.Transaction, studentID, disciplineID string) (bool, error) {
	if m.IsEnrolledFunc != nil {
		return m.IsEnrolledFunc(ctx, tx, studentID, disciplineID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enrollments[studentID+":"+disciplineID], nil
}

// MockTransaction is a mock database transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock TransactionManager handing out
// MockTransactions.
type MockTransactionManager struct {
	mu     sync.Mutex
	Opened []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Opened = append(m.Opened, tx)
	return tx, nil
}

// MockIDGenerator generates sequential ids.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu    sync.RWMutex
	store map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{store: make(map[string][]byte)}
}

// Has reports whether a key is currently cached.
func (m *MockCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.store[key]
	return ok
}

var errCacheMiss = fmt.Errorf("cache miss")

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

// MockRetrier runs the operation once without retrying.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
