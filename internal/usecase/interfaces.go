package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/valcoin/internal/domain"
)

// Read methods that take a Transaction accept nil, in which case they
// execute against the pool outside any transaction. Mutating methods
// always require one.

// UserRepository defines data access for users. The ledger never creates
// or deletes users; it only reads them and additively mutates balances.
type UserRepository interface {
	GetByID(ctx context.Context, tx Transaction, id string) (*domain.User, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.User, error)
	AddToBalance(ctx context.Context, tx Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error
	GetNamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

// RuleRepository defines data access for transaction rules.
type RuleRepository interface {
	GetByID(ctx context.Context, tx Transaction, id string) (*domain.TransactionRule, error)
	ListActive(ctx context.Context) ([]*domain.TransactionRule, error)
	ListActiveByOriginRole(ctx context.Context, originRole, destinationRole domain.Role) ([]*domain.TransactionRule, error)
	Create(ctx context.Context, rule *domain.TransactionRule) error
	Update(ctx context.Context, rule *domain.TransactionRule) error
	Delete(ctx context.Context, id string) error
}

// TransactionRepository defines data access for ledger rows.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	ListByGroup(ctx context.Context, groupID string) ([]*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	SumRuleUsage(ctx context.Context, tx Transaction, filter domain.RuleUsageFilter) (decimal.Decimal, error)
	Update(ctx context.Context, tx Transaction, t *domain.Transaction) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus, reason string, updatedAt time.Time) error
	Delete(ctx context.Context, tx Transaction, id string) error
}

// LegadoRepository defines append-only access to legado audit records.
type LegadoRepository interface {
	Create(ctx context.Context, tx Transaction, legado *domain.Legado) error
	List(ctx context.Context, limit, offset int) ([]*domain.Legado, error)
}

// SettingsRepository defines access to the key/value settings store.
type SettingsRepository interface {
	GetVATRates(ctx context.Context, tx Transaction) (domain.VATRates, error)
	GetVATSinkUserID(ctx context.Context, tx Transaction) (string, error)
	All(ctx context.Context) (map[string]json.RawMessage, error)
	Upsert(ctx context.Context, tx Transaction, key string, value json.RawMessage) error
}

// DisciplineRepository defines read access to disciplines and enrollment.
type DisciplineRepository interface {
	GetByID(ctx context.Context, tx Transaction, id string) (*domain.Discipline, error)
	IsEnrolled(ctx context.Context, tx Transaction, studentID, disciplineID string) (bool, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations. Values are opaque JSON blobs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Retrier retries an operation on transient database failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
