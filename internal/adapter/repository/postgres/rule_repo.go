package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
)

// RuleRepository implements usecase.RuleRepository.
type RuleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

const ruleColumns = `id, name, amount, direction, origin_role, destination_role,
	limit_amount, limit_period, per_discipline, category, vat_rate_ref,
	year_min, year_max, icon, active, created_at, updated_at`

// GetByID retrieves a rule by ID.
func (r *RuleRepository) GetByID(ctx context.Context, tx usecase.Transaction, id string) (*domain.TransactionRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM transaction_rules WHERE id = $1`

	rule, err := scanRule(querierFor(r.pool, tx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRuleNotFound
		}

		return nil, err
	}

	return rule, nil
}

// ListActive lists all active rules ordered by name.
func (r *RuleRepository) ListActive(ctx context.Context) ([]*domain.TransactionRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM transaction_rules WHERE active ORDER BY name`

	return r.queryRules(ctx, query)
}

// ListActiveByOriginRole lists active rules whose origin role matches.
// An empty destination role matches every rule.
func (r *RuleRepository) ListActiveByOriginRole(ctx context.Context, originRole, destinationRole domain.Role) ([]*domain.TransactionRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM transaction_rules
		WHERE active
		  AND origin_role = $1
		  AND ($2 = '' OR destination_role = $2)
		ORDER BY name
	`

	return r.queryRules(ctx, query, string(originRole), string(destinationRole))
}

// Create inserts a new rule.
func (r *RuleRepository) Create(ctx context.Context, rule *domain.TransactionRule) error {
	query := `
		INSERT INTO transaction_rules (
			id, name, amount, direction, origin_role, destination_role,
			limit_amount, limit_period, per_discipline, category, vat_rate_ref,
			year_min, year_max, icon, active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.pool.Exec(ctx, query,
		rule.ID,
		rule.Name,
		decimalToNumeric(rule.Amount),
		rule.Direction,
		rule.OriginRole,
		rule.DestinationRole,
		decimalToNumeric(rule.LimitAmount),
		rule.LimitPeriod,
		rule.PerDiscipline,
		rule.Category,
		rule.VATRateRef,
		rule.YearMin,
		rule.YearMax,
		rule.Icon,
		rule.Active,
		timeToPgTimestamptz(rule.CreatedAt),
		timeToPgTimestamptz(rule.UpdatedAt),
	)

	return err
}

// Update rewrites every mutable column of a rule.
func (r *RuleRepository) Update(ctx context.Context, rule *domain.TransactionRule) error {
	query := `
		UPDATE transaction_rules
		SET name = $2, amount = $3, direction = $4, origin_role = $5,
			destination_role = $6, limit_amount = $7, limit_period = $8,
			per_discipline = $9, category = $10, vat_rate_ref = $11,
			year_min = $12, year_max = $13, icon = $14, active = $15,
			updated_at = $16
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		rule.ID,
		rule.Name,
		decimalToNumeric(rule.Amount),
		rule.Direction,
		rule.OriginRole,
		rule.DestinationRole,
		decimalToNumeric(rule.LimitAmount),
		rule.LimitPeriod,
		rule.PerDiscipline,
		rule.Category,
		rule.VATRateRef,
		rule.YearMin,
		rule.YearMax,
		rule.Icon,
		rule.Active,
		timeToPgTimestamptz(rule.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}

	return nil
}

// Delete removes a rule.
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transaction_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}

	return nil
}

func (r *RuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]*domain.TransactionRule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.TransactionRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func scanRule(row pgx.Row) (*domain.TransactionRule, error) {
	var (
		rule             domain.TransactionRule
		amount, limitAmt pgtype.Numeric
		yearMin, yearMax *int32
	)

	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&amount,
		&rule.Direction,
		&rule.OriginRole,
		&rule.DestinationRole,
		&limitAmt,
		&rule.LimitPeriod,
		&rule.PerDiscipline,
		&rule.Category,
		&rule.VATRateRef,
		&yearMin,
		&yearMax,
		&rule.Icon,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.Amount = numericToDecimal(amount)
	rule.LimitAmount = numericToDecimal(limitAmt)
	if yearMin != nil {
		v := int(*yearMin)
		rule.YearMin = &v
	}
	if yearMax != nil {
		v := int(*yearMax)
		rule.YearMax = &v
	}

	return &rule, nil
}
