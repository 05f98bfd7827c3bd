package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, group_id, origin_user_id, destination_user_id, amount,
	direction, status, origin_kind, description, vat_rate_ref,
	rule_id, discipline_id, rejection_reason, created_at, updated_at`

// Create inserts a ledger row inside the given transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, group_id, origin_user_id, destination_user_id, amount,
			direction, status, origin_kind, description, vat_rate_ref,
			rule_id, discipline_id, rejection_reason, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := querierFor(r.pool, tx).Exec(ctx, query,
		t.ID,
		t.GroupID,
		t.OriginUserID,
		t.DestinationUserID,
		decimalToNumeric(t.Amount),
		t.Direction,
		t.Status,
		t.OriginKind,
		t.Description,
		t.VATRateRef,
		t.RuleID,
		t.DisciplineID,
		t.RejectionReason,
		timeToPgTimestamptz(t.CreatedAt),
		timeToPgTimestamptz(t.UpdatedAt),
	)

	return err
}

// GetByID retrieves a row by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return t, nil
}

// GetByIDForUpdate retrieves a row by ID with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	t, err := scanTransaction(querierFor(r.pool, tx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return t, nil
}

// ListByGroup retrieves every row sharing a group id, system companions
// included.
func (r *TransactionRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE group_id = $1 ORDER BY created_at`

	return r.queryTransactions(ctx, query, groupID)
}

// List retrieves rows matching the filter, newest first. Unless the
// filter opts in, system-generated companion rows are excluded.
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions`

	var (
		conds []string
		args  []any
	)

	if !filter.IncludeSystem {
		conds = append(conds, fmt.Sprintf("origin_kind = $%d", len(args)+1))
		args = append(args, domain.OriginUser)
	}
	if filter.Since != nil {
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)+1))
		args = append(args, *filter.Until)
	}

	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	return r.queryTransactions(ctx, query, args...)
}

// SumRuleUsage aggregates the amounts a rule application window has
// consumed. Rejected rows and system companions never count.
func (r *TransactionRepository) SumRuleUsage(ctx context.Context, tx usecase.Transaction, filter domain.RuleUsageFilter) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE rule_id = $1
		  AND origin_user_id = $2
		  AND origin_kind = $3
		  AND status <> $4
		  AND created_at >= $5
		  AND created_at <= $6
	`
	args := []any{
		filter.RuleID,
		filter.OriginUserID,
		domain.OriginUser,
		domain.StatusRejected,
		filter.Since,
		filter.Until,
	}

	if filter.DestinationUserID != "" {
		query += fmt.Sprintf(" AND destination_user_id = $%d", len(args)+1)
		args = append(args, filter.DestinationUserID)
	}
	if filter.DisciplineID != "" {
		query += fmt.Sprintf(" AND discipline_id = $%d", len(args)+1)
		args = append(args, filter.DisciplineID)
	}

	var used pgtype.Numeric
	err := querierFor(r.pool, tx).QueryRow(ctx, query, args...).Scan(&used)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(used), nil
}

// Update rewrites the editable columns of a row.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET origin_user_id = $2, destination_user_id = $3, amount = $4,
			description = $5, vat_rate_ref = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := querierFor(r.pool, tx).Exec(ctx, query,
		t.ID,
		t.OriginUserID,
		t.DestinationUserID,
		decimalToNumeric(t.Amount),
		t.Description,
		t.VATRateRef,
		timeToPgTimestamptz(t.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// UpdateStatus transitions a row's status.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, reason string, updatedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2, rejection_reason = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := querierFor(r.pool, tx).Exec(ctx, query, id, status, reason, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a row.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := querierFor(r.pool, tx).Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}

		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t      domain.Transaction
		amount pgtype.Numeric
	)

	err := row.Scan(
		&t.ID,
		&t.GroupID,
		&t.OriginUserID,
		&t.DestinationUserID,
		&amount,
		&t.Direction,
		&t.Status,
		&t.OriginKind,
		&t.Description,
		&t.VATRateRef,
		&t.RuleID,
		&t.DisciplineID,
		&t.RejectionReason,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Amount = numericToDecimal(amount)

	return &t, nil
}
