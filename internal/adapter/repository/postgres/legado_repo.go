package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
)

// LegadoRepository implements usecase.LegadoRepository. The table is
// append-only; there is no update or delete path.
type LegadoRepository struct {
	pool *pgxpool.Pool
}

// NewLegadoRepository creates a new LegadoRepository.
func NewLegadoRepository(pool *pgxpool.Pool) *LegadoRepository {
	return &LegadoRepository{pool: pool}
}

// Create inserts a legado record inside the given transaction.
func (r *LegadoRepository) Create(ctx context.Context, tx usecase.Transaction, legado *domain.Legado) error {
	query := `
		INSERT INTO legados (id, student_id, grantor_id, rule_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := querierFor(r.pool, tx).Exec(ctx, query,
		legado.ID,
		legado.StudentID,
		legado.GrantorID,
		legado.RuleID,
		legado.Description,
		timeToPgTimestamptz(legado.CreatedAt),
	)

	return err
}

// List retrieves legado records, newest first.
func (r *LegadoRepository) List(ctx context.Context, limit, offset int) ([]*domain.Legado, error) {
	query := `
		SELECT id, student_id, grantor_id, rule_id, description, created_at
		FROM legados
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.Legado
	for rows.Next() {
		var legado domain.Legado
		err := rows.Scan(
			&legado.ID,
			&legado.StudentID,
			&legado.GrantorID,
			&legado.RuleID,
			&legado.Description,
			&legado.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		records = append(records, &legado)
	}

	return records, rows.Err()
}
