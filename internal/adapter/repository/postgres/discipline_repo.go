package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
)

// DisciplineRepository implements usecase.DisciplineRepository.
type DisciplineRepository struct {
	pool *pgxpool.Pool
}

// NewDisciplineRepository creates a new DisciplineRepository.
func NewDisciplineRepository(pool *pgxpool.Pool) *DisciplineRepository {
	return &DisciplineRepository{pool: pool}
}

// GetByID retrieves a discipline by ID.
func (r *DisciplineRepository) GetByID(ctx context.Context, tx usecase.Transaction, id string) (*domain.Discipline, error) {
	query := `SELECT id, name, active FROM disciplines WHERE id = $1`

	var discipline domain.Discipline
	err := querierFor(r.pool, tx).QueryRow(ctx, query, id).Scan(
		&discipline.ID,
		&discipline.Name,
		&discipline.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDisciplineNotFound
		}

		return nil, err
	}

	return &discipline, nil
}

// IsEnrolled reports whether a student is enrolled in a discipline.
func (r *DisciplineRepository) IsEnrolled(ctx context.Context, tx usecase.Transaction, studentID, disciplineID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM discipline_enrollments
			WHERE student_id = $1 AND discipline_id = $2
		)
	`

	var enrolled bool
	err := querierFor(r.pool, tx).QueryRow(ctx, query, studentID, disciplineID).Scan(&enrolled)
	if err != nil {
		return false, err
	}

	return enrolled, nil
}
