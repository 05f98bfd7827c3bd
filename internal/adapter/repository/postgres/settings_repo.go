package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/valcoin/internal/domain"
	"github.com/iho/valcoin/internal/usecase"
)

// SettingsRepository implements usecase.SettingsRepository over a
// key/value table with JSONB values.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetVATRates returns the configured VAT-rate map. A missing setting is
// an empty map, not an error.
func (r *SettingsRepository) GetVATRates(ctx context.Context, tx usecase.Transaction) (domain.VATRates, error) {
	value, err := r.get(ctx, tx, domain.SettingVATRates)
	if err != nil {
		if errors.Is(err, domain.ErrSettingNotFound) {
			return domain.VATRates{}, nil
		}

		return nil, err
	}

	var rates domain.VATRates
	if err := json.Unmarshal(value, &rates); err != nil {
		return nil, fmt.Errorf("malformed %s setting: %w", domain.SettingVATRates, err)
	}

	return rates, nil
}

// GetVATSinkUserID returns the id of the account VAT settles into.
func (r *SettingsRepository) GetVATSinkUserID(ctx context.Context, tx usecase.Transaction) (string, error) {
	value, err := r.get(ctx, tx, domain.SettingVATSinkUserID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingNotFound) {
			return "", domain.ErrVATSinkNotConfigured
		}

		return "", err
	}

	var id string
	if err := json.Unmarshal(value, &id); err != nil {
		return "", fmt.Errorf("malformed %s setting: %w", domain.SettingVATSinkUserID, err)
	}

	if id == "" {
		return "", domain.ErrVATSinkNotConfigured
	}

	return id, nil
}

// All returns every setting keyed by name.
func (r *SettingsRepository) All(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}

		settings[key] = json.RawMessage(value)
	}

	return settings, rows.Err()
}

// Upsert writes a setting inside the given transaction.
func (r *SettingsRepository) Upsert(ctx context.Context, tx usecase.Transaction, key string, value json.RawMessage) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	_, err := querierFor(r.pool, tx).Exec(ctx, query, key, []byte(value))

	return err
}

func (r *SettingsRepository) get(ctx context.Context, tx usecase.Transaction, key string) ([]byte, error) {
	var value []byte
	err := querierFor(r.pool, tx).QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingNotFound
		}

		return nil, err
	}

	return value, nil
}
