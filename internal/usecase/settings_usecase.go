package usecase

import (
	"context"
	"encoding/json"
)

// SettingsUseCase reads and writes the key/value settings store holding
// the VAT-rate map and the VAT settlement account id.
type SettingsUseCase struct {
	txManager TransactionManager
	settings  SettingsRepository
}

// NewSettingsUseCase creates a new SettingsUseCase.
func NewSettingsUseCase(txManager TransactionManager, settings SettingsRepository) *SettingsUseCase {
	return &SettingsUseCase{txManager: txManager, settings: settings}
}

// All returns every setting keyed by name.
func (uc *SettingsUseCase) All(ctx context.Context) (map[string]json.RawMessage, error) {
	return uc.settings.All(ctx)
}

// Update upserts the given settings atomically.
func (uc *SettingsUseCase) Update(ctx context.Context, values map[string]json.RawMessage) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for key, value := range values {
		if err := uc.settings.Upsert(ctx, tx, key, value); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
