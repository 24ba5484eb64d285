package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
)

// SystemRepository provides data access methods for the system_setting table.
type SystemRepository struct {
	db *sql.DB
}

// NewSystemRepository creates a new SystemRepository with the provided database connection.
func NewSystemRepository(db *sql.DB) *SystemRepository {
	return &SystemRepository{db: db}
}

// GetSetting retrieves one setting by key.
func (r *SystemRepository) GetSetting(ctx context.Context, key string) (model.SystemSetting, error) {
	var s model.SystemSetting
	var updatedAtStr sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT "key", value, updated_at
		FROM system_setting
		WHERE "key" = ?
	`, key).Scan(&s.Key, &s.Value, &updatedAtStr)
	if err == sql.ErrNoRows {
		return model.SystemSetting{}, apperrors.ErrSettingNotFound
	}
	if err != nil {
		return model.SystemSetting{}, fmt.Errorf("failed to query system_setting table: %w", err)
	}

	if updatedAtStr.Valid {
		s.UpdatedAt, err = ParseTime(updatedAtStr.String)
		if err != nil {
			return model.SystemSetting{}, err
		}
	}
	return s, nil
}

// SetSetting inserts or replaces one setting.
func (r *SystemRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO system_setting ("key", value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT("key") DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to set system setting: %w", err)
	}
	return nil
}
