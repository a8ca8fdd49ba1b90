// internal/repository/postgres/settings_repo.go
package postgres

import (
	"context"
	"fmt"

	"takataka-service/internal/domain/settings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves a setting by key.
func (r *SettingsRepository) Get(ctx context.Context, key string) (*settings.Setting, error) {
	query := `SELECT key, value, description, updated_by, updated_at FROM settings WHERE key = $1`

	var s settings.Setting
	err := r.db.QueryRow(ctx, query, key).Scan(
		&s.Key, &s.Value, &s.Description, &s.UpdatedBy, &s.UpdatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err, "setting", key)
	}
	return &s, nil
}

// Upsert creates or replaces a setting.
func (r *SettingsRepository) Upsert(ctx context.Context, s *settings.Setting) error {
	query := `
		INSERT INTO settings (key, value, description, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = COALESCE(EXCLUDED.description, settings.description),
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, s.Key, s.Value, s.Description, s.UpdatedBy).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}

// List returns all settings.
func (r *SettingsRepository) List(ctx context.Context) ([]settings.Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value, description, updated_by, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	out := []settings.Setting{}
	for rows.Next() {
		var s settings.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
