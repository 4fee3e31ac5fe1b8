package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/igscheduler/internal/models"
)

type SettingsRepository interface {
	GetByKey(ctx context.Context, key string) (*models.Setting, bool, error)
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByKey(ctx context.Context, key string) (*models.Setting, bool, error) {
	query := `SELECT id, key, value, updated_at FROM settings WHERE key = $1`
	row := r.db.QueryRowContext(ctx, query, key)

	var s models.Setting
	err := row.Scan(&s.ID, &s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &s, true, nil
}
