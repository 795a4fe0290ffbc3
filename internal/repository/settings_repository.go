package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/quickreview-backend/internal/db"
	"github.com/unclebandit/quickreview-backend/internal/model"
)

type SettingsRepositoryInterface interface {
	Get(ctx context.Context, name string) (*model.Setting, error)
	Put(ctx context.Context, s *model.Setting) error
}

type SettingsRepository struct {
	DB *sqlx.DB

	get string
	put string
}

func NewSettingsRepository(conn *sqlx.DB, s db.Schema) *SettingsRepository {
	return &SettingsRepository{
		DB:  conn,
		get: fmt.Sprintf(`SELECT option_name, option_value FROM %s WHERE option_name=$1`, s.Settings),
		put: fmt.Sprintf(`
			INSERT INTO %s (option_name, option_value, updated_at)
			VALUES (:option_name, :option_value, NOW())
			ON CONFLICT (option_name)
			DO UPDATE SET option_value = EXCLUDED.option_value, updated_at = NOW()`, s.Settings),
	}
}

func (r *SettingsRepository) Get(ctx context.Context, name string) (*model.Setting, error) {
	var s model.Setting
	if err := r.DB.GetContext(ctx, &s, r.get, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Put creates or replaces the named option.
func (r *SettingsRepository) Put(ctx context.Context, s *model.Setting) error {
	_, err := r.DB.NamedExecContext(ctx, r.put, s)
	return err
}

var _ SettingsRepositoryInterface = (*SettingsRepository)(nil)
