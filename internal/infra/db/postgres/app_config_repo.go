package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
)

var _ repository.AppConfigRepository = (*appConfigRepo)(nil)

type appConfigRepo struct {
	pool *pgxpool.Pool
}

func NewAppConfigRepo(pool *pgxpool.Pool) *appConfigRepo {
	return &appConfigRepo{pool: pool}
}

// Get returns the value as text; JSON scalars such as "100" or 100 both come
// back without quotes.
func (r *appConfigRepo) Get(ctx context.Context, tx repository.Tx, key string) (string, error) {
	const q = `SELECT value #>> '{}' FROM app_config WHERE key=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, key)
	if err != nil {
		return "", err
	}
	var v *string
	if err := row.Scan(&v); err != nil {
		return "", mapScanErr(err)
	}
	if v == nil {
		return "", domain.ErrNotFound
	}
	return *v, nil
}

func (r *appConfigRepo) Set(ctx context.Context, tx repository.Tx, key, value string) error {
	if key == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO app_config (key, value, updated_at) VALUES ($1, to_jsonb($2::text), NOW())
ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW();`
	_, err := execSQL(ctx, r.pool, tx, q, key, value)
	return mapExecErr(err)
}
