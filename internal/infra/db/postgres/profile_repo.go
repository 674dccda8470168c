package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*profileRepo)(nil)

type profileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *profileRepo {
	return &profileRepo{pool: pool}
}

func (r *profileRepo) FindByID(ctx context.Context, tx repository.Tx, userID string) (*model.Profile, error) {
	const q = `SELECT id, role FROM profiles WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	var (
		p    model.Profile
		role string
	)
	if err := row.Scan(&p.ID, &role); err != nil {
		return nil, mapScanErr(err)
	}
	p.Role = model.Role(role)
	return &p, nil
}

func (r *profileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	if p == nil || p.ID == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO profiles (id, role) VALUES ($1,$2)
ON CONFLICT (id) DO UPDATE SET role=EXCLUDED.role;`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, string(p.Role))
	return mapExecErr(err)
}
