package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
)

var _ repository.NoteRepository = (*noteRepo)(nil)

type noteRepo struct {
	pool *pgxpool.Pool
}

func NewNoteRepo(pool *pgxpool.Pool) *noteRepo {
	return &noteRepo{pool: pool}
}

// FindPublic must never select file_url.
func (r *noteRepo) FindPublic(ctx context.Context, tx repository.Tx, id string) (*model.Note, error) {
	const q = `
SELECT id, title, COALESCE(subject,''), COALESCE(description,''), price::text,
       COALESCE(preview_url,''), is_active, created_at
  FROM notes
 WHERE id=$1 AND is_active;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var (
		n     model.Note
		price string
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Subject, &n.Description, &price, &n.PreviewURL, &n.IsActive, &n.CreatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	p, err := model.ParseRupees(price)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	n.Price = p
	return &n, nil
}

func (r *noteRepo) FindAssetRef(ctx context.Context, tx repository.Tx, id string) (string, error) {
	const q = `SELECT COALESCE(file_url,'') FROM notes WHERE id=$1 AND is_active;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return "", err
	}
	var ref string
	if err := row.Scan(&ref); err != nil {
		return "", mapScanErr(err)
	}
	if ref == "" {
		return "", domain.ErrNotFound
	}
	return ref, nil
}
