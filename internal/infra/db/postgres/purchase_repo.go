package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
)

var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

type purchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) *purchaseRepo {
	return &purchaseRepo{pool: pool}
}

const purchaseColumns = `id, user_id, note_id, payment_id, order_id, amount::text, status, created_at`

// Insert relies on the order_id and (user_id, note_id) unique constraints;
// a conflict on either is reported as created=false. A note that no longer
// exists is ErrInvalidArgument: retrying cannot make the row valid.
func (r *purchaseRepo) Insert(ctx context.Context, tx repository.Tx, p *model.Purchase) (bool, error) {
	if p == nil {
		return false, domain.ErrInvalidArgument
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	const q = `
INSERT INTO purchases (id, user_id, note_id, payment_id, order_id, amount, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6::numeric,$7,$8)
ON CONFLICT DO NOTHING;`
	tag, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserID, p.NoteID, p.PaymentID, p.OrderID, p.Amount.Rupees(), string(p.Status), p.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("purchase of unknown note %s: %w", p.NoteID, domain.ErrInvalidArgument)
		}
		return false, mapExecErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *purchaseRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Purchase, error) {
	q := `SELECT ` + purchaseColumns + ` FROM purchases WHERE order_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, err
	}
	return scanPurchase(row)
}

func (r *purchaseRepo) ExistsCompleted(ctx context.Context, tx repository.Tx, userID, noteID string) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM purchases
   WHERE user_id=$1 AND note_id=$2 AND status='completed'
);`
	row, err := pickRow(ctx, r.pool, tx, q, userID, noteID)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, mapScanErr(err)
	}
	return ok, nil
}

func (r *purchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	q := `SELECT ` + purchaseColumns + ` FROM purchases WHERE user_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, mapExecErr(err)
	}
	defer rows.Close()
	out := make([]*model.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPurchase(row scanner) (*model.Purchase, error) {
	var (
		p      model.Purchase
		amount string
		status string
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.NoteID, &p.PaymentID, &p.OrderID, &amount, &status, &p.CreatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	a, err := model.ParseRupees(amount)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	p.Amount = a
	p.Status = model.PurchaseStatus(status)
	return &p, nil
}
