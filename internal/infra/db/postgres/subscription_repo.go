package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, user_id, plan_type, start_date, end_date, order_id, payment_id, amount::text, status, created_at, updated_at`

func (r *subscriptionRepo) CreatePending(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if s == nil || s.Status != model.SubscriptionStatusPending {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO subscriptions (
  id, user_id, plan_type, start_date, end_date, order_id, payment_id, amount, status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,NULL,$7::numeric,$8,$9,$10);`
	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.PlanType, s.StartDate, s.EndDate, s.OrderID, s.Amount.Rupees(), string(s.Status), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return mapExecErr(err)
	}
	return nil
}

// Activate is the single pending -> active transition. The status predicate
// makes concurrent callers race on the row lock; exactly one sees a row updated.
func (r *subscriptionRepo) Activate(ctx context.Context, tx repository.Tx, a model.Activation) (bool, error) {
	const q = `
UPDATE subscriptions
   SET status='active', start_date=$2, end_date=$3, payment_id=$4, updated_at=NOW()
 WHERE order_id=$1 AND status='pending';`
	tag, err := execSQL(ctx, r.pool, tx, q, a.OrderID, a.StartDate, a.EndDate, a.PaymentID)
	if err != nil {
		return false, mapExecErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *subscriptionRepo) InsertActive(ctx context.Context, tx repository.Tx, s *model.Subscription) (bool, error) {
	if s == nil || s.Status != model.SubscriptionStatusActive {
		return false, domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO subscriptions (
  id, user_id, plan_type, start_date, end_date, order_id, payment_id, amount, status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8::numeric,$9,$10,$11)
ON CONFLICT (order_id) DO NOTHING;`
	tag, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.PlanType, s.StartDate, s.EndDate, s.OrderID, s.PaymentID, s.Amount.Rupees(), string(s.Status), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return false, mapExecErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *subscriptionRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE order_id=$1;`
	return r.queryOne(ctx, tx, q, orderID)
}

func (r *subscriptionRepo) FindInForce(ctx context.Context, tx repository.Tx, userID string, now time.Time) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + `
  FROM subscriptions
 WHERE user_id=$1 AND status='active' AND end_date > $2
 ORDER BY end_date DESC
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, userID, now.UTC())
}

func (r *subscriptionRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) (*model.Subscription, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}

	var (
		s      model.Subscription
		amount string
		status string
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanType, &s.StartDate, &s.EndDate, &s.OrderID, &s.PaymentID,
		&amount, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	a, err := model.ParseRupees(amount)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	s.Amount = a
	s.Status = model.SubscriptionStatus(status)
	return &s, nil
}
