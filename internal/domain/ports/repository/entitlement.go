package repository

import (
	"context"
	"time"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
)

// -----------------------------
// Purchases
// -----------------------------

type PurchaseRepository interface {
	// Insert writes a completed purchase. It reports created=false, with no
	// error, when a row for the same order id (or the same user/note pair)
	// already exists.
	Insert(ctx context.Context, tx Tx, p *model.Purchase) (created bool, err error)
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.Purchase, error)
	ExistsCompleted(ctx context.Context, tx Tx, userID, noteID string) (bool, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Purchase, error)
}

// -----------------------------
// Subscriptions
// -----------------------------

type SubscriptionRepository interface {
	// CreatePending writes the audit row for a freshly created subscription order.
	CreatePending(ctx context.Context, tx Tx, s *model.Subscription) error
	// Activate moves the row for a.OrderID from pending to active. It reports
	// false when no pending row matched (already active, or missing).
	Activate(ctx context.Context, tx Tx, a model.Activation) (bool, error)
	// InsertActive writes an already-active row for an order that has no audit
	// row. created=false when a row for the order id appeared concurrently.
	InsertActive(ctx context.Context, tx Tx, s *model.Subscription) (created bool, err error)
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.Subscription, error)
	// FindInForce returns the user's active subscription with end_date > now,
	// or domain.ErrNotFound.
	FindInForce(ctx context.Context, tx Tx, userID string, now time.Time) (*model.Subscription, error)
}
