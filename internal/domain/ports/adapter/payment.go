package adapter

import (
	"context"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
)

// OrderRequest is what we ask the gateway to create.
type OrderRequest struct {
	Amount   model.Amount // paise
	Currency string
	Receipt  string
	Notes    map[string]string // echoed back on the webhook; used for routing
}

// PaymentGateway is the hex port for payment providers.
type PaymentGateway interface {
	Name() string
	// CreateOrder creates a payable order on the provider side.
	CreateOrder(ctx context.Context, req OrderRequest) (*model.Order, error)
	// FetchOrder reads an order back, including the notes it was created with.
	// An unknown id is domain.ErrNotFound.
	FetchOrder(ctx context.Context, orderID string) (*model.Order, error)
}
