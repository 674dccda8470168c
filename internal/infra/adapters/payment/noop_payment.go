package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is an in-memory gateway for dev mode and tests.
type NoopPaymentGateway struct {
	mu     sync.Mutex
	seq    int64
	orders map[string]*model.Order
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{orders: make(map[string]*model.Order)}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) CreateOrder(ctx context.Context, req adapter.OrderRequest) (*model.Order, error) {
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	currency := req.Currency
	if currency == "" {
		currency = model.CurrencyINR
	}
	notes := make(map[string]string, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	o := &model.Order{
		ID:       fmt.Sprintf("order_noop%d", g.seq),
		Amount:   req.Amount,
		Currency: currency,
		Receipt:  req.Receipt,
		Notes:    notes,
	}
	g.orders[o.ID] = o
	cp := *o
	return &cp, nil
}

// Lookup returns an order created earlier, for tests and the dev simulator.
func (g *NoopPaymentGateway) Lookup(orderID string) (*model.Order, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.orders[orderID]
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

// FetchOrder reports every order it created as paid in full; there is no
// checkout to wait for.
func (g *NoopPaymentGateway) FetchOrder(ctx context.Context, orderID string) (*model.Order, error) {
	o, ok := g.Lookup(orderID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	o.Status = "paid"
	o.AmountPaid = o.Amount
	return o, nil
}
