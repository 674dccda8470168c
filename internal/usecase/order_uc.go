package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/adapter"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/logging"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/metrics"
)

// Compile-time check
var _ OrderUseCase = (*orderUC)(nil)

// OrderHandle is what the client needs to open the gateway checkout.
type OrderHandle struct {
	OrderID  string
	Amount   model.Amount
	Currency string
	KeyID    string
}

type OrderUseCase interface {
	// CreatePurchaseOrder opens a gateway order for one note. No local row is written.
	CreatePurchaseOrder(ctx context.Context, userID, noteID string) (*OrderHandle, error)
	// CreateSubscriptionOrder opens a gateway order at the current configured
	// price and records a pending subscription keyed by the gateway order id.
	CreateSubscriptionOrder(ctx context.Context, userID string) (*OrderHandle, error)
}

// OrderLimit bounds how many orders one user may open per minute. Zero disables it.
type OrderLimit struct {
	PerMinute int
}

type orderUC struct {
	notes     repository.NoteRepository
	purchases repository.PurchaseRepository
	subs      repository.SubscriptionRepository
	config    repository.AppConfigRepository
	gateway   adapter.PaymentGateway
	limiter   adapter.RateLimiter
	limit     OrderLimit
	keyID     string
	now       func() time.Time
	log       *zerolog.Logger
}

func NewOrderUseCase(
	notes repository.NoteRepository,
	purchases repository.PurchaseRepository,
	subs repository.SubscriptionRepository,
	config repository.AppConfigRepository,
	gateway adapter.PaymentGateway,
	limiter adapter.RateLimiter,
	limit OrderLimit,
	keyID string,
	logger *zerolog.Logger,
) *orderUC {
	return &orderUC{
		notes:     notes,
		purchases: purchases,
		subs:      subs,
		config:    config,
		gateway:   gateway,
		limiter:   limiter,
		limit:     limit,
		keyID:     keyID,
		now:       time.Now,
		log:       logger,
	}
}

func (u *orderUC) CreatePurchaseOrder(ctx context.Context, userID, noteID string) (*OrderHandle, error) {
	defer logging.TraceDuration(u.log, "OrderUC.CreatePurchaseOrder")()
	kind := string(model.OrderKindNote)
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if noteID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if err := u.allow(ctx, kind, userID); err != nil {
		return nil, err
	}

	note, err := u.notes.FindPublic(ctx, repository.NoTX, noteID)
	if err != nil {
		return nil, err
	}
	if note.Price <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	owned, err := u.purchases.ExistsCompleted(ctx, repository.NoTX, userID, noteID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, domain.ErrAlreadyExists
	}

	order, err := u.createOrder(ctx, kind, note.Price, map[string]string{
		"type":   kind,
		"noteId": noteID,
		"userId": userID,
	})
	if err != nil {
		return nil, err
	}
	logging.With(ctx, u.log).Info().
		Str("order_id", order.ID).Str("note_id", noteID).Int64("amount", order.Amount.Paise()).
		Msg("purchase order created")
	return u.handle(order), nil
}

func (u *orderUC) CreateSubscriptionOrder(ctx context.Context, userID string) (*OrderHandle, error) {
	defer logging.TraceDuration(u.log, "OrderUC.CreateSubscriptionOrder")()
	kind := string(model.OrderKindSubscription)
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := u.allow(ctx, kind, userID); err != nil {
		return nil, err
	}

	price, err := u.subscriptionPrice(ctx)
	if err != nil {
		metrics.IncOrderCreated(kind, "error")
		return nil, err
	}

	order, err := u.createOrder(ctx, kind, price, map[string]string{
		"type":   kind,
		"userId": userID,
	})
	if err != nil {
		return nil, err
	}

	pending, err := model.NewPendingSubscription(userID, order.ID, order.Amount, u.now())
	if err != nil {
		return nil, err
	}
	if err := u.subs.CreatePending(ctx, repository.NoTX, pending); err != nil {
		logging.With(ctx, u.log).Error().Err(err).Str("order_id", order.ID).
			Msg("gateway order created but pending subscription could not be recorded")
		return nil, fmt.Errorf("record pending subscription: %w", domain.ErrOperationFailed)
	}
	logging.With(ctx, u.log).Info().
		Str("order_id", order.ID).Int64("amount", order.Amount.Paise()).
		Msg("subscription order created")
	return u.handle(order), nil
}

// subscriptionPrice reads the admin-configured price at call time.
func (u *orderUC) subscriptionPrice(ctx context.Context) (model.Amount, error) {
	raw, err := u.config.Get(ctx, repository.NoTX, model.ConfigSubscriptionPrice)
	if errors.Is(err, domain.ErrNotFound) {
		return model.AmountFromRupees(model.DefaultSubscriptionPriceRupees), nil
	}
	if err != nil {
		return 0, fmt.Errorf("read subscription price: %v: %w", err, domain.ErrConfiguration)
	}
	price, err := model.ParseRupees(raw)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("subscription price %q is not a positive amount: %w", raw, domain.ErrConfiguration)
	}
	return price, nil
}

func (u *orderUC) createOrder(ctx context.Context, kind string, amount model.Amount, notes map[string]string) (*model.Order, error) {
	order, err := u.gateway.CreateOrder(ctx, adapter.OrderRequest{
		Amount:   amount,
		Currency: model.CurrencyINR,
		Receipt:  "rcpt_" + ulid.Make().String(),
		Notes:    notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUpstream) {
			metrics.IncOrderCreated(kind, "upstream")
		} else {
			metrics.IncOrderCreated(kind, "error")
		}
		logging.With(ctx, u.log).Error().Err(err).Str("gateway", u.gateway.Name()).Str("kind", kind).
			Msg("gateway order creation failed")
		return nil, err
	}
	metrics.IncOrderCreated(kind, "ok")
	return order, nil
}

// allow applies the per-user order budget. A limiter outage does not block sales.
func (u *orderUC) allow(ctx context.Context, kind, userID string) error {
	if u.limiter == nil || u.limit.PerMinute <= 0 {
		return nil
	}
	ok, err := u.limiter.Allow(ctx, "rate_limit:orders:"+userID, u.limit.PerMinute, time.Minute)
	if err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("order rate limiter unavailable")
		return nil
	}
	if !ok {
		metrics.IncOrderCreated(kind, "rate_limited")
		return domain.ErrRateLimited
	}
	return nil
}

func (u *orderUC) handle(o *model.Order) *OrderHandle {
	cur := o.Currency
	if cur == "" {
		cur = model.CurrencyINR
	}
	return &OrderHandle{OrderID: o.ID, Amount: o.Amount, Currency: cur, KeyID: u.keyID}
}
