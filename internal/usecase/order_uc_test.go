//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/adapter"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
	"github.com/hemanthreddykoduru/StudentNotes/internal/usecase"
)

type orderFixture struct {
	notes     *MockNoteRepo
	purchases *MockPurchaseRepo
	subs      *MockSubscriptionRepo
	config    *MockAppConfigRepo
	gateway   *MockGateway
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		notes:     NewMockNoteRepo(),
		purchases: NewMockPurchaseRepo(),
		subs:      NewMockSubscriptionRepo(),
		config:    NewMockAppConfigRepo(),
		gateway:   &MockGateway{},
	}
	f.notes.Add(&model.Note{ID: "note-1", Title: "Organic Chemistry", Price: model.AmountFromRupees(50), IsActive: true}, "notes/chem.pdf")
	return f
}

func (f *orderFixture) uc(limiter adapter.RateLimiter, perMinute int) usecase.OrderUseCase {
	return usecase.NewOrderUseCase(f.notes, f.purchases, f.subs, f.config, f.gateway, limiter,
		usecase.OrderLimit{PerMinute: perMinute}, testKeyID, newTestLogger())
}

func TestOrderUseCase_CreatePurchaseOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("should open a gateway order for the note price in paise", func(t *testing.T) {
		f := newOrderFixture()
		h, err := f.uc(nil, 0).CreatePurchaseOrder(ctx, "user-1", "note-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if h.Amount.Paise() != 5000 || h.Currency != model.CurrencyINR || h.KeyID != testKeyID {
			t.Errorf("unexpected handle %+v", h)
		}
		req := f.gateway.Requests[0]
		if req.Notes["type"] != "note" || req.Notes["noteId"] != "note-1" || req.Notes["userId"] != "user-1" {
			t.Errorf("unexpected notes %v", req.Notes)
		}
		if !strings.HasPrefix(req.Receipt, "rcpt_") {
			t.Errorf("unexpected receipt %q", req.Receipt)
		}
		if f.purchases.Count() != 0 {
			t.Error("no purchase row may exist before payment")
		}
	})

	t.Run("unknown note is not found", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.uc(nil, 0).CreatePurchaseOrder(ctx, "user-1", "missing")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if len(f.gateway.Requests) != 0 {
			t.Error("gateway must not be called")
		}
	})

	t.Run("already purchased note is refused", func(t *testing.T) {
		f := newOrderFixture()
		p, _ := model.NewCompletedPurchase("user-1", "note-1", "order_old", "pay_old", 5000)
		_, _ = f.purchases.Insert(ctx, nil, p)
		_, err := f.uc(nil, 0).CreatePurchaseOrder(ctx, "user-1", "note-1")
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		if len(f.gateway.Requests) != 0 {
			t.Error("gateway must not be called")
		}
	})

	t.Run("gateway failure leaves no local state", func(t *testing.T) {
		f := newOrderFixture()
		f.gateway.CreateOrderFunc = func(ctx context.Context, req adapter.OrderRequest) (*model.Order, error) {
			return nil, fmt.Errorf("razorpay: 503: %w", domain.ErrUpstream)
		}
		_, err := f.uc(nil, 0).CreatePurchaseOrder(ctx, "user-1", "note-1")
		if !errors.Is(err, domain.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("rate limit blocks before the gateway", func(t *testing.T) {
		f := newOrderFixture()
		lim := &MockLimiter{AllowFunc: func(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
			if key != "rate_limit:orders:user-1" || limit != 5 || window != time.Minute {
				t.Errorf("unexpected limiter call %q %d %v", key, limit, window)
			}
			return false, nil
		}}
		_, err := f.uc(lim, 5).CreatePurchaseOrder(ctx, "user-1", "note-1")
		if !errors.Is(err, domain.ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited, got %v", err)
		}
		if len(f.gateway.Requests) != 0 {
			t.Error("gateway must not be called")
		}
	})

	t.Run("limiter outage does not block", func(t *testing.T) {
		f := newOrderFixture()
		lim := &MockLimiter{AllowFunc: func(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
			return false, errors.New("redis down")
		}}
		if _, err := f.uc(lim, 5).CreatePurchaseOrder(ctx, "user-1", "note-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		f := newOrderFixture()
		if _, err := f.uc(nil, 0).CreatePurchaseOrder(ctx, "", "note-1"); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})
}

func TestOrderUseCase_CreateSubscriptionOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("should read the price at call time and record a pending row", func(t *testing.T) {
		f := newOrderFixture()
		uc := f.uc(nil, 0)

		_ = f.config.Set(ctx, nil, model.ConfigSubscriptionPrice, "149")
		h1, err := uc.CreateSubscriptionOrder(ctx, "user-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		_ = f.config.Set(ctx, nil, model.ConfigSubscriptionPrice, "199")
		h2, err := uc.CreateSubscriptionOrder(ctx, "user-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if h1.Amount.Paise() != 14900 || h2.Amount.Paise() != 19900 {
			t.Fatalf("expected 14900 then 19900, got %d then %d", h1.Amount, h2.Amount)
		}
		if f.gateway.Requests[0].Notes["type"] != "subscription" || f.gateway.Requests[0].Notes["userId"] != "user-1" {
			t.Errorf("unexpected notes %v", f.gateway.Requests[0].Notes)
		}

		pending := f.subs.Get(h1.OrderID)
		if pending == nil || pending.Status != model.SubscriptionStatusPending || pending.Amount != 14900 {
			t.Fatalf("expected pending row for %s, got %+v", h1.OrderID, pending)
		}
		if pending.InForce(time.Now()) {
			t.Error("pending row must not grant access")
		}
	})

	t.Run("unset price uses the default", func(t *testing.T) {
		f := newOrderFixture()
		h, err := f.uc(nil, 0).CreateSubscriptionOrder(ctx, "user-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if h.Amount.Paise() != 10000 {
			t.Errorf("expected 10000 paise, got %d", h.Amount)
		}
	})

	t.Run("unreadable or invalid price is a configuration error", func(t *testing.T) {
		f := newOrderFixture()
		f.config.GetErr = domain.ErrOperationFailed
		if _, err := f.uc(nil, 0).CreateSubscriptionOrder(ctx, "user-1"); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("expected ErrConfiguration, got %v", err)
		}

		f = newOrderFixture()
		_ = f.config.Set(ctx, nil, model.ConfigSubscriptionPrice, "free")
		if _, err := f.uc(nil, 0).CreateSubscriptionOrder(ctx, "user-1"); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("expected ErrConfiguration, got %v", err)
		}
		if len(f.gateway.Requests) != 0 {
			t.Error("gateway must not be called without a price")
		}
	})

	t.Run("pending row write failure fails the call", func(t *testing.T) {
		f := newOrderFixture()
		f.subs.CreatePendingFunc = func(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
			return domain.ErrOperationFailed
		}
		if _, err := f.uc(nil, 0).CreateSubscriptionOrder(ctx, "user-1"); !errors.Is(err, domain.ErrOperationFailed) {
			t.Fatalf("expected ErrOperationFailed, got %v", err)
		}
	})
}
