//go:build !integration

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/adapter"
)

func TestRazorpayGateway_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an order with basic auth and notes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			user, pass, ok := r.BasicAuth()
			if !ok || user != "rzp_key" || pass != "rzp_secret" {
				t.Errorf("unexpected basic auth %q/%q", user, pass)
			}
			var body razorpayOrderRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Amount != 5000 || body.Currency != "INR" {
				t.Errorf("unexpected amount/currency %d %s", body.Amount, body.Currency)
			}
			if body.Notes["noteId"] != "note_42" {
				t.Errorf("expected noteId note, got %v", body.Notes)
			}
			_ = json.NewEncoder(w).Encode(razorpayOrder{
				ID: "order_xyz", Entity: "order", Amount: body.Amount, Currency: body.Currency,
				Receipt: body.Receipt, Status: "created", Notes: body.Notes,
			})
		}))
		defer srv.Close()

		g := NewRazorpayGateway("rzp_key", "rzp_secret", srv.URL, time.Second)
		o, err := g.CreateOrder(ctx, adapter.OrderRequest{
			Amount:   model.AmountFromRupees(50),
			Currency: model.CurrencyINR,
			Receipt:  "rcpt_1",
			Notes:    map[string]string{"type": "note", "noteId": "note_42"},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if o.ID != "order_xyz" || o.Amount != 5000 {
			t.Errorf("unexpected order %+v", o)
		}
	})

	t.Run("gateway rejection is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
		}))
		defer srv.Close()

		g := NewRazorpayGateway("rzp_key", "rzp_secret", srv.URL, time.Second)
		_, err := g.CreateOrder(ctx, adapter.OrderRequest{Amount: 100})
		if !errors.Is(err, domain.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("missing credentials is a configuration error", func(t *testing.T) {
		g := NewRazorpayGateway("", "", "http://127.0.0.1:0", time.Second)
		_, err := g.CreateOrder(ctx, adapter.OrderRequest{Amount: 100})
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("unreachable gateway is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		g := NewRazorpayGateway("rzp_key", "rzp_secret", url, time.Second)
		_, err := g.CreateOrder(ctx, adapter.OrderRequest{Amount: 100})
		if !errors.Is(err, domain.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
	})
}

func TestRazorpayGateway_FetchOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the paid amount and creation notes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/v1/orders/order_xyz" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if user, pass, ok := r.BasicAuth(); !ok || user != "rzp_key" || pass != "rzp_secret" {
				t.Errorf("unexpected basic auth %q/%q", user, pass)
			}
			_, _ = w.Write([]byte(`{"id":"order_xyz","entity":"order","amount":5000,"amount_paid":4500,` +
				`"currency":"INR","status":"paid","notes":{"type":"note","noteId":"note_42","userId":"u1","attempt":2}}`))
		}))
		defer srv.Close()

		g := NewRazorpayGateway("rzp_key", "rzp_secret", srv.URL, time.Second)
		o, err := g.FetchOrder(ctx, "order_xyz")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if o.AmountPaid != 4500 || o.Settled() != 4500 || o.Status != "paid" {
			t.Errorf("unexpected order %+v", o)
		}
		if !o.Covers("u1", "note_42") || o.Notes["attempt"] != "2" {
			t.Errorf("unexpected notes %v", o.Notes)
		}
	})

	t.Run("order without notes decodes the empty array", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"order_bare","amount":100,"amount_paid":0,"currency":"INR","status":"created","notes":[]}`))
		}))
		defer srv.Close()

		g := NewRazorpayGateway("rzp_key", "rzp_secret", srv.URL, time.Second)
		o, err := g.FetchOrder(ctx, "order_bare")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(o.Notes) != 0 || o.Covers("u1", "note_42") {
			t.Errorf("expected no notes, got %v", o.Notes)
		}
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The id provided does not exist"}}`))
		}))
		defer srv.Close()

		g := NewRazorpayGateway("rzp_key", "rzp_secret", srv.URL, time.Second)
		if _, err := g.FetchOrder(ctx, "order_missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("server failure is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		g := NewRazorpayGateway("rzp_key", "rzp_secret", srv.URL, time.Second)
		if _, err := g.FetchOrder(ctx, "order_xyz"); !errors.Is(err, domain.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("missing credentials is a configuration error", func(t *testing.T) {
		g := NewRazorpayGateway("", "", "http://127.0.0.1:0", time.Second)
		if _, err := g.FetchOrder(ctx, "order_xyz"); !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("expected ErrConfiguration, got %v", err)
		}
	})
}

func TestNoopPaymentGateway(t *testing.T) {
	g := NewNoopPaymentGateway()
	o, err := g.CreateOrder(context.Background(), adapter.OrderRequest{Amount: 100, Notes: map[string]string{"type": "subscription"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, ok := g.Lookup(o.ID)
	if !ok || got.Notes["type"] != "subscription" || got.Currency != model.CurrencyINR {
		t.Fatalf("unexpected lookup result %+v ok=%v", got, ok)
	}
	if _, err := g.CreateOrder(context.Background(), adapter.OrderRequest{}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for zero amount, got %v", err)
	}

	fetched, err := g.FetchOrder(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fetched.Status != "paid" || fetched.AmountPaid != o.Amount {
		t.Fatalf("expected a paid order, got %+v", fetched)
	}
	if _, err := g.FetchOrder(context.Background(), "order_unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
