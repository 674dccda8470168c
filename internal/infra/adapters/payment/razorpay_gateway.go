// File: internal/infra/adapters/payment/razorpay_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*RazorpayGateway)(nil)

// RazorpayGateway implements adapter.PaymentGateway against the Razorpay
// Orders REST API. Signature checks are done locally by the security package.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpayGateway(keyID, keySecret, baseURL string, timeout time.Duration) *RazorpayGateway {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
	}
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrder struct {
	ID         string     `json:"id"`
	Entity     string     `json:"entity"`
	Amount     int64      `json:"amount"`
	AmountPaid int64      `json:"amount_paid"`
	Currency   string     `json:"currency"`
	Receipt    string     `json:"receipt"`
	Status     string     `json:"status"`
	Notes      orderNotes `json:"notes"`
}

func (o razorpayOrder) toModel() *model.Order {
	return &model.Order{
		ID:         o.ID,
		Amount:     model.Amount(o.Amount),
		AmountPaid: model.Amount(o.AmountPaid),
		Currency:   o.Currency,
		Receipt:    o.Receipt,
		Status:     o.Status,
		Notes:      o.Notes,
	}
}

// orderNotes accepts an object of scalars, or the empty array Razorpay
// returns for an order without notes.
type orderNotes map[string]string

func (n *orderNotes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] == '[' || bytes.Equal(b, []byte("null")) {
		*n = orderNotes{}
		return nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(orderNotes, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	*n = out
	return nil
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder calls POST /v1/orders with HTTP basic auth.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req adapter.OrderRequest) (*model.Order, error) {
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if req.Currency == "" {
		req.Currency = model.CurrencyINR
	}

	b, err := json.Marshal(razorpayOrderRequest{
		Amount:   req.Amount.Paise(),
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, err
	}
	out, err := g.do(ctx, http.MethodPost, "/v1/orders", b)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	return out.toModel(), nil
}

// FetchOrder calls GET /v1/orders/{id}. The notes come back exactly as they
// were sent at creation.
func (g *RazorpayGateway) FetchOrder(ctx context.Context, orderID string) (*model.Order, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidArgument
	}
	out, err := g.do(ctx, http.MethodGet, "/v1/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay fetch order %s: %w", orderID, err)
	}
	if out.ID != orderID {
		return nil, fmt.Errorf("razorpay returned order %q for %q: %w", out.ID, orderID, domain.ErrUpstream)
	}
	return out.toModel(), nil
}

func (g *RazorpayGateway) do(ctx context.Context, method, path string, payload []byte) (*razorpayOrder, error) {
	if g.keyID == "" || g.keySecret == "" {
		return nil, fmt.Errorf("razorpay credentials missing: %w", domain.ErrConfiguration)
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrUpstream)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %v: %w", err, domain.ErrUpstream)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var rerr razorpayError
		_ = json.Unmarshal(raw, &rerr)
		return nil, fmt.Errorf("http %d %s %s: %w",
			resp.StatusCode, rerr.Error.Code, rerr.Error.Description, domain.ErrUpstream)
	}

	var out razorpayOrder
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode order: %v: %w", err, domain.ErrUpstream)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("order without id: %w", domain.ErrUpstream)
	}
	return &out, nil
}
