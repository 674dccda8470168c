package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/logging"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/metrics"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/security"
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

// Gateway events that settle a payment. Everything else is acknowledged and dropped.
const (
	EventOrderPaid       = "order.paid"
	EventPaymentCaptured = "payment.captured"
)

type WebhookAction string

const (
	WebhookApplied   WebhookAction = "applied"
	WebhookDuplicate WebhookAction = "duplicate"
	WebhookIgnored   WebhookAction = "ignored"
)

type WebhookOutcome struct {
	Event   string
	OrderID string
	Action  WebhookAction
}

// WebhookUseCase ingests gateway events. The body is authenticated before it
// is decoded; an error return means the gateway should retry.
type WebhookUseCase interface {
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) (WebhookOutcome, error)
}

type webhookUC struct {
	secret string
	settle SettlementUseCase
	log    *zerolog.Logger
}

func NewWebhookUseCase(webhookSecret string, settle SettlementUseCase, logger *zerolog.Logger) *webhookUC {
	return &webhookUC{secret: webhookSecret, settle: settle, log: logger}
}

// verifiedBody can only be obtained through authenticate.
type verifiedBody struct{ raw []byte }

func (u *webhookUC) authenticate(rawBody []byte, signature string) (verifiedBody, error) {
	if u.secret == "" {
		return verifiedBody{}, fmt.Errorf("webhook secret missing: %w", domain.ErrConfiguration)
	}
	ok, err := security.VerifySignature(rawBody, signature, u.secret)
	if err != nil && !errors.Is(err, security.ErrMalformedSignature) {
		return verifiedBody{}, err
	}
	if !ok {
		return verifiedBody{}, domain.ErrInvalidSignature
	}
	return verifiedBody{raw: rawBody}, nil
}

func (u *webhookUC) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (WebhookOutcome, error) {
	defer logging.TraceDuration(u.log, "WebhookUC.HandleWebhook")()
	log := logging.With(ctx, u.log)

	body, err := u.authenticate(rawBody, signature)
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			metrics.IncWebhook("", "error")
			log.Error().Msg("webhook secret is not configured; refusing all webhook deliveries")
		} else {
			metrics.IncWebhook("", "bad_signature")
			log.Warn().Int("bytes", len(rawBody)).Msg("webhook signature rejected")
		}
		return WebhookOutcome{}, err
	}

	ev, err := decodeEvent(body)
	if err != nil {
		// Authentic but undecodable: a retry would carry the same bytes.
		metrics.IncWebhook("", string(WebhookIgnored))
		log.Error().Err(err).Msg("verified webhook body could not be decoded")
		return WebhookOutcome{Action: WebhookIgnored}, nil
	}
	out := WebhookOutcome{Event: ev.Event, Action: WebhookIgnored}

	if ev.Event != EventOrderPaid && ev.Event != EventPaymentCaptured {
		metrics.IncWebhook(ev.Event, string(WebhookIgnored))
		log.Debug().Str("event", ev.Event).Msg("webhook event ignored")
		return out, nil
	}

	pay := ev.settlement()
	out.OrderID = pay.orderID
	if pay.orderID == "" || pay.paymentID == "" {
		metrics.IncWebhook(ev.Event, string(WebhookIgnored))
		log.Warn().Str("event", ev.Event).Msg("webhook missing order or payment id")
		return out, nil
	}

	var action SettlementAction
	switch {
	case pay.notes["type"] == string(model.OrderKindSubscription):
		action, err = u.settle.ActivateSubscription(ctx, SourceWebhook, pay.orderID, pay.paymentID, pay.notes["userId"], pay.amount)
	case pay.notes["type"] == string(model.OrderKindNote) || pay.notes["noteId"] != "":
		if pay.notes["userId"] == "" || pay.notes["noteId"] == "" {
			metrics.IncWebhook(ev.Event, string(WebhookIgnored))
			log.Warn().Str("event", ev.Event).Str("order_id", pay.orderID).Msg("purchase webhook missing userId or noteId notes")
			return out, nil
		}
		action, err = u.settle.RecordPurchase(ctx, SourceWebhook, pay.orderID, pay.paymentID, pay.notes["userId"], pay.notes["noteId"], pay.amount)
	default:
		metrics.IncWebhook(ev.Event, string(WebhookIgnored))
		log.Warn().Str("event", ev.Event).Str("order_id", pay.orderID).Msg("webhook order carries no routing notes")
		return out, nil
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			metrics.IncWebhook(ev.Event, string(WebhookIgnored))
			log.Warn().Err(err).Str("order_id", pay.orderID).Msg("webhook cannot be settled")
			return out, nil
		}
		metrics.IncWebhook(ev.Event, "error")
		log.Error().Err(err).Str("order_id", pay.orderID).Msg("webhook settlement failed")
		return out, err
	}

	out.Action = WebhookApplied
	if action == SettlementDuplicate {
		out.Action = WebhookDuplicate
	}
	metrics.IncWebhook(ev.Event, string(out.Action))
	return out, nil
}

// --- event decoding ---

type gatewayEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Order *struct {
			Entity orderEntity `json:"entity"`
		} `json:"order"`
		Payment *struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type orderEntity struct {
	ID         string       `json:"id"`
	Amount     int64        `json:"amount"`
	AmountPaid int64        `json:"amount_paid"`
	Notes      gatewayNotes `json:"notes"`
}

type paymentEntity struct {
	ID      string       `json:"id"`
	OrderID string       `json:"order_id"`
	Amount  int64        `json:"amount"`
	Notes   gatewayNotes `json:"notes"`
}

// gatewayNotes accepts an object of scalars, or the empty array the gateway
// sends when an entity has no notes.
type gatewayNotes map[string]string

func (n *gatewayNotes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] == '[' || bytes.Equal(b, []byte("null")) {
		*n = gatewayNotes{}
		return nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(gatewayNotes, len(raw))
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

func decodeEvent(body verifiedBody) (*gatewayEvent, error) {
	var ev gatewayEvent
	if err := json.Unmarshal(body.raw, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

type settlementFields struct {
	orderID   string
	paymentID string
	amount    model.Amount
	notes     gatewayNotes
}

// settlement prefers the order entity and falls back to the payment entity.
func (ev *gatewayEvent) settlement() settlementFields {
	var f settlementFields
	f.notes = gatewayNotes{}
	if p := ev.Payload.Payment; p != nil {
		f.paymentID = p.Entity.ID
		f.orderID = p.Entity.OrderID
		f.amount = model.Amount(p.Entity.Amount)
		for k, v := range p.Entity.Notes {
			f.notes[k] = v
		}
	}
	if o := ev.Payload.Order; o != nil {
		if o.Entity.ID != "" {
			f.orderID = o.Entity.ID
		}
		switch {
		case o.Entity.AmountPaid > 0:
			f.amount = model.Amount(o.Entity.AmountPaid)
		case o.Entity.Amount > 0 && f.amount == 0:
			f.amount = model.Amount(o.Entity.Amount)
		}
		for k, v := range o.Entity.Notes {
			f.notes[k] = v
		}
	}
	return f
}
