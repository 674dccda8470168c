package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/adapter"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/logging"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/metrics"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/security"
)

// Compile-time check
var _ ConfirmUseCase = (*confirmUC)(nil)

// PaymentProof is what the checkout widget hands back to the client.
type PaymentProof struct {
	OrderID   string
	PaymentID string
	Signature string
}

// ConfirmUseCase settles payments reported by the client after checkout.
// The signature is checked here on every call; nothing upstream is trusted.
type ConfirmUseCase interface {
	ConfirmPurchase(ctx context.Context, userID, noteID string, proof PaymentProof) (SettlementAction, error)
	ConfirmSubscription(ctx context.Context, userID string, proof PaymentProof) (SettlementAction, error)
}

type confirmUC struct {
	keySecret string
	settle    SettlementUseCase
	gateway   adapter.PaymentGateway
	subs      repository.SubscriptionRepository
	dev       bool
	log       *zerolog.Logger
}

func NewConfirmUseCase(keySecret string, settle SettlementUseCase, gateway adapter.PaymentGateway, subs repository.SubscriptionRepository, dev bool, logger *zerolog.Logger) *confirmUC {
	return &confirmUC{keySecret: keySecret, settle: settle, gateway: gateway, subs: subs, dev: dev, log: logger}
}

// ConfirmPurchase settles a note purchase. The signature only binds the order
// to the payment, so the order itself is fetched from the gateway and must
// have been opened by this user for this note. The stored amount is what the
// gateway collected.
func (u *confirmUC) ConfirmPurchase(ctx context.Context, userID, noteID string, proof PaymentProof) (SettlementAction, error) {
	defer logging.TraceDuration(u.log, "ConfirmUC.ConfirmPurchase")()
	started := time.Now()
	kind := string(model.OrderKindNote)
	if userID == "" {
		return "", domain.ErrUnauthenticated
	}
	if noteID == "" {
		metrics.ObserveVerify(kind, "fail", "bad_json", started)
		return "", domain.ErrInvalidArgument
	}
	if err := u.verify(ctx, kind, proof, started); err != nil {
		return "", err
	}

	order, err := u.gateway.FetchOrder(ctx, proof.OrderID)
	if err != nil {
		metrics.ObserveVerify(kind, "fail", "gateway_error", started)
		return "", fmt.Errorf("fetch order %s: %w", proof.OrderID, err)
	}
	if !order.Covers(userID, noteID) {
		metrics.ObserveVerify(kind, "fail", "order_mismatch", started)
		logging.With(ctx, u.log).Warn().
			Str("order_id", logging.Redact(proof.OrderID, u.dev)).
			Str("note_id", noteID).
			Msg("order does not cover the confirmed note")
		return "", fmt.Errorf("order %s does not cover note %s: %w", proof.OrderID, noteID, domain.ErrInvalidSignature)
	}

	action, err := u.settle.RecordPurchase(ctx, SourceClient, proof.OrderID, proof.PaymentID, userID, noteID, order.Settled())
	if err != nil {
		metrics.ObserveVerify(kind, "fail", "store_error", started)
		return "", err
	}
	metrics.ObserveVerify(kind, "ok", "", started)
	return action, nil
}

// ConfirmSubscription activates the caller's pending subscription for the
// order. Without a pending row there is nothing to activate.
func (u *confirmUC) ConfirmSubscription(ctx context.Context, userID string, proof PaymentProof) (SettlementAction, error) {
	defer logging.TraceDuration(u.log, "ConfirmUC.ConfirmSubscription")()
	started := time.Now()
	kind := string(model.OrderKindSubscription)
	if userID == "" {
		return "", domain.ErrUnauthenticated
	}
	if err := u.verify(ctx, kind, proof, started); err != nil {
		return "", err
	}

	row, err := u.subs.FindByOrderID(ctx, repository.NoTX, proof.OrderID)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.ObserveVerify(kind, "fail", "no_pending", started)
		return "", fmt.Errorf("no subscription for order %s: %w", proof.OrderID, domain.ErrNotFound)
	}
	if err != nil {
		metrics.ObserveVerify(kind, "fail", "store_error", started)
		return "", err
	}
	if row.UserID != userID {
		metrics.ObserveVerify(kind, "fail", "order_mismatch", started)
		logging.With(ctx, u.log).Warn().
			Str("order_id", logging.Redact(proof.OrderID, u.dev)).
			Msg("subscription order belongs to another user")
		return "", fmt.Errorf("subscription order %s: %w", proof.OrderID, domain.ErrForbidden)
	}

	action, err := u.settle.ActivateSubscription(ctx, SourceClient, proof.OrderID, proof.PaymentID, userID, row.Amount)
	if err != nil {
		metrics.ObserveVerify(kind, "fail", "store_error", started)
		return "", err
	}
	metrics.ObserveVerify(kind, "ok", "", started)
	return action, nil
}

func (u *confirmUC) verify(ctx context.Context, kind string, proof PaymentProof, started time.Time) error {
	log := logging.With(ctx, u.log)
	if u.keySecret == "" {
		metrics.ObserveVerify(kind, "fail", "missing_secret", started)
		log.Error().Msg("payment key secret is not configured; refusing to confirm payments")
		return fmt.Errorf("payment key secret missing: %w", domain.ErrConfiguration)
	}
	if proof.OrderID == "" || proof.PaymentID == "" {
		metrics.ObserveVerify(kind, "fail", "bad_json", started)
		return domain.ErrInvalidArgument
	}
	ok, err := security.VerifySignature(security.PaymentMessage(proof.OrderID, proof.PaymentID), proof.Signature, u.keySecret)
	if err != nil && !errors.Is(err, security.ErrMalformedSignature) {
		metrics.ObserveVerify(kind, "fail", "unknown", started)
		return err
	}
	if !ok {
		metrics.ObserveVerify(kind, "fail", "bad_signature", started)
		log.Warn().
			Str("order_id", logging.Redact(proof.OrderID, u.dev)).
			Str("payment_id", logging.Redact(proof.PaymentID, u.dev)).
			Msg("payment signature rejected")
		return domain.ErrInvalidSignature
	}
	return nil
}
