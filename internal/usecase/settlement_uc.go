package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/logging"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/metrics"
)

// Compile-time check
var _ SettlementUseCase = (*settlementUC)(nil)

// Source names the path a verified payment arrived on.
type Source string

const (
	SourceClient  Source = "client"
	SourceWebhook Source = "webhook"
)

// SettlementAction reports whether a settlement call changed state.
type SettlementAction string

const (
	SettlementApplied   SettlementAction = "applied"
	SettlementDuplicate SettlementAction = "duplicate"
)

// SettlementUseCase turns verified payments into entitlements. Both calls are
// idempotent on the gateway order id; a replay returns SettlementDuplicate.
// Callers must have verified the payment signature first.
type SettlementUseCase interface {
	RecordPurchase(ctx context.Context, src Source, orderID, paymentID, userID, noteID string, amount model.Amount) (SettlementAction, error)
	ActivateSubscription(ctx context.Context, src Source, orderID, paymentID, userID string, amount model.Amount) (SettlementAction, error)
}

type settlementUC struct {
	purchases repository.PurchaseRepository
	subs      repository.SubscriptionRepository
	tm        repository.TransactionManager
	years     int
	now       func() time.Time
	log       *zerolog.Logger
}

func NewSettlementUseCase(
	purchases repository.PurchaseRepository,
	subs repository.SubscriptionRepository,
	tm repository.TransactionManager,
	durationYears int,
	logger *zerolog.Logger,
) *settlementUC {
	if durationYears <= 0 {
		durationYears = 1
	}
	return &settlementUC{
		purchases: purchases,
		subs:      subs,
		tm:        tm,
		years:     durationYears,
		now:       time.Now,
		log:       logger,
	}
}

func (u *settlementUC) RecordPurchase(ctx context.Context, src Source, orderID, paymentID, userID, noteID string, amount model.Amount) (SettlementAction, error) {
	defer logging.TraceDuration(u.log, "SettlementUC.RecordPurchase")()
	p, err := model.NewCompletedPurchase(userID, noteID, orderID, paymentID, amount)
	if err != nil {
		return "", err
	}
	created, err := u.purchases.Insert(ctx, repository.NoTX, p)
	if err != nil {
		return "", fmt.Errorf("record purchase %s: %w", orderID, err)
	}
	action := SettlementDuplicate
	if created {
		action = SettlementApplied
		metrics.AddRevenue(string(model.OrderKindNote), amount.Paise())
	}
	metrics.IncSettlement(string(model.OrderKindNote), string(src), string(action))
	logging.With(ctx, u.log).Info().
		Str("source", string(src)).Str("order_id", orderID).Str("note_id", noteID).
		Str("amount", amount.Rupees()).Str("action", string(action)).
		Msg("purchase settlement")
	return action, nil
}

// ActivateSubscription moves the pending row to active. Only the webhook may
// insert an active row when no pending row exists, because its routing notes
// come from the signed body; the client path gets ErrNotFound and writes
// nothing. Both branches are guarded by the order_id constraint, so concurrent
// confirmations and webhooks apply exactly once.
func (u *settlementUC) ActivateSubscription(ctx context.Context, src Source, orderID, paymentID, userID string, amount model.Amount) (SettlementAction, error) {
	defer logging.TraceDuration(u.log, "SettlementUC.ActivateSubscription")()
	now := u.now()
	act, err := model.NewActivation(orderID, paymentID, userID, now, u.years)
	if err != nil {
		return "", err
	}

	action := SettlementDuplicate
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ok, err := u.subs.Activate(ctx, tx, act)
		if err != nil {
			return err
		}
		if ok {
			action = SettlementApplied
			return nil
		}

		existing, err := u.subs.FindByOrderID(ctx, tx, orderID)
		switch {
		case err == nil:
			if existing.Status == model.SubscriptionStatusActive {
				return nil
			}
			return fmt.Errorf("subscription %s stuck in %s: %w", orderID, existing.Status, domain.ErrOperationFailed)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		if src != SourceWebhook {
			return fmt.Errorf("no pending subscription for order %s: %w", orderID, domain.ErrNotFound)
		}
		if userID == "" {
			return fmt.Errorf("no pending subscription and no user for order %s: %w", orderID, domain.ErrInvalidArgument)
		}
		pay := paymentID
		s := &model.Subscription{
			ID:        uuid.NewString(),
			UserID:    userID,
			PlanType:  model.PlanPro,
			StartDate: act.StartDate,
			EndDate:   act.EndDate,
			OrderID:   orderID,
			PaymentID: &pay,
			Amount:    amount,
			Status:    model.SubscriptionStatusActive,
			CreatedAt: act.StartDate,
			UpdatedAt: act.StartDate,
		}
		created, err := u.subs.InsertActive(ctx, tx, s)
		if err != nil {
			return err
		}
		if created {
			action = SettlementApplied
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("activate subscription %s: %w", orderID, err)
	}

	if action == SettlementApplied {
		metrics.AddRevenue(string(model.OrderKindSubscription), amount.Paise())
	}
	metrics.IncSettlement(string(model.OrderKindSubscription), string(src), string(action))
	logging.With(ctx, u.log).Info().
		Str("source", string(src)).Str("order_id", orderID).Str("action", string(action)).
		Time("end_date", act.EndDate).
		Msg("subscription settlement")
	return action, nil
}
