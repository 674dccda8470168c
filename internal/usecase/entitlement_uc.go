package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/logging"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/metrics"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// EntitlementUseCase is the single authority for "may this user read this note".
type EntitlementUseCase interface {
	// Resolve applies anonymous, admin, subscription, purchase in that order.
	// A nil userID is an anonymous requester.
	Resolve(ctx context.Context, userID *string, noteID string) (model.Decision, error)
	// ReadNote returns public metadata and, only on grant, an asset URL.
	ReadNote(ctx context.Context, userID *string, noteID string) (*model.NoteView, error)
	// SubscriptionStatus is Resolve without the per-note purchase check.
	SubscriptionStatus(ctx context.Context, userID string) (*model.SubscriptionState, error)
	// Purchases lists the caller's completed purchases, newest first.
	Purchases(ctx context.Context, userID string) ([]*model.Purchase, error)
}

type entitlementUC struct {
	notes     repository.NoteRepository
	purchases repository.PurchaseRepository
	subs      repository.SubscriptionRepository
	roles     roleAuthority
	issuer    *AssetIssuer
	now       func() time.Time
	log       *zerolog.Logger
}

func NewEntitlementUseCase(
	notes repository.NoteRepository,
	purchases repository.PurchaseRepository,
	subs repository.SubscriptionRepository,
	profiles repository.ProfileRepository,
	issuer *AssetIssuer,
	clock func() time.Time,
	logger *zerolog.Logger,
) *entitlementUC {
	if clock == nil {
		clock = time.Now
	}
	return &entitlementUC{
		notes:     notes,
		purchases: purchases,
		subs:      subs,
		roles:     roleAuthority{profiles: profiles},
		issuer:    issuer,
		now:       clock,
		log:       logger,
	}
}

func (u *entitlementUC) Resolve(ctx context.Context, userID *string, noteID string) (model.Decision, error) {
	defer logging.TraceDuration(u.log, "EntitlementUC.Resolve")()
	if userID == nil || *userID == "" {
		return model.Decision{Reason: model.AccessNone}, nil
	}
	uid := *userID

	reason, _, err := u.standing(ctx, uid)
	if err != nil {
		return model.Decision{}, err
	}
	if reason != model.AccessNone {
		return model.Decision{Reason: reason}, nil
	}

	owned, err := u.purchases.ExistsCompleted(ctx, repository.NoTX, uid, noteID)
	if err != nil {
		return model.Decision{}, err
	}
	if owned {
		return model.Decision{Reason: model.AccessPurchase}, nil
	}
	return model.Decision{Reason: model.AccessNone}, nil
}

// standing resolves the note-independent part: admin, then a subscription in force.
func (u *entitlementUC) standing(ctx context.Context, userID string) (model.AccessReason, *model.Subscription, error) {
	admin, err := u.roles.isAdmin(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if admin {
		return model.AccessAdmin, nil, nil
	}
	now := u.now()
	sub, err := u.subs.FindInForce(ctx, repository.NoTX, userID, now)
	switch {
	case err == nil && sub.InForce(now):
		return model.AccessSubscription, sub, nil
	case err == nil, errors.Is(err, domain.ErrNotFound):
		return model.AccessNone, nil, nil
	default:
		return "", nil, err
	}
}

func (u *entitlementUC) ReadNote(ctx context.Context, userID *string, noteID string) (*model.NoteView, error) {
	defer logging.TraceDuration(u.log, "EntitlementUC.ReadNote")()
	if noteID == "" {
		return nil, domain.ErrInvalidArgument
	}
	note, err := u.notes.FindPublic(ctx, repository.NoTX, noteID)
	if err != nil {
		return nil, err
	}
	dec, err := u.Resolve(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	metrics.IncEntitlementDecision(string(dec.Reason))

	view := &model.NoteView{Note: note, Access: dec}
	if !dec.Granted() {
		return view, nil
	}

	ref, err := u.notes.FindAssetRef(ctx, repository.NoTX, noteID)
	if errors.Is(err, domain.ErrNotFound) {
		logging.With(ctx, u.log).Warn().Str("note_id", noteID).Msg("granted note has no file")
		return view, nil
	}
	if err != nil {
		return nil, err
	}
	view.AssetURL, view.Signed = u.issuer.Issue(ctx, ref)
	return view, nil
}

func (u *entitlementUC) SubscriptionStatus(ctx context.Context, userID string) (*model.SubscriptionState, error) {
	defer logging.TraceDuration(u.log, "EntitlementUC.SubscriptionStatus")()
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	reason, sub, err := u.standing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.SubscriptionState{
		IsSubscribed: reason == model.AccessAdmin || reason == model.AccessSubscription,
		IsAdmin:      reason == model.AccessAdmin,
		Subscription: sub,
	}, nil
}

func (u *entitlementUC) Purchases(ctx context.Context, userID string) ([]*model.Purchase, error) {
	defer logging.TraceDuration(u.log, "EntitlementUC.Purchases")()
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return u.purchases.ListByUser(ctx, repository.NoTX, userID)
}
