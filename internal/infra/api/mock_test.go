//go:build !integration

package api

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/model"
	"github.com/hemanthreddykoduru/StudentNotes/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type MockOrderUC struct {
	PurchaseFunc     func(ctx context.Context, userID, noteID string) (*usecase.OrderHandle, error)
	SubscriptionFunc func(ctx context.Context, userID string) (*usecase.OrderHandle, error)
}

func (m *MockOrderUC) CreatePurchaseOrder(ctx context.Context, userID, noteID string) (*usecase.OrderHandle, error) {
	return m.PurchaseFunc(ctx, userID, noteID)
}

func (m *MockOrderUC) CreateSubscriptionOrder(ctx context.Context, userID string) (*usecase.OrderHandle, error) {
	return m.SubscriptionFunc(ctx, userID)
}

type MockConfirmUC struct {
	PurchaseFunc     func(ctx context.Context, userID, noteID string, p usecase.PaymentProof) (usecase.SettlementAction, error)
	SubscriptionFunc func(ctx context.Context, userID string, p usecase.PaymentProof) (usecase.SettlementAction, error)
}

func (m *MockConfirmUC) ConfirmPurchase(ctx context.Context, userID, noteID string, p usecase.PaymentProof) (usecase.SettlementAction, error) {
	return m.PurchaseFunc(ctx, userID, noteID, p)
}

func (m *MockConfirmUC) ConfirmSubscription(ctx context.Context, userID string, p usecase.PaymentProof) (usecase.SettlementAction, error) {
	return m.SubscriptionFunc(ctx, userID, p)
}

type MockWebhookUC struct {
	HandleFunc func(ctx context.Context, body []byte, sig string) (usecase.WebhookOutcome, error)
}

func (m *MockWebhookUC) HandleWebhook(ctx context.Context, body []byte, sig string) (usecase.WebhookOutcome, error) {
	return m.HandleFunc(ctx, body, sig)
}

type MockEntitlementUC struct {
	ReadNoteFunc  func(ctx context.Context, userID *string, noteID string) (*model.NoteView, error)
	StatusFunc    func(ctx context.Context, userID string) (*model.SubscriptionState, error)
	PurchasesFunc func(ctx context.Context, userID string) ([]*model.Purchase, error)
}

func (m *MockEntitlementUC) Resolve(ctx context.Context, userID *string, noteID string) (model.Decision, error) {
	v, err := m.ReadNoteFunc(ctx, userID, noteID)
	if err != nil {
		return model.Decision{Reason: model.AccessNone}, err
	}
	return v.Access, nil
}

func (m *MockEntitlementUC) ReadNote(ctx context.Context, userID *string, noteID string) (*model.NoteView, error) {
	return m.ReadNoteFunc(ctx, userID, noteID)
}

func (m *MockEntitlementUC) SubscriptionStatus(ctx context.Context, userID string) (*model.SubscriptionState, error) {
	return m.StatusFunc(ctx, userID)
}

func (m *MockEntitlementUC) Purchases(ctx context.Context, userID string) ([]*model.Purchase, error) {
	return m.PurchasesFunc(ctx, userID)
}

type MockConfigUC struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, userID, key, value string) error
}

func (m *MockConfigUC) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}

func (m *MockConfigUC) Set(ctx context.Context, userID, key, value string) error {
	return m.SetFunc(ctx, userID, key, value)
}
