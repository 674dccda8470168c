package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending SubscriptionStatus = "pending"
	SubscriptionStatusActive  SubscriptionStatus = "active"
)

// PlanPro is the only plan sold: unlimited access for one year.
const PlanPro = "pro"

// Subscription is a time-bounded grant covering every note for one user.
type Subscription struct {
	ID        string
	UserID    string
	PlanType  string
	StartDate time.Time
	EndDate   time.Time
	OrderID   string  // gateway order id, unique
	PaymentID *string // nil while pending
	Amount    Amount
	Status    SubscriptionStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPendingSubscription creates the audit row written when a subscription order
// is created. EndDate equals StartDate so the row never grants access by itself.
func NewPendingSubscription(userID, orderID string, amount Amount, now time.Time) (*Subscription, error) {
	if userID == "" || orderID == "" || amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now = now.UTC()
	return &Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		PlanType:  PlanPro,
		StartDate: now,
		EndDate:   now,
		OrderID:   orderID,
		Amount:    amount,
		Status:    SubscriptionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// InForce reports whether the subscription grants access at t.
// The end bound is exclusive.
func (s *Subscription) InForce(t time.Time) bool {
	if s == nil {
		return false
	}
	return s.Status == SubscriptionStatusActive && s.EndDate.After(t)
}

// Activation carries the final window applied on the pending -> active transition.
type Activation struct {
	OrderID   string
	PaymentID string
	UserID    string
	StartDate time.Time
	EndDate   time.Time
}

// NewActivation computes the active window starting at now.
func NewActivation(orderID, paymentID, userID string, now time.Time, years int) (Activation, error) {
	if orderID == "" || paymentID == "" || years <= 0 {
		return Activation{}, domain.ErrInvalidArgument
	}
	now = now.UTC()
	return Activation{
		OrderID:   orderID,
		PaymentID: paymentID,
		UserID:    userID,
		StartDate: now,
		EndDate:   now.AddDate(years, 0, 0),
	}, nil
}
