package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
)

type PurchaseStatus string

const PurchaseStatusCompleted PurchaseStatus = "completed"

// Purchase is a permanent grant of one note to one user.
// It only ever exists in the completed state.
type Purchase struct {
	ID        string
	UserID    string
	NoteID    string
	PaymentID string // gateway payment id
	OrderID   string // gateway order id, unique
	Amount    Amount
	Status    PurchaseStatus
	CreatedAt time.Time
}

// NewCompletedPurchase builds the row written after a verified payment.
func NewCompletedPurchase(userID, noteID, orderID, paymentID string, amount Amount) (*Purchase, error) {
	if userID == "" || noteID == "" || orderID == "" || paymentID == "" || amount < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Purchase{
		ID:        uuid.NewString(),
		UserID:    userID,
		NoteID:    noteID,
		PaymentID: paymentID,
		OrderID:   orderID,
		Amount:    amount,
		Status:    PurchaseStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}, nil
}
