package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
)

// CurrencyINR is the only currency the marketplace charges in.
const CurrencyINR = "INR"

// Amount is a monetary value in minor units (paise). The gateway speaks paise;
// the database stores rupees as NUMERIC(10,2). Keep conversions on this type.
type Amount int64

// AmountFromRupees converts a whole-rupee price to paise.
func AmountFromRupees(rupees int64) Amount { return Amount(rupees * 100) }

// ParseRupees parses a decimal rupee string such as "50", "50.5" or "50.00".
func ParseRupees(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, domain.ErrInvalidArgument
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		return 0, domain.ErrInvalidArgument
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	r, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidArgument
	}
	var p int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, domain.ErrInvalidArgument
		}
		if len(frac) == 1 {
			frac += "0"
		}
		p, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, domain.ErrInvalidArgument
		}
	}
	return Amount(r*100 + p), nil
}

// Paise returns the amount in minor units, as sent to the gateway.
func (a Amount) Paise() int64 { return int64(a) }

// Rupees renders the amount as a fixed two-decimal rupee string ("50.00").
func (a Amount) Rupees() string {
	return fmt.Sprintf("%d.%02d", int64(a)/100, int64(a)%100)
}

func (a Amount) String() string { return a.Rupees() }

// OrderKind is written into gateway order notes so the webhook can route the event.
type OrderKind string

const (
	OrderKindNote         OrderKind = "note"
	OrderKindSubscription OrderKind = "subscription"
)

// Order is the gateway's view of an order. AmountPaid and Status are only
// meaningful on a fetched order.
type Order struct {
	ID         string // gateway order id, the idempotency key for settlement
	Amount     Amount
	AmountPaid Amount
	Currency   string
	Receipt    string
	Status     string
	Notes      map[string]string
}

// Covers reports whether the order was opened by userID for noteID.
func (o *Order) Covers(userID, noteID string) bool {
	if o == nil || userID == "" || noteID == "" {
		return false
	}
	return o.Notes["type"] == string(OrderKindNote) &&
		o.Notes["noteId"] == noteID &&
		o.Notes["userId"] == userID
}

// Settled returns the captured amount, or the order amount before capture.
func (o *Order) Settled() Amount {
	if o.AmountPaid > 0 {
		return o.AmountPaid
	}
	return o.Amount
}
