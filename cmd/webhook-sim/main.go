// Command webhook-sim posts a signed order.paid event to a running server,
// or prints the checkout signature for a client-side confirmation.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/security"
)

type entity struct {
	Entity map[string]any `json:"entity"`
}

type payload struct {
	Payment entity `json:"payment"`
	Order   entity `json:"order"`
}

type event struct {
	Entity    string   `json:"entity"`
	Event     string   `json:"event"`
	Contains  []string `json:"contains"`
	Payload   payload  `json:"payload"`
	CreatedAt int64    `json:"created_at"`
}

func main() {
	url := flag.String("url", "http://localhost:5000/api/payments/webhook", "webhook endpoint")
	secret := flag.String("secret", os.Getenv("RAZORPAY_WEBHOOK_SECRET"), "webhook secret")
	keySecret := flag.String("key-secret", os.Getenv("RAZORPAY_KEY_SECRET"), "key secret, used with -confirm")
	orderID := flag.String("order", "", "gateway order id (required)")
	paymentID := flag.String("payment", "", "gateway payment id; generated when empty")
	kind := flag.String("kind", "note", "note|subscription")
	userID := flag.String("user", "", "user id written into order notes")
	noteID := flag.String("note", "", "note id, for kind=note")
	paise := flag.Int64("amount", 10000, "amount in paise")
	confirm := flag.Bool("confirm", false, "print the client confirmation signature and exit")
	flag.Parse()

	if *orderID == "" {
		fail("-order is required")
	}
	if *paymentID == "" {
		*paymentID = "pay_" + ulid.Make().String()
	}

	if *confirm {
		if *keySecret == "" {
			fail("-key-secret is required with -confirm")
		}
		sig := security.Sign(security.PaymentMessage(*orderID, *paymentID), *keySecret)
		out, _ := json.MarshalIndent(map[string]string{
			"razorpay_order_id":   *orderID,
			"razorpay_payment_id": *paymentID,
			"razorpay_signature":  sig,
		}, "", "  ")
		fmt.Println(string(out))
		return
	}

	if *secret == "" {
		fail("-secret is required")
	}
	notes := map[string]string{"type": *kind, "userId": *userID}
	if *noteID != "" {
		notes["noteId"] = *noteID
	}

	var ev event
	ev.Entity = "event"
	ev.Event = "order.paid"
	ev.Contains = []string{"payment", "order"}
	ev.CreatedAt = time.Now().Unix()
	ev.Payload.Payment.Entity = map[string]any{
		"id": *paymentID, "entity": "payment", "amount": *paise, "currency": "INR",
		"status": "captured", "order_id": *orderID, "notes": notes,
	}
	ev.Payload.Order.Entity = map[string]any{
		"id": *orderID, "entity": "order", "amount": *paise, "amount_paid": *paise,
		"currency": "INR", "status": "paid", "notes": notes,
	}
	body, err := json.Marshal(ev)
	if err != nil {
		fail(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		fail(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Razorpay-Signature", security.Sign(body, *secret))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fail(err.Error())
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	fmt.Printf("%s %s\n", resp.Status, bytes.TrimSpace(respBody))
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "webhook-sim:", msg)
	os.Exit(2)
}
