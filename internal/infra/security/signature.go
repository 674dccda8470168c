package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var (
	ErrMissingSecret      = errors.New("signature secret is not configured")
	ErrMalformedSignature = errors.New("signature is not a hex-encoded sha256 digest")
)

// PaymentMessage is the byte sequence the gateway signs for a checkout
// confirmation: "<order_id>|<payment_id>".
func PaymentMessage(orderID, paymentID string) []byte {
	return []byte(orderID + "|" + paymentID)
}

// Sign returns the hex HMAC-SHA256 of message under secret.
func Sign(message []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(message)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature recomputes the HMAC-SHA256 of message and compares it with
// the claimed hex signature in constant time. A well-formed mismatch is
// (false, nil); an error is returned only for malformed input.
//
// message must be the exact bytes the gateway signed. For webhooks that is the
// raw request body, never a re-encoded copy.
func VerifySignature(message []byte, signature, secret string) (bool, error) {
	if secret == "" {
		return false, ErrMissingSecret
	}
	claimed, err := hex.DecodeString(signature)
	if err != nil || len(claimed) != sha256.Size {
		return false, ErrMalformedSignature
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(message)
	return hmac.Equal(h.Sum(nil), claimed), nil
}
