package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
	"github.com/hemanthreddykoduru/StudentNotes/internal/usecase"
)

type createOrderRequest struct {
	NoteID string `json:"noteId"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	NoteID    string `json:"noteId,omitempty"`
}

func (v verifyRequest) proof() usecase.PaymentProof {
	return usecase.PaymentProof{OrderID: v.OrderID, PaymentID: v.PaymentID, Signature: v.Signature}
}

type successResponse struct {
	Success bool `json:"success"`
}

type subscriptionStatusResponse struct {
	IsSubscribed bool       `json:"isSubscribed"`
	IsAdmin      bool       `json:"isAdmin,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
}

type purchaseResponse struct {
	ID        string      `json:"id"`
	NoteID    string      `json:"noteId"`
	Amount    json.Number `json:"amount"` // rupees
	CreatedAt time.Time   `json:"createdAt"`
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.ErrInvalidArgument
	}
	return nil
}

func toOrderResponse(h *usecase.OrderHandle) orderResponse {
	return orderResponse{ID: h.OrderID, Amount: h.Amount.Paise(), Currency: h.Currency, KeyID: h.KeyID}
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.NoteID) == "" {
		s.fail(w, r, domain.ErrInvalidArgument)
		return
	}
	h, err := s.deps.Orders.CreatePurchaseOrder(r.Context(), UserID(r.Context()), req.NoteID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(h))
}

func (s *Server) handleCreateSubscriptionOrder(w http.ResponseWriter, r *http.Request) {
	h, err := s.deps.Orders.CreateSubscriptionOrder(r.Context(), UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(h))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeBody(r, &req); err != nil {
		s.failVerify(w, r, err)
		return
	}
	if req.NoteID == "" {
		s.failVerify(w, r, domain.ErrInvalidArgument)
		return
	}
	if _, err := s.deps.Confirm.ConfirmPurchase(r.Context(), UserID(r.Context()), req.NoteID, req.proof()); err != nil {
		s.failVerify(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleVerifySubscription(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeBody(r, &req); err != nil {
		s.failVerify(w, r, err)
		return
	}
	if _, err := s.deps.Confirm.ConfirmSubscription(r.Context(), UserID(r.Context()), req.proof()); err != nil {
		s.failVerify(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "payload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request"})
		return
	}

	out, err := s.deps.Webhooks.HandleWebhook(r.Context(), body, r.Header.Get("X-Razorpay-Signature"))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidSignature):
		s.logger(r).Warn().Msg("webhook signature rejected")
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid signature"})
		return
	case errors.Is(err, domain.ErrConfiguration):
		s.logger(r).Error().Msg("webhook secret is not configured")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	default:
		s.logger(r).Error().Err(err).Str("order_id", out.OrderID).Msg("webhook processing failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Entitlements.SubscriptionStatus(r.Context(), UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := subscriptionStatusResponse{IsSubscribed: st.IsSubscribed, IsAdmin: st.IsAdmin}
	if st.Subscription != nil {
		end := st.Subscription.EndDate
		resp.EndDate = &end
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePurchases(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Entitlements.Purchases(r.Context(), UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]purchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, purchaseResponse{
			ID:        p.ID,
			NoteID:    p.NoteID,
			Amount:    json.Number(p.Amount.Rupees()),
			CreatedAt: p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
