package http

import (
	"context"
	"net/http"
	"time"

	"github.com/digitaldudes/ottcart/internal/checkout"
)

type Checkouter interface {
	Checkout(ctx context.Context, sessionID string, req checkout.Request) (checkout.Order, error)
}

type CheckoutHandler struct {
	checkout Checkouter
	timeout  time.Duration
}

func NewCheckoutHandler(svc Checkouter, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: svc,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	PaymentMethod  string `json:"paymentMethod"`
	ReceiptRef     string `json:"receiptRef"`
	CustomerNotes  string `json:"customerNotes"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return
	}

	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	order, err := h.checkout.Checkout(ctx, sessionID, checkout.Request{
		PaymentMethod:  checkout.PaymentMethod(req.PaymentMethod),
		ReceiptRef:     req.ReceiptRef,
		CustomerNotes:  req.CustomerNotes,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}
