package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/digitaldudes/ottcart/internal/catalog"
	"github.com/digitaldudes/ottcart/internal/checkout"
	"github.com/digitaldudes/ottcart/pkg/circuitbreaker"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.Any("err", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

const maxBodySize = 1 << 20 // 1MB

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondErrorDetails(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", err.Error())
		return false
	}
	return true
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// handleError maps domain errors to HTTP status codes.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		httpStatus int
		code       string
	)

	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		httpStatus, code = http.StatusNotFound, "product_not_found"
	case errors.Is(err, catalog.ErrProductUnavailable):
		httpStatus, code = http.StatusConflict, "product_unavailable"
	case errors.Is(err, catalog.ErrProfileNotFound):
		httpStatus, code = http.StatusBadRequest, "invalid_profile"
	case errors.Is(err, catalog.ErrPricingNotFound):
		httpStatus, code = http.StatusBadRequest, "invalid_pricing"
	case errors.Is(err, checkout.ErrEmptyCart):
		httpStatus, code = http.StatusUnprocessableEntity, "empty_cart"
	case errors.Is(err, checkout.ErrInvalidPaymentMethod):
		httpStatus, code = http.StatusBadRequest, "invalid_payment_method"
	case errors.Is(err, checkout.ErrReceiptRequired):
		httpStatus, code = http.StatusBadRequest, "receipt_required"
	case errors.Is(err, checkout.ErrCustomerEmailRequired):
		httpStatus, code = http.StatusUnprocessableEntity, "customer_email_required"
	case errors.Is(err, circuitbreaker.ErrOpen):
		httpStatus, code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	default:
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}
