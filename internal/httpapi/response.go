package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront-api/internal/cart"
	"storefront-api/internal/category"
	"storefront-api/internal/logger"
	"storefront-api/internal/order"
	"storefront-api/internal/product"
	"storefront-api/internal/user"

	"go.uber.org/zap"
)

// Envelope is the response shape shared by every endpoint.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// Error codes exchanged over the boundary.
const (
	codeNotFound          = "NOT_FOUND"
	codeInsufficientStock = "INSUFFICIENT_STOCK"
	codeEmptyCart         = "EMPTY_CART"
	codeInvalidTransition = "INVALID_TRANSITION"
	codeValidationError   = "VALIDATION_ERROR"
	codeUnauthorized      = "UNAUTHORIZED"
	codeForbidden         = "FORBIDDEN"
	codeConflict          = "CONFLICT"
	codeInternal          = "INTERNAL_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondOK(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Envelope{
		Success:   false,
		Message:   message,
		ErrorCode: code,
	})
}

// respondDomainError maps a core error onto the envelope. The services
// only report structured error kinds; phrasing lives here.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *product.StockError

	switch {
	case errors.As(err, &stockErr):
		respondError(w, http.StatusConflict, codeInsufficientStock, stockErr.Error())

	case errors.Is(err, product.ErrInsufficientStock):
		respondError(w, http.StatusConflict, codeInsufficientStock, "insufficient stock")

	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, codeEmptyCart, "cart is empty")

	case errors.Is(err, order.ErrInvalidTransition):
		respondError(w, http.StatusConflict, codeInvalidTransition, err.Error())

	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, category.ErrCategoryNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, err.Error())

	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, product.ErrNoFieldsToUpdate),
		errors.Is(err, product.ErrInvalidInput),
		errors.Is(err, category.ErrInvalidInput),
		errors.Is(err, user.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, codeValidationError, err.Error())

	case errors.Is(err, user.ErrUsernameExists),
		errors.Is(err, user.ErrEmailExists),
		errors.Is(err, category.ErrCategoryExists):
		respondError(w, http.StatusConflict, codeConflict, err.Error())

	case errors.Is(err, user.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())

	default:
		logger.FromCtx(r.Context()).Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}
