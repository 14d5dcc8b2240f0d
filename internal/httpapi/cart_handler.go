package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"storefront-api/internal/cart"

	"github.com/shopspring/decimal"
)

type cartItemView struct {
	ItemID      int64           `json:"item_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	AddedAt     time.Time       `json:"added_at"`
}

type cartViewResponse struct {
	Items []cartItemView  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type cartTotalResponse struct {
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
	UniqueItems int             `json:"unique_items"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func toCartView(rows []cart.CartRow) cartViewResponse {
	resp := cartViewResponse{
		Items: make([]cartItemView, 0, len(rows)),
		Total: decimal.Zero,
	}
	for _, row := range rows {
		subtotal := row.Subtotal()
		resp.Items = append(resp.Items, cartItemView{
			ItemID:      row.ItemID,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			UnitPrice:   row.UnitPrice,
			Quantity:    row.Quantity,
			Subtotal:    subtotal,
			AddedAt:     row.CreatedAt,
		})
		resp.Total = resp.Total.Add(subtotal)
	}
	return resp
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	rows, err := h.CartSvc.List(r.Context(), userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, toCartView(rows), "")
}

func (h *Handler) GetCartTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.CartSvc.Total(r.Context(), userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, cartTotalResponse{
		Total:       summary.Total,
		ItemCount:   summary.ItemCount,
		UniqueItems: summary.UniqueItems,
	}, "")
}

// AddToCart merges the requested quantity into the user's cart.
// A missing body defaults to quantity 1.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	req := cartQuantityRequest{Quantity: 1}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, codeValidationError, "invalid request body")
			return
		}
	}

	if _, err := h.CartSvc.Add(r.Context(), userID, productID, req.Quantity); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusCreated, nil, "item added to cart")
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var req cartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "invalid request body")
		return
	}

	if err := h.CartSvc.UpdateQuantity(r.Context(), userID, productID, req.Quantity); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, nil, "cart item updated")
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.CartSvc.Remove(r.Context(), userID, productID); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, nil, "item removed from cart")
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.CartSvc.Clear(r.Context(), userID); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, nil, "cart cleared")
}
