package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"storefront-api/internal/order"

	"github.com/shopspring/decimal"
)

type orderItemView struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type orderView struct {
	ID        int64           `json:"id"`
	Number    string          `json:"order_number"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	Items     []orderItemView `json:"items,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type orderListResponse struct {
	Orders []orderView `json:"orders"`
	Total  int64       `json:"total"`
	Page   int32       `json:"page"`
	Limit  int32       `json:"limit"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func toOrderView(o *order.Order, withItems bool) orderView {
	view := orderView{
		ID:        o.ID,
		Number:    o.Number,
		Status:    string(o.Status),
		Total:     o.Total,
		ItemCount: o.ItemsCount(),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if withItems {
		view.Items = make([]orderItemView, 0, len(o.Items))
		for _, item := range o.Items {
			view.Items = append(view.Items, orderItemView{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Subtotal:    item.Subtotal(),
			})
		}
	}
	return view
}

// CreateOrder is the checkout endpoint: it turns the caller's cart into
// an order atomically, decrementing stock and clearing the cart.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	o, err := h.OrderSvc.CreateFromCart(r.Context(), userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusCreated, toOrderView(o, true), "order created successfully")
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var status *order.Status
	if v := r.URL.Query().Get("status"); v != "" {
		parsed, valid := order.ParseStatus(v)
		if !valid {
			respondError(w, http.StatusBadRequest, codeValidationError, "invalid status filter")
			return
		}
		status = &parsed
	}

	limit, page := queryPagination(r)

	orders, total, err := h.OrderSvc.List(r.Context(), userID, status, limit, page)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o, false))
	}

	respondOK(w, http.StatusOK, orderListResponse{
		Orders: views,
		Total:  total,
		Page:   max32(page, 1),
		Limit:  limit,
	}, "")
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.OrderSvc.Get(r.Context(), userID, id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, toOrderView(o, true), "")
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.OrderSvc.Cancel(r.Context(), userID, id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, toOrderView(o, true), "order cancelled")
}

// UpdateOrderStatus applies an arbitrary allowed transition. Reserved
// for admins; customers use the cancel endpoint.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "invalid request body")
		return
	}

	next, valid := order.ParseStatus(req.Status)
	if !valid {
		respondError(w, http.StatusBadRequest, codeValidationError, "invalid status value")
		return
	}

	o, err := h.OrderSvc.UpdateStatus(r.Context(), id, next)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, toOrderView(o, true), "order status updated")
}
