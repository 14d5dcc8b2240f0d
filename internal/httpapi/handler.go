package httpapi

import (
	"net/http"

	"storefront-api/internal/cart"
	"storefront-api/internal/category"
	"storefront-api/internal/order"
	"storefront-api/internal/product"
	"storefront-api/internal/user"
	"storefront-api/internal/utils"
)

// Handler bundles the domain services behind the REST surface.
type Handler struct {
	UserSvc     user.Service
	ProductSvc  product.Service
	CategorySvc category.Service
	CartSvc     cart.Service
	OrderSvc    order.Service
}

// NewRouter builds the ServeMux with all API routes.
func NewRouter(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/search", h.SearchProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("POST /api/products", h.CreateProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.DeleteProduct)

	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("POST /api/categories", h.CreateCategory)

	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("GET /api/cart/total", h.GetCartTotal)
	mux.HandleFunc("POST /api/cart/items/{productID}", h.AddToCart)
	mux.HandleFunc("PUT /api/cart/items/{productID}", h.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", h.RemoveFromCart)
	mux.HandleFunc("POST /api/cart/clear", h.ClearCart)

	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("PUT /api/orders/{id}/cancel", h.CancelOrder)
	mux.HandleFunc("PUT /api/orders/{id}/status", h.UpdateOrderStatus)

	return mux
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, map[string]string{"status": "healthy"}, "")
}

// requireUser resolves the authenticated user or writes an unauthorized
// envelope. Session handling itself lives in the auth middleware; the
// handlers only consume the user id it placed in the context.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return 0, false
	}
	return userID, true
}

// requireAdmin resolves an authenticated admin user or writes the
// appropriate error envelope.
func requireAdmin(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return 0, false
	}
	if utils.GetUserRoleFromContext(r.Context()) != "admin" {
		respondError(w, http.StatusForbidden, codeForbidden, "admin access required")
		return 0, false
	}
	return userID, true
}

// pathID parses the named path segment as an int64 id.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := utils.ToInt64(r.PathValue(name))
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, codeValidationError, "invalid "+name)
		return 0, false
	}
	return id, true
}
