package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"storefront-api/internal/product"
	"storefront-api/internal/utils"

	"github.com/shopspring/decimal"
)

type productView struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *int64          `json:"category_id"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toProductView(p *product.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductViews(products []*product.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return views
}

type createProductRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *int64          `json:"category_id"`
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	CategoryID  *int64           `json:"category_id"`
	IsActive    *bool            `json:"is_active"`
}

type productListResponse struct {
	Products []productView `json:"products"`
	Page     int32         `json:"page"`
	Limit    int32         `json:"limit"`
}

// queryPagination reads limit/page query params, leaving zero values
// for the service layer to normalize.
func queryPagination(r *http.Request) (limit, page int32) {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			limit = int32(n)
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			page = int32(n)
		}
	}
	return limit, page
}

func queryCategoryID(r *http.Request) *int64 {
	v := r.URL.Query().Get("category_id")
	if v == "" {
		return nil
	}
	id, err := utils.ToInt64(v)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, page := queryPagination(r)

	// Inactive products stay hidden unless explicitly requested.
	activeOnly := r.URL.Query().Get("active_only") != "false"

	opts := product.ListOptions{
		CategoryID: queryCategoryID(r),
		ActiveOnly: activeOnly,
		Limit:      limit,
		Page:       page,
	}

	products, err := h.ProductSvc.GetList(r.Context(), opts)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, productListResponse{
		Products: toProductViews(products),
		Page:     max32(opts.Page, 1),
		Limit:    opts.Limit,
	}, "")
}

func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, codeValidationError, "search query is required")
		return
	}

	limit, page := queryPagination(r)

	products, err := h.ProductSvc.Search(r.Context(), product.SearchOptions{
		Query:      query,
		CategoryID: queryCategoryID(r),
		Limit:      limit,
		Page:       page,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, productListResponse{
		Products: toProductViews(products),
		Page:     max32(page, 1),
		Limit:    limit,
	}, "")
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.ProductSvc.GetProduct(r.Context(), id, false)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, toProductView(p), "")
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "invalid request body")
		return
	}

	p, err := h.ProductSvc.Create(r.Context(), product.CreateProductParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusCreated, toProductView(p), "product created successfully")
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "invalid request body")
		return
	}

	p, err := h.ProductSvc.Update(r.Context(), product.UpdateProductParams{
		ProductID:   id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, toProductView(p), "product updated successfully")
}

// DeleteProduct soft-deletes: the product is deactivated so existing
// order history keeps referencing it.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ProductSvc.Deactivate(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusOK, nil, "product deleted successfully")
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
