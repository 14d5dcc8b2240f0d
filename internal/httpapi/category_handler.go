package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"storefront-api/internal/category"
)

type categoryView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCategoryView(c *category.Category) categoryView {
	return categoryView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

type createCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	var filter *string
	if v := r.URL.Query().Get("name"); v != "" {
		filter = &v
	}

	var limitPtr, pagePtr *int32
	if limit, page := queryPagination(r); limit > 0 || page > 0 {
		if limit > 0 {
			limitPtr = &limit
		}
		if page > 0 {
			pagePtr = &page
		}
	}

	categories, err := h.CategorySvc.GetCategories(r.Context(), filter, limitPtr, pagePtr)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, toCategoryView(c))
	}

	respondOK(w, http.StatusOK, map[string]any{"categories": views}, "")
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidationError, "invalid request body")
		return
	}

	c, err := h.CategorySvc.AddCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondOK(w, http.StatusCreated, toCategoryView(c), "category created successfully")
}
