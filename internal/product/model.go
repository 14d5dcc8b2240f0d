package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64
	Name        string
	Description *string
	Price       decimal.Decimal
	Stock       int
	CategoryID  *int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type GetProductOptions struct {
	ProductID       int64
	IncludeInactive bool
}

type ListOptions struct {
	CategoryID *int64
	ActiveOnly bool
	Limit      int32
	Page       int32
}

type SearchOptions struct {
	Query      string
	CategoryID *int64
	Limit      int32
	Page       int32
}

type CreateProductParams struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Stock       int
	CategoryID  *int64
}

type UpdateProductParams struct {
	ProductID   int64
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *int64
	IsActive    *bool
}

func (p UpdateProductParams) hasAnyField() bool {
	return p.Name != nil ||
		p.Description != nil ||
		p.Price != nil ||
		p.Stock != nil ||
		p.CategoryID != nil ||
		p.IsActive != nil
}
