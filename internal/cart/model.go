package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID        int64
	UserID    int64
	ProductID int64
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartRow is a cart item joined with its product, as returned to callers.
type CartRow struct {
	ItemID      int64
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Stock       int
	Quantity    int
	CreatedAt   time.Time
}

// Subtotal is quantity times the product's current price.
func (r CartRow) Subtotal() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

type CartSummary struct {
	Total       decimal.Decimal
	ItemCount   int
	UniqueItems int
}
