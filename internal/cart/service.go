package cart

import (
	"context"

	"storefront-api/internal/product"

	"github.com/shopspring/decimal"
)

// Service defines the business logic for carts.
type Service interface {
	Add(ctx context.Context, userID, productID int64, quantity int) (*CartItem, error)
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
	List(ctx context.Context, userID int64) ([]CartRow, error)
	Total(ctx context.Context, userID int64) (CartSummary, error)
}

// service implements the Service interface
type service struct {
	repo        Repository
	productRepo product.Repository
}

// NewService creates a new cart service
func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

// Add puts a product into the user's cart, merging with an existing row
// if there is one. Stock is only validated here, never decremented; the
// decrement happens at checkout.
func (s *service) Add(ctx context.Context, userID, productID int64, quantity int) (*CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	// 1. Get product (only active products allowed)
	p, err := s.productRepo.GetProduct(ctx, product.GetProductOptions{
		ProductID: productID,
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}

	// 2. Get existing cart item (if any)
	item, err := s.repo.GetItem(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	// 3. Calculate final quantity
	finalQty := quantity
	if item != nil {
		finalQty += item.Quantity
	}

	// 4. Validate combined quantity against current stock
	if p.Stock < finalQty {
		return nil, &product.StockError{
			ProductID: productID,
			Requested: finalQty,
			Available: p.Stock,
		}
	}

	// 5. Create or update cart item
	if item == nil {
		return s.repo.CreateItem(ctx, userID, productID, quantity)
	}
	return s.repo.UpdateItemQuantity(ctx, item.ID, finalQty)
}

// UpdateQuantity replaces the quantity of an existing cart item.
// Zero or negative quantities are rejected; use Remove instead.
func (s *service) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	p, err := s.productRepo.GetProduct(ctx, product.GetProductOptions{
		ProductID: productID,
	})
	if err != nil {
		return err
	}
	if p == nil {
		return product.ErrProductNotFound
	}

	if p.Stock < quantity {
		return &product.StockError{
			ProductID: productID,
			Requested: quantity,
			Available: p.Stock,
		}
	}

	return s.repo.SetQuantity(ctx, userID, productID, quantity)
}

// Remove deletes a product from the user's cart. Idempotent.
func (s *service) Remove(ctx context.Context, userID, productID int64) error {
	return s.repo.Remove(ctx, userID, productID)
}

// Clear removes all items for the given user.
func (s *service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

func (s *service) List(ctx context.Context, userID int64) ([]CartRow, error) {
	return s.repo.ListRows(ctx, userID)
}

// Total sums quantity times current product price across the cart.
// An empty cart yields a zero total.
func (s *service) Total(ctx context.Context, userID int64) (CartSummary, error) {
	rows, err := s.repo.ListRows(ctx, userID)
	if err != nil {
		return CartSummary{}, err
	}

	summary := CartSummary{Total: decimal.Zero}
	for _, row := range rows {
		summary.Total = summary.Total.Add(row.Subtotal())
		summary.ItemCount += row.Quantity
	}
	summary.UniqueItems = len(rows)

	return summary, nil
}
