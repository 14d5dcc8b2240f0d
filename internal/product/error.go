package product

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrInvalidInput      = errors.New("invalid input")
)

// StockError reports which product lacked stock and by how much.
type StockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available,
	)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}
