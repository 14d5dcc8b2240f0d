package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// -- Resource State --
	ErrCartItemNotFound = errors.New("cart item not found")
)
