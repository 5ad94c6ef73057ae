package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity is returned for quantities below 1. No request is made.
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")

	// ErrInsufficientStock is matched by *InsufficientStockError.
	ErrInsufficientStock = errors.New("cart: not enough stock available")

	// ErrNotFound means the service does not know the cart line or product.
	ErrNotFound = errors.New("cart: item not found")
)

// Error strings recorded in State.Error.
const (
	msgFetchFailed  = "failed to fetch cart items"
	msgAddFailed    = "failed to add item to cart"
	msgNoStock      = "not enough stock available"
	msgNotFound     = "cart item not found"
	msgUpdateFailed = "failed to update cart item quantity"
	msgRemoveFailed = "failed to remove cart item"
)

// InsufficientStockError reports a requested quantity above the product's
// current stock.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("cart: not enough stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Is reports whether target is ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
