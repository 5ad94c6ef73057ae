package shop

import (
	"context"

	"github.com/roach88/storefront/internal/model"
)

// Orders is the logged-in user's order history.
type Orders struct {
	deps Deps
}

// NewOrders creates the order history service.
func NewOrders(d Deps) *Orders {
	return &Orders{deps: d}
}

// Mine lists the orders of the logged-in user.
func (o *Orders) Mine(ctx context.Context) ([]model.Order, error) {
	const returnPath = "/orders"
	u, tok, err := o.deps.user(ctx, returnPath)
	if err != nil {
		return nil, err
	}
	orders, err := o.deps.Client.UserOrders(ctx, tok, u.ID)
	if err != nil {
		return nil, o.deps.remote(ctx, "list orders", returnPath, err)
	}
	return orders, nil
}
