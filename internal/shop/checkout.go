package shop

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/storefront/internal/model"
)

const checkoutPath = "/checkout"

// Summary is what the checkout page shows: the local cart after a fresh
// fetch next to the service's own computation.
type Summary struct {
	Lines      []model.CartLine      `json:"lines"`
	TotalItems int                   `json:"totalItems"`
	TotalPrice model.Price           `json:"totalPrice"`
	Server     model.CheckoutSummary `json:"server"`
}

// Checkout reviews and places orders.
type Checkout struct {
	deps Deps
}

// NewCheckout creates the checkout service.
func NewCheckout(d Deps) *Checkout {
	return &Checkout{deps: d}
}

// Summary refreshes the cart and asks the service for its checkout summary,
// both at once.
func (c *Checkout) Summary(ctx context.Context) (Summary, error) {
	tok, err := c.deps.credential(ctx, checkoutPath)
	if err != nil {
		return Summary{}, err
	}

	var server model.CheckoutSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.deps.Cart.FetchItems(gctx)
	})
	g.Go(func() error {
		s, err := c.deps.Client.Checkout(gctx, tok)
		if err != nil {
			return c.deps.remote(ctx, "checkout summary", checkoutPath, err)
		}
		server = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if c.deps.Session.Invalidated() {
		return Summary{}, ErrAuthRequired
	}

	st := c.deps.Cart.State()
	return Summary{
		Lines:      st.Lines,
		TotalItems: st.TotalItems(),
		TotalPrice: st.TotalPrice(),
		Server:     server,
	}, nil
}

// Confirm places the order. The local cart is cleared only once the service
// accepted it.
func (c *Checkout) Confirm(ctx context.Context, address string) (model.Order, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return model.Order{}, ErrAddressRequired
	}
	tok, err := c.deps.credential(ctx, checkoutPath)
	if err != nil {
		return model.Order{}, err
	}

	order, err := c.deps.Client.ConfirmOrder(ctx, tok, address)
	if err != nil {
		return model.Order{}, c.deps.remote(ctx, "confirm order", checkoutPath, err)
	}

	c.deps.Cart.ClearCart()
	c.deps.logger().Info("order placed", zap.Int64("order_id", order.ID))
	return order, nil
}
