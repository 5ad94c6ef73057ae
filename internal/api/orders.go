package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/roach88/storefront/internal/model"
)

// Checkout asks the service to price the current cart.
func (c *Client) Checkout(ctx context.Context, token string) (model.CheckoutSummary, error) {
	var out model.CheckoutSummary
	err := c.do(ctx, http.MethodPost, "/orders/checkout", nil, token, nil, &out)
	return out, err
}

// ConfirmOrder places an order for the current cart. The service empties
// the cart on success.
func (c *Client) ConfirmOrder(ctx context.Context, token, shippingAddress string) (model.Order, error) {
	body := struct {
		ShippingAddress string `json:"shippingAddress"`
	}{shippingAddress}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/orders/confirm", nil, token, body, &raw); err != nil {
		return model.Order{}, err
	}
	// Older service versions answer with a bare message instead of the order.
	var out model.Order
	_ = json.Unmarshal(raw, &out)
	return out, nil
}

// UserOrders lists the orders of userID.
func (c *Client) UserOrders(ctx context.Context, token string, userID int64) ([]model.Order, error) {
	var out []model.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", userID), nil, token, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Orders lists every order (admin view).
func (c *Client) Orders(ctx context.Context, token string) ([]model.Order, error) {
	var out []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// UpdateOrderStatus moves order id to status.
func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id int64, status model.OrderStatus) error {
	body := struct {
		Status model.OrderStatus `json:"status"`
	}{status}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), nil, token, body, nil)
}
