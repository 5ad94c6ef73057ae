package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/roach88/storefront/internal/model"
)

// MyCart fetches the authoritative cart of the token's owner.
func (c *Client) MyCart(ctx context.Context, token string) ([]model.CartLine, error) {
	var lines []model.CartLine
	if err := c.do(ctx, http.MethodGet, "/cart/my-cart", nil, token, nil, &lines); err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []model.CartLine{}
	}
	return lines, nil
}

// AddToCart adds quantity units of productID. The service merges into an
// existing line.
func (c *Client) AddToCart(ctx context.Context, token string, productID int64, quantity int) error {
	body := struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	}{productID, quantity}
	return c.do(ctx, http.MethodPost, "/cart/add", nil, token, body, nil)
}

// UpdateCartItem sets the quantity of the line for productID.
func (c *Client) UpdateCartItem(ctx context.Context, token string, productID int64, quantity int) error {
	body := struct {
		Quantity int `json:"quantity"`
	}{quantity}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/cart/%d", productID), nil, token, body, nil)
}

// DeleteCartItem removes the line for productID.
func (c *Client) DeleteCartItem(ctx context.Context, token string, productID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d", productID), nil, token, nil, nil)
}
