package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/roach88/storefront/internal/model"
)

// ProductQuery selects one page of the public catalog.
type ProductQuery struct {
	Page   int
	Limit  int
	Search string
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("search", q.Search)
	return v
}

// Products lists one page of the catalog.
func (c *Client) Products(ctx context.Context, q ProductQuery) ([]model.Product, error) {
	var out []model.Product
	if err := c.do(ctx, http.MethodGet, "/products", q.values(), "", nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// AllProducts lists the whole catalog (admin view).
func (c *Client) AllProducts(ctx context.Context, token string) ([]model.Product, error) {
	var out []model.Product
	if err := c.do(ctx, http.MethodGet, "/products/all", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Product fetches a single product. The token may be empty.
func (c *Client) Product(ctx context.Context, token string, id int64) (model.Product, error) {
	var p model.Product
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, token, nil, &p)
	return p, err
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, token string, in model.ProductInput) (model.Product, error) {
	var p model.Product
	err := c.do(ctx, http.MethodPost, "/products", nil, token, in, &p)
	return p, err
}

// UpdateProduct replaces the editable fields of product id.
func (c *Client) UpdateProduct(ctx context.Context, token string, id int64, in model.ProductInput) (model.Product, error) {
	var p model.Product
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), nil, token, in, &p)
	return p, err
}

// DeleteProduct removes product id from the catalog.
func (c *Client) DeleteProduct(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, token, nil, nil)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
