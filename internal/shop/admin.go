package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/session"
)

const adminPath = "/admin"

// Admin is the catalog and order console. Every call requires a stored
// ADMIN user and is rejected locally otherwise.
type Admin struct {
	deps Deps
}

// NewAdmin creates the admin service.
func NewAdmin(d Deps) *Admin {
	return &Admin{deps: d}
}

// authorize checks the stored role before the credential, so a non-admin is
// turned away without touching the session.
func (a *Admin) authorize(ctx context.Context) (string, error) {
	u, err := a.deps.Session.CurrentUser(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return "", fmt.Errorf("%w: %w", ErrAuthRequired, err)
	}
	if err != nil {
		return "", err
	}
	if !u.IsAdmin() {
		return "", fmt.Errorf("%w: user %d has role %s", ErrForbidden, u.ID, u.Role)
	}
	return a.deps.credential(ctx, adminPath)
}

// Products lists the whole catalog.
func (a *Admin) Products(ctx context.Context) ([]model.Product, error) {
	tok, err := a.authorize(ctx)
	if err != nil {
		return nil, err
	}
	products, err := a.deps.Client.AllProducts(ctx, tok)
	if err != nil {
		return nil, a.deps.remote(ctx, "list products", adminPath, err)
	}
	return products, nil
}

// CreateProduct validates and adds a product.
func (a *Admin) CreateProduct(ctx context.Context, in model.ProductInput) (model.Product, error) {
	tok, err := a.authorize(ctx)
	if err != nil {
		return model.Product{}, err
	}
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		return model.Product{}, err
	}
	p, err := a.deps.Client.CreateProduct(ctx, tok, in)
	if err != nil {
		return model.Product{}, a.deps.remote(ctx, "create product", adminPath, err)
	}
	return p, nil
}

// UpdateProduct validates and replaces product id.
func (a *Admin) UpdateProduct(ctx context.Context, id int64, in model.ProductInput) (model.Product, error) {
	tok, err := a.authorize(ctx)
	if err != nil {
		return model.Product{}, err
	}
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		return model.Product{}, err
	}
	p, err := a.deps.Client.UpdateProduct(ctx, tok, id, in)
	if err != nil {
		return model.Product{}, a.deps.remote(ctx, fmt.Sprintf("update product %d", id), adminPath, err)
	}
	return p, nil
}

// DeleteProduct removes product id.
func (a *Admin) DeleteProduct(ctx context.Context, id int64) error {
	tok, err := a.authorize(ctx)
	if err != nil {
		return err
	}
	if err := a.deps.Client.DeleteProduct(ctx, tok, id); err != nil {
		return a.deps.remote(ctx, fmt.Sprintf("delete product %d", id), adminPath, err)
	}
	return nil
}

// Orders lists every order.
func (a *Admin) Orders(ctx context.Context) ([]model.Order, error) {
	tok, err := a.authorize(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := a.deps.Client.Orders(ctx, tok)
	if err != nil {
		return nil, a.deps.remote(ctx, "list orders", adminPath, err)
	}
	return orders, nil
}

// SetOrderStatus moves order id to status (matched case-insensitively).
func (a *Admin) SetOrderStatus(ctx context.Context, id int64, status string) (model.OrderStatus, error) {
	tok, err := a.authorize(ctx)
	if err != nil {
		return "", err
	}
	s, err := model.ParseOrderStatus(status)
	if err != nil {
		return "", err
	}
	if err := a.deps.Client.UpdateOrderStatus(ctx, tok, id, s); err != nil {
		return "", a.deps.remote(ctx, fmt.Sprintf("update order %d", id), adminPath, err)
	}
	return s, nil
}
