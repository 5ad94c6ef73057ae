package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/model"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ProductQuery selects a page of the catalog. Zero Page and Limit take the
// defaults (1 and DefaultPageSize).
type ProductQuery struct {
	Page   int
	Limit  int
	Search string
}

// Catalog is the public product listing.
type Catalog struct {
	deps Deps
}

// NewCatalog creates the catalog service.
func NewCatalog(d Deps) *Catalog {
	return &Catalog{deps: d}
}

func (q ProductQuery) normalize() (api.ProductQuery, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultPageSize
	}
	fields := map[string]string{}
	if q.Page < 1 {
		fields["page"] = "must be at least 1"
	}
	if q.Limit < 1 || q.Limit > MaxPageSize {
		fields["limit"] = fmt.Sprintf("must be between 1 and %d", MaxPageSize)
	}
	if len(fields) > 0 {
		return api.ProductQuery{}, &model.ValidationError{Fields: fields}
	}
	return api.ProductQuery{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: norm.NFC.String(strings.TrimSpace(q.Search)),
	}, nil
}

// List returns one page of products.
func (c *Catalog) List(ctx context.Context, q ProductQuery) ([]model.Product, error) {
	aq, err := q.normalize()
	if err != nil {
		return nil, err
	}
	products, err := c.deps.Client.Products(ctx, aq)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get returns one product.
func (c *Catalog) Get(ctx context.Context, id int64) (model.Product, error) {
	p, err := c.deps.Client.Product(ctx, "", id)
	if errors.Is(err, api.ErrNotFound) {
		return model.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}
