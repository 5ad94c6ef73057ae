package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/shop"
)

// NewProductsCommand creates the products command group.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}
	cmd.AddCommand(newProductsListCommand(rootOpts))
	cmd.AddCommand(newProductsShowCommand(rootOpts))
	return cmd
}

func newProductsListCommand(rootOpts *RootOptions) *cobra.Command {
	var q shop.ProductQuery
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a page of products",
		Example: `  storefront products list
  storefront products list --page 2 --limit 20 --search mug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, "/products", func(ctx context.Context, a *app) error {
				products, err := shop.NewCatalog(a.deps).List(ctx, q)
				if err != nil {
					return err
				}
				return a.out.Emit(products, func(w io.Writer) { renderProducts(w, products) })
			})
		},
	}
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&q.Limit, "limit", shop.DefaultPageSize, "products per page")
	cmd.Flags().StringVar(&q.Search, "search", "", "filter by name")
	return cmd
}

func newProductsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, "/products/"+args[0], func(ctx context.Context, a *app) error {
				id, err := parseID("product", args[0])
				if err != nil {
					return err
				}
				var p model.Product
				if p, err = shop.NewCatalog(a.deps).Get(ctx, id); err != nil {
					return err
				}
				return a.out.Emit(p, func(w io.Writer) { renderProduct(w, p) })
			})
		},
	}
}
