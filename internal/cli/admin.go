package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/shop"
)

const adminLocation = "/admin"

// NewAdminCommand creates the admin command group.
func NewAdminCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the catalog and orders (ADMIN accounts only)",
	}

	products := &cobra.Command{Use: "products", Short: "Manage products"}
	products.AddCommand(newAdminProductsListCommand(rootOpts))
	products.AddCommand(newAdminProductCreateCommand(rootOpts))
	products.AddCommand(newAdminProductUpdateCommand(rootOpts))
	products.AddCommand(newAdminProductDeleteCommand(rootOpts))

	orders := &cobra.Command{Use: "orders", Short: "Manage orders"}
	orders.AddCommand(newAdminOrdersListCommand(rootOpts))
	orders.AddCommand(newAdminOrderStatusCommand(rootOpts))

	cmd.AddCommand(products, orders)
	return cmd
}

// productFlags binds the product form. Price is kept as text until parsed.
type productFlags struct {
	Name        string
	Description string
	Price       string
	Stock       int
	Category    int64
}

func (p *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.Name, "name", "", "product name")
	cmd.Flags().StringVar(&p.Description, "description", "", "product description")
	cmd.Flags().StringVar(&p.Price, "price", "", "unit price, e.g. 9.99")
	cmd.Flags().IntVar(&p.Stock, "stock", 0, "units in stock")
	cmd.Flags().Int64Var(&p.Category, "category", 0, "category id")
}

// apply overlays the flags that were set onto base.
func (p *productFlags) apply(cmd *cobra.Command, base model.ProductInput) (model.ProductInput, error) {
	f := cmd.Flags()
	if f.Changed("name") {
		base.Name = p.Name
	}
	if f.Changed("description") {
		base.Description = p.Description
	}
	if f.Changed("price") {
		price, err := model.ParsePrice(p.Price)
		if err != nil {
			return base, inputErrorf("price %q is not a number", p.Price)
		}
		base.Price = price
	}
	if f.Changed("stock") {
		base.Stock = p.Stock
	}
	if f.Changed("category") {
		base.CategoryID = p.Category
	}
	return base, nil
}

func newAdminProductsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, adminLocation, func(ctx context.Context, a *app) error {
				products, err := shop.NewAdmin(a.deps).Products(ctx)
				if err != nil {
					return err
				}
				return a.out.Emit(products, func(w io.Writer) { renderProducts(w, products) })
			})
		},
	}
}

func newAdminProductCreateCommand(rootOpts *RootOptions) *cobra.Command {
	pf := &productFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		Example: `  storefront admin products create --name Mug --description "Stoneware, 350ml" \
      --price 9.99 --stock 10 --category 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, adminLocation, func(ctx context.Context, a *app) error {
				in, err := pf.apply(cmd, model.ProductInput{})
				if err != nil {
					return err
				}
				p, err := shop.NewAdmin(a.deps).CreateProduct(ctx, in)
				if err != nil {
					return err
				}
				return a.out.Emit(p, func(w io.Writer) {
					fmt.Fprintf(w, "Created product #%d %s\n", p.ID, p.Name)
				})
			})
		},
	}
	pf.register(cmd)
	return cmd
}

func newAdminProductUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	pf := &productFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a product; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, adminLocation, func(ctx context.Context, a *app) error {
				id, err := parseID("product", args[0])
				if err != nil {
					return err
				}
				cur, err := shop.NewCatalog(a.deps).Get(ctx, id)
				if err != nil {
					return err
				}
				in, err := pf.apply(cmd, model.ProductInput{
					Name:        cur.Name,
					Description: cur.Description,
					Price:       cur.Price,
					Stock:       cur.Stock,
					CategoryID:  cur.CategoryID,
				})
				if err != nil {
					return err
				}
				p, err := shop.NewAdmin(a.deps).UpdateProduct(ctx, id, in)
				if err != nil {
					return err
				}
				return a.out.Emit(p, func(w io.Writer) {
					fmt.Fprintf(w, "Updated product #%d %s\n", p.ID, p.Name)
				})
			})
		},
	}
	pf.register(cmd)
	return cmd
}

func newAdminProductDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, adminLocation, func(ctx context.Context, a *app) error {
				id, err := parseID("product", args[0])
				if err != nil {
					return err
				}
				if err := shop.NewAdmin(a.deps).DeleteProduct(ctx, id); err != nil {
					return err
				}
				return a.out.Emit(map[string]int64{"deleted": id}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted product #%d\n", id)
				})
			})
		},
	}
}

func newAdminOrdersListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, adminLocation, func(ctx context.Context, a *app) error {
				orders, err := shop.NewAdmin(a.deps).Orders(ctx)
				if err != nil {
					return err
				}
				if orders == nil {
					orders = []model.Order{}
				}
				return a.out.Emit(orders, func(w io.Writer) { renderOrders(w, orders) })
			})
		},
	}
}

func newAdminOrderStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Move an order to Pending, Processing, Shipped or Cancelled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, adminLocation, func(ctx context.Context, a *app) error {
				id, err := parseID("order", args[0])
				if err != nil {
					return err
				}
				status, err := shop.NewAdmin(a.deps).SetOrderStatus(ctx, id, args[1])
				if err != nil {
					return err
				}
				return a.out.Emit(map[string]any{"id": id, "status": status}, func(w io.Writer) {
					fmt.Fprintf(w, "Order #%d is now %s\n", id, status)
				})
			})
		},
	}
}
