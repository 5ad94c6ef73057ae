package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/shop"
)

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Review the cart or place the order",
		Long: `Without --address, show the cart next to the service's checkout summary.
With --address, place the order and ship it there.`,
		Example: `  storefront checkout
  storefront checkout --address "1 Infinite Loop, Cupertino"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, "/checkout", func(ctx context.Context, a *app) error {
				co := shop.NewCheckout(a.deps)
				if !cmd.Flags().Changed("address") {
					sum, err := co.Summary(ctx)
					if err != nil {
						return err
					}
					return a.out.Emit(sum, func(w io.Writer) { renderSummary(w, sum) })
				}

				order, err := co.Confirm(ctx, address)
				if err != nil {
					return err
				}
				return a.out.Emit(order, func(w io.Writer) {
					if order.ID == 0 {
						fmt.Fprintln(w, "Order placed")
						return
					}
					fmt.Fprintf(w, "Order #%d placed: %s, ship to %s\n", order.ID, order.TotalPrice, order.ShippingAddress)
				})
			})
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "shipping address; places the order")
	return cmd
}

func renderSummary(w io.Writer, sum shop.Summary) {
	renderCart(w, cartView{Lines: sum.Lines, TotalItems: sum.TotalItems, TotalPrice: sum.TotalPrice})
	if !sum.Server.TotalPrice.Equal(sum.TotalPrice) {
		fmt.Fprintf(w, "Service total: %s\n", sum.Server.TotalPrice)
	}
}

// NewOrdersCommand creates the orders command.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, "/orders", func(ctx context.Context, a *app) error {
				orders, err := shop.NewOrders(a.deps).Mine(ctx)
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
