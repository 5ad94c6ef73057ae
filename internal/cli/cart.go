package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/cart"
)

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change your cart",
		Long: `Show and change the cart kept by the service for the logged-in user.

Every subcommand refreshes the cart from the service first. A rejected or
expired login clears the stored session and exits with code 3.`,
	}
	cmd.AddCommand(newCartShowCommand(rootOpts))
	cmd.AddCommand(newCartAddCommand(rootOpts))
	cmd.AddCommand(newCartUpdateCommand(rootOpts))
	cmd.AddCommand(newCartRemoveCommand(rootOpts))
	cmd.AddCommand(newCartClearCommand(rootOpts))
	return cmd
}

// hydrate loads the service's cart into the store. It reports false when the
// session was invalidated and the command should stop.
func hydrate(ctx context.Context, a *app) (bool, error) {
	if err := a.cart.FetchItems(ctx); err != nil {
		return false, err
	}
	return !a.manager.Invalidated(), nil
}

// cartCommand runs op against a hydrated cart and prints the result.
func cartCommand(rootOpts *RootOptions, cmd *cobra.Command, op func(ctx context.Context, a *app) error) error {
	return run(rootOpts, cmd, cart.DefaultLocation, func(ctx context.Context, a *app) error {
		ok, err := hydrate(ctx, a)
		if err != nil || !ok {
			return err
		}
		if op != nil {
			if err := op(ctx, a); err != nil {
				return err
			}
			if a.manager.Invalidated() {
				return nil
			}
		}
		v := newCartView(a.cart.State())
		return a.out.Emit(v, func(w io.Writer) { renderCart(w, v) })
	})
}

func newCartShowCommand(rootOpts *RootOptions) *cobra.Command {
	var cached bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cached {
				return cartCommand(rootOpts, cmd, nil)
			}
			return run(rootOpts, cmd, cart.DefaultLocation, func(ctx context.Context, a *app) error {
				snap, err := a.store.CartSnapshot(ctx)
				if err != nil {
					return err
				}
				st := cart.State{Lines: snap.Lines}
				v := newCartView(st)
				v.Status = cart.StatusIdle
				v.Cached = true
				if !snap.SavedAt.IsZero() {
					v.SavedAt = snap.SavedAt.Format(time.RFC3339)
				}
				return a.out.Emit(v, func(w io.Writer) {
					renderCart(w, v)
					if v.SavedAt != "" {
						fmt.Fprintf(w, "(cached %s)\n", v.SavedAt)
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "show the last cart saved locally without contacting the service")
	return cmd
}

func newCartAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id> [quantity]",
		Short: "Add a product to the cart",
		Long:  "Add quantity units (default 1) of a product. The product's stock is checked first.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, qty, err := parseLineArgs(args, 1)
			if err != nil {
				return reportInput(rootOpts, cmd, err)
			}
			return cartCommand(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return a.cart.AddToCart(ctx, id, qty)
			})
		},
	}
}

func newCartUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, qty, err := parseLineArgs(args, 0)
			if err != nil {
				return reportInput(rootOpts, cmd, err)
			}
			return cartCommand(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return a.cart.UpdateQuantity(ctx, id, qty)
			})
		},
	}
}

func newCartRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <product-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a line from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("product", args[0])
			if err != nil {
				return reportInput(rootOpts, cmd, err)
			}
			return cartCommand(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return a.cart.RemoveFromCart(ctx, id)
			})
		},
	}
}

func newCartClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every line from the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cartCommand(rootOpts, cmd, func(ctx context.Context, a *app) error {
				for _, line := range a.cart.Items() {
					if err := a.cart.RemoveFromCart(ctx, line.ID); err != nil {
						return err
					}
					if a.manager.Invalidated() {
						return nil
					}
				}
				a.cart.ClearCart()
				return nil
			})
		},
	}
}

// parseLineArgs reads "<product-id> [quantity]". A missing quantity takes
// def; def 0 means the quantity is required.
func parseLineArgs(args []string, def int) (int64, int, error) {
	id, err := parseID("product", args[0])
	if err != nil {
		return 0, 0, err
	}
	qty := def
	if len(args) > 1 {
		if qty, err = parseQuantity(args[1]); err != nil {
			return 0, 0, err
		}
	}
	return id, qty, nil
}

// reportInput prints an argument error before any session is opened.
func reportInput(rootOpts *RootOptions, cmd *cobra.Command, err error) error {
	f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	_ = f.Error(ErrCodeInput, err.Error(), nil)
	return WrapExitError(ExitCommandError, ErrCodeInput, err)
}
