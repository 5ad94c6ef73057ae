package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/model"
)

// cartView is the JSON payload of the cart commands.
type cartView struct {
	Lines      []model.CartLine `json:"lines"`
	TotalItems int              `json:"totalItems"`
	TotalPrice model.Price      `json:"totalPrice"`
	Status     cart.Status      `json:"status,omitempty"`
	Cached     bool             `json:"cached,omitempty"`
	SavedAt    string           `json:"savedAt,omitempty"`
}

func newCartView(st cart.State) cartView {
	return cartView{
		Lines:      st.Lines,
		TotalItems: st.TotalItems(),
		TotalPrice: st.TotalPrice(),
		Status:     st.Status,
	}
}

func renderCart(w io.Writer, v cartView) {
	if len(v.Lines) == 0 {
		fmt.Fprintln(w, "Cart is empty")
		return
	}
	for _, l := range v.Lines {
		fmt.Fprintf(w, "#%d %s x%d @ %s = %s\n", l.ID, l.Name, l.Quantity, l.Price, l.Subtotal())
	}
	fmt.Fprintf(w, "Items: %d\n", v.TotalItems)
	fmt.Fprintf(w, "Total: %s\n", v.TotalPrice)
}

func renderProducts(w io.Writer, products []model.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found")
		return
	}
	for _, p := range products {
		fmt.Fprintf(w, "#%d %s %s (stock %d)\n", p.ID, p.Name, p.Price, p.Stock)
	}
}

func renderProduct(w io.Writer, p model.Product) {
	fmt.Fprintf(w, "#%d %s\n", p.ID, p.Name)
	fmt.Fprintf(w, "Price: %s\n", p.Price)
	fmt.Fprintf(w, "Stock: %d\n", p.Stock)
	fmt.Fprintf(w, "Category: %d\n", p.CategoryID)
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
}

func renderOrders(w io.Writer, orders []model.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders yet")
		return
	}
	for _, o := range orders {
		fmt.Fprintf(w, "#%d %s %s, %d item(s), ship to %s\n",
			o.ID, o.Status, o.TotalPrice, len(o.OrderItems), o.ShippingAddress)
	}
}

func renderUser(w io.Writer, u model.User) {
	fmt.Fprintf(w, "%s <%s> (%s)\n", u.Name, u.Email, u.Role)
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, inputErrorf("%s id %q must be a positive integer", kind, s)
	}
	return id, nil
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, inputErrorf("quantity %q must be an integer", s)
	}
	return n, nil
}
