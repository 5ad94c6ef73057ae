package shop

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/session"
	"github.com/roach88/storefront/internal/testutil"
	"github.com/roach88/storefront/internal/token"
)

var (
	shopper = model.User{ID: 7, Name: "Grace", Email: "grace@example.com", Role: model.RoleUser}
	admin   = model.User{ID: 1, Name: "Root", Email: "root@example.com", Role: model.RoleAdmin}

	mug = model.Product{ID: 1, Name: "Mug", Description: "Ceramic mug", Price: model.MustPrice("9.99"), Stock: 10, CategoryID: 2}
	tea = model.Product{ID: 2, Name: "Tea", Description: "Green tea", Price: model.MustPrice("4.50"), Stock: 3, CategoryID: 2}
)

type fixture struct {
	shop      *testutil.FakeShop
	deps      Deps
	redirects []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{shop: testutil.NewFakeShop(t)}
	f.shop.AddProduct(mug)
	f.shop.AddProduct(tea)
	f.shop.AddUser(admin, "rootpassword")
	f.shop.AddUser(shopper, "password123")

	db, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zaptest.NewLogger(t)
	manager := session.NewManager(db, token.NewValidator(),
		session.WithLogger(logger),
		session.WithRedirect(func(loc string) { f.redirects = append(f.redirects, loc) }),
	)
	client, err := api.New(f.shop.URL(), api.WithLogger(logger))
	require.NoError(t, err)

	f.deps = Deps{
		Client:  client,
		Session: manager,
		Cart:    cart.New(client, manager, cart.WithLogger(logger)),
		Logger:  logger,
	}
	return f
}

func (f *fixture) loginAs(t *testing.T, u model.User) {
	t.Helper()
	require.NoError(t, f.deps.Session.SaveLogin(context.Background(), f.shop.Token(u), u))
	f.shop.ResetRequests()
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	acct := NewAccount(f.deps)
	ctx := context.Background()

	u, err := acct.Login(ctx, model.LoginRequest{Email: " grace@example.com ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, shopper, u)

	me, err := acct.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, shopper, me)
	_, err = f.deps.Session.Credential(ctx)
	assert.NoError(t, err)
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t)
	acct := NewAccount(f.deps)
	ctx := context.Background()

	_, err := acct.Login(ctx, model.LoginRequest{Email: "grace@example.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	f.shop.FailNext(http.MethodPost, "/auth/login", http.StatusBadRequest, "email must be an email")
	_, err = acct.Login(ctx, model.LoginRequest{Email: "grace@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrLoginRejected)

	f.shop.ResetRequests()
	_, err = acct.Login(ctx, model.LoginRequest{Email: "nope", Password: "short"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Zero(t, f.shop.RequestCount())

	_, err = acct.Me(ctx)
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestSignup_ForcesUserRole(t *testing.T) {
	f := newFixture(t)
	acct := NewAccount(f.deps)
	ctx := context.Background()

	u, err := acct.Signup(ctx, model.SignupRequest{Name: "Lin", Email: "lin@example.com", Password: "password123", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, u.Role)

	reqs := f.shop.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Body, `"role":"USER"`)

	stored, err := acct.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "lin@example.com", stored.Email)

	_, err = acct.Signup(ctx, model.SignupRequest{Name: "Lin", Email: "lin@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	acct := NewAccount(f.deps)
	ctx := context.Background()

	assert.ErrorIs(t, acct.Logout(ctx), ErrNoToken)

	f.loginAs(t, shopper)
	require.NoError(t, f.deps.Cart.AddToCart(ctx, mug.ID, 1))
	tok, err := f.deps.Session.Credential(ctx)
	require.NoError(t, err)

	require.NoError(t, acct.Logout(ctx))

	assert.Empty(t, f.deps.Cart.Items())
	_, err = acct.Me(ctx)
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = f.deps.Client.MyCart(ctx, tok)
	assert.ErrorIs(t, err, api.ErrUnauthorized, "token revoked server-side")
	assert.Empty(t, f.redirects, "explicit logout does not redirect")
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	acct := NewAccount(f.deps)
	ctx := context.Background()

	_, err := acct.UpdateProfile(ctx, model.ProfileUpdate{Name: "Grace H", Email: "gh@example.com"})
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, []string{"/login?returnUrl=%2Fprofile"}, f.redirects)

	f.loginAs(t, shopper)
	u, err := acct.UpdateProfile(ctx, model.ProfileUpdate{Name: "Grace H", Email: "gh@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Grace H", u.Name)
	assert.Equal(t, shopper.ID, u.ID)

	me, err := acct.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gh@example.com", me.Email)

	reqs := f.shop.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/users/7", reqs[0].Path)
	assert.NotContains(t, reqs[0].Body, "password", "empty password is not sent")
}

func TestCatalogList(t *testing.T) {
	f := newFixture(t)
	f.shop.AddProduct(model.Product{ID: 3, Name: "Café beans", Price: model.MustPrice("12"), Stock: 5})
	catalog := NewCatalog(f.deps)
	ctx := context.Background()

	products, err := catalog.List(ctx, ProductQuery{})
	require.NoError(t, err)
	assert.Len(t, products, 3)

	// Decomposed e + combining acute is sent composed.
	products, err = catalog.List(ctx, ProductQuery{Search: "  Cafe\u0301 "})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(3), products[0].ID)

	reqs := f.shop.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "limit=10&page=1&search=", reqs[0].Query)
	assert.Equal(t, "limit=10&page=1&search=Caf%C3%A9", reqs[1].Query)
}

func TestCatalogList_RejectsBadPaging(t *testing.T) {
	f := newFixture(t)
	catalog := NewCatalog(f.deps)

	_, err := catalog.List(context.Background(), ProductQuery{Page: -1, Limit: 101})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "page")
	assert.Contains(t, verr.Fields, "limit")
	assert.Zero(t, f.shop.RequestCount())
}

func TestCatalogGet(t *testing.T) {
	f := newFixture(t)
	catalog := NewCatalog(f.deps)

	p, err := catalog.Get(context.Background(), tea.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tea", p.Name)

	_, err = catalog.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutSummary(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, shopper)
	f.shop.SetCart(shopper.ID, []model.CartLine{mug.Line(2), tea.Line(1)})
	checkout := NewCheckout(f.deps)

	sum, err := checkout.Summary(context.Background())
	require.NoError(t, err)
	assert.Len(t, sum.Lines, 2)
	assert.Equal(t, 3, sum.TotalItems)
	assert.Equal(t, "24.48", sum.TotalPrice.String())
	assert.True(t, sum.Server.TotalPrice.Equal(sum.TotalPrice))
	assert.Equal(t, 2, f.shop.RequestCount())
}

func TestCheckoutSummary_RequiresLogin(t *testing.T) {
	f := newFixture(t)
	checkout := NewCheckout(f.deps)

	_, err := checkout.Summary(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, []string{"/login?returnUrl=%2Fcheckout"}, f.redirects)
	assert.Zero(t, f.shop.RequestCount())
}

func TestCheckoutSummary_BothRequestsUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, shopper)
	f.shop.SetCart(shopper.ID, []model.CartLine{mug.Line(1)})
	f.shop.FailNext(http.MethodGet, "/cart/my-cart", http.StatusUnauthorized, "token revoked")
	f.shop.FailNext(http.MethodPost, "/orders/checkout", http.StatusUnauthorized, "token revoked")
	checkout := NewCheckout(f.deps)

	_, err := checkout.Summary(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.True(t, f.deps.Session.Invalidated())
	// The cart request may be cancelled before it reaches the shop once the
	// checkout request has failed, so there are one or two redirects.
	assert.Contains(t, f.redirects, "/login?returnUrl=%2Fcheckout")
	assert.LessOrEqual(t, len(f.redirects), 2)
	for _, loc := range f.redirects {
		assert.Contains(t, []string{"/login?returnUrl=%2Fcheckout", "/login?returnUrl=%2Fcart"}, loc)
	}
	assert.Empty(t, f.deps.Cart.State().Lines)
}

func TestCheckoutConfirm(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, shopper)
	ctx := context.Background()
	checkout := NewCheckout(f.deps)
	require.NoError(t, f.deps.Cart.AddToCart(ctx, mug.ID, 2))

	_, err := checkout.Confirm(ctx, "   ")
	assert.ErrorIs(t, err, ErrAddressRequired)

	f.shop.FailNext(http.MethodPost, "/orders/confirm", http.StatusInternalServerError, "db down")
	_, err = checkout.Confirm(ctx, "1 Main St")
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Len(t, f.deps.Cart.Items(), 1, "cart kept after failed confirm")

	order, err := checkout.Confirm(ctx, "1 Main St")
	require.NoError(t, err)
	assert.Equal(t, "19.98", order.TotalPrice.String())
	assert.Equal(t, "1 Main St", order.ShippingAddress)
	assert.Empty(t, f.deps.Cart.Items())
	assert.Len(t, f.shop.Orders(), 1)
}

func TestCheckoutConfirm_NoToken(t *testing.T) {
	f := newFixture(t)
	checkout := NewCheckout(f.deps)

	_, err := checkout.Confirm(context.Background(), "1 Main St")
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Zero(t, f.shop.RequestCount())
}

func TestOrdersMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orders := NewOrders(f.deps)

	_, err := orders.Mine(ctx)
	assert.ErrorIs(t, err, ErrAuthRequired)

	f.loginAs(t, shopper)
	require.NoError(t, f.deps.Cart.AddToCart(ctx, tea.ID, 1))
	_, err = NewCheckout(f.deps).Confirm(ctx, "2 Side St")
	require.NoError(t, err)

	mine, err := orders.Mine(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, model.OrderPending, mine[0].Status)
}

func TestOrdersMine_ServerRejectsToken(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, shopper)
	f.shop.FailNext(http.MethodGet, "/orders/7", http.StatusUnauthorized, "Unauthorized")

	_, err := NewOrders(f.deps).Mine(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.True(t, f.deps.Session.Invalidated())
	assert.Equal(t, []string{"/login?returnUrl=%2Forders"}, f.redirects)
}

func TestAdmin_RejectsWithoutNetwork(t *testing.T) {
	f := newFixture(t)
	a := NewAdmin(f.deps)
	ctx := context.Background()

	_, err := a.Products(ctx)
	assert.ErrorIs(t, err, ErrAuthRequired)

	f.loginAs(t, shopper)
	_, err = a.Products(ctx)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = a.Orders(ctx)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, a.DeleteProduct(ctx, mug.ID), ErrForbidden)
	_, err = a.SetOrderStatus(ctx, 1, "Shipped")
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Zero(t, f.shop.RequestCount())
	assert.Empty(t, f.redirects)
}

func TestAdmin_ProductLifecycle(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, admin)
	a := NewAdmin(f.deps)
	ctx := context.Background()

	_, err := a.CreateProduct(ctx, model.ProductInput{Name: " x ", Description: "short", Stock: -1})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 5, "all field errors reported together")
	assert.Zero(t, f.shop.RequestCount())

	in := model.ProductInput{Name: "  Teapot ", Description: "Cast iron teapot", Price: model.MustPrice("35.00"), Stock: 4, CategoryID: 2}
	p, err := a.CreateProduct(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Teapot", p.Name)
	assert.Equal(t, int64(3), p.ID)

	in.Stock = 9
	p, err = a.UpdateProduct(ctx, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 9, p.Stock)

	all, err := a.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, a.DeleteProduct(ctx, p.ID))
	_, ok := f.shop.Product(p.ID)
	assert.False(t, ok)

	err = a.DeleteProduct(ctx, p.ID)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestAdmin_Orders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.loginAs(t, shopper)
	require.NoError(t, f.deps.Cart.AddToCart(ctx, mug.ID, 1))
	order, err := NewCheckout(f.deps).Confirm(ctx, "1 Main St")
	require.NoError(t, err)

	f.loginAs(t, admin)
	a := NewAdmin(f.deps)

	all, err := a.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = a.SetOrderStatus(ctx, order.ID, "delivered")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	status, err := a.SetOrderStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, status)
	assert.Equal(t, model.OrderShipped, f.shop.Orders()[0].Status)
}
