package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"

	"github.com/roach88/storefront/internal/model"
)

// RecordedRequest is one request seen by FakeShop.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	Body          string
}

type injectedFailure struct {
	status  int
	message string
}

type fakeUser struct {
	user     model.User
	password string
}

// FakeShop is an in-memory storefront backend served over httptest.
//
// It implements the REST surface the client consumes (auth, users, products,
// cart, orders) closely enough to exercise client behaviour: bearer tokens
// are verified with DefaultSecret, carts are kept per user, and any route can
// be forced to fail once with FailNext.
//
// Thread-safety: handlers and helpers share one mutex.
type FakeShop struct {
	server *httptest.Server

	mu        sync.Mutex
	secret    []byte
	products  map[int64]model.Product
	users     map[int64]*fakeUser
	carts     map[int64][]model.CartLine
	orders    []model.Order
	revoked   map[string]bool
	failures  map[string][]injectedFailure
	requests  []RecordedRequest
	nextUser  int64
	nextOrder int64

	// PricesAsStrings makes cart and product responses carry prices as JSON
	// strings ("9.99") instead of numbers, as some service versions do.
	PricesAsStrings bool
}

// NewFakeShop starts a fake backend and stops it when the test ends.
func NewFakeShop(t testing.TB) *FakeShop {
	t.Helper()
	s := StartFakeShop()
	t.Cleanup(s.Close)
	return s
}

// StartFakeShop starts a fake backend outside a test. The caller must Close
// it.
func StartFakeShop() *FakeShop {
	s := &FakeShop{
		secret:    DefaultSecret,
		products:  map[int64]model.Product{},
		users:     map[int64]*fakeUser{},
		carts:     map[int64][]model.CartLine{},
		revoked:   map[string]bool{},
		failures:  map[string][]injectedFailure{},
		nextUser:  1,
		nextOrder: 1,
	}
	s.server = httptest.NewServer(s.router())
	return s
}

// URL returns the base URL of the fake service.
func (s *FakeShop) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *FakeShop) Close() {
	s.server.Close()
}

// AddProduct registers or replaces a catalog product.
func (s *FakeShop) AddProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// SetStock overwrites the stock of an existing product.
func (s *FakeShop) SetStock(id int64, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.Stock = stock
	s.products[id] = p
}

// AddUser registers an account. A zero ID is assigned automatically.
func (s *FakeShop) AddUser(u model.User, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(u, password)
}

func (s *FakeShop) addUserLocked(u model.User, password string) model.User {
	if u.ID == 0 {
		u.ID = s.nextUser
	}
	if u.ID >= s.nextUser {
		s.nextUser = u.ID + 1
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	s.users[u.ID] = &fakeUser{user: u, password: password}
	return u
}

// Token registers u if needed and returns a credential valid for an hour.
func (s *FakeShop) Token(u model.User) string {
	s.mu.Lock()
	if _, ok := s.users[u.ID]; !ok || u.ID == 0 {
		u = s.addUserLocked(u, "password123")
	}
	s.mu.Unlock()
	return MintToken(s.secret, u, time.Now().Add(time.Hour))
}

// ExpiredToken returns a correctly signed credential for u whose exp has
// already passed.
func (s *FakeShop) ExpiredToken(u model.User) string {
	return MintToken(s.secret, u, time.Now().Add(-time.Hour))
}

// SetCart replaces the server-side cart of user id.
func (s *FakeShop) SetCart(userID int64, lines []model.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = append([]model.CartLine(nil), lines...)
}

// Cart returns a copy of the server-side cart of user id.
func (s *FakeShop) Cart(userID int64) []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CartLine(nil), s.carts[userID]...)
}

// Orders returns a copy of all placed orders.
func (s *FakeShop) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.orders...)
}

// Product returns the stored product.
func (s *FakeShop) Product(id int64) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

// FailNext makes the next request to method+path answer status with
// message instead of being handled. Calls queue up per route.
func (s *FakeShop) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], injectedFailure{status: status, message: message})
}

// Requests returns every request received so far.
func (s *FakeShop) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// RequestCount returns the number of requests received so far.
func (s *FakeShop) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// ResetRequests forgets recorded requests.
func (s *FakeShop) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *FakeShop) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)

	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/users/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/users/{id:[0-9]+}", s.handleUpdateUser).Methods(http.MethodPut)

	r.HandleFunc("/products", s.handleListProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/all", s.handleAllProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id:[0-9]+}", s.handleGetProduct).Methods(http.MethodGet)
	r.HandleFunc("/products", s.handleCreateProduct).Methods(http.MethodPost)
	r.HandleFunc("/products/{id:[0-9]+}", s.handleUpdateProduct).Methods(http.MethodPut)
	r.HandleFunc("/products/{id:[0-9]+}", s.handleDeleteProduct).Methods(http.MethodDelete)

	r.HandleFunc("/cart/my-cart", s.handleMyCart).Methods(http.MethodGet)
	r.HandleFunc("/cart/add", s.handleAddToCart).Methods(http.MethodPost)
	r.HandleFunc("/cart/{id:[0-9]+}", s.handleUpdateCart).Methods(http.MethodPut)
	r.HandleFunc("/cart/{id:[0-9]+}", s.handleDeleteCart).Methods(http.MethodDelete)

	r.HandleFunc("/orders/checkout", s.handleCheckout).Methods(http.MethodPost)
	r.HandleFunc("/orders/confirm", s.handleConfirm).Methods(http.MethodPost)
	r.HandleFunc("/orders", s.handleAllOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/{userId:[0-9]+}", s.handleUserOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id:[0-9]+}", s.handleUpdateOrder).Methods(http.MethodPut)

	return r
}

// record logs the request and applies any injected failure for its route.
func (s *FakeShop) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		key := r.Method + " " + r.URL.Path
		var fail *injectedFailure
		if queued := s.failures[key]; len(queued) > 0 {
			fail = &queued[0]
			s.failures[key] = queued[1:]
		}
		s.mu.Unlock()

		if fail != nil {
			writeError(w, fail.status, fail.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"statusCode": status,
		"message":    message,
		"error":      http.StatusText(status),
	})
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

// authenticate resolves the bearer token to a registered user. Must be
// called without s.mu held.
func (s *FakeShop) authenticate(r *http.Request) (model.User, bool) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		return model.User{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[raw] {
		return model.User{}, false
	}
	tok, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return s.secret, nil })
	if err != nil || !tok.Valid {
		return model.User{}, false
	}
	claims, _ := tok.Claims.(jwt.MapClaims)
	sub, _ := claims["sub"].(float64)
	u, ok := s.users[int64(sub)]
	if !ok {
		return model.User{}, false
	}
	return u.user, true
}

func (s *FakeShop) requireUser(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	u, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return u, ok
}

func (s *FakeShop) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	u, ok := s.requireUser(w, r)
	if !ok {
		return false
	}
	if !u.IsAdmin() {
		writeError(w, http.StatusForbidden, "Forbidden resource")
		return false
	}
	return true
}

func (s *FakeShop) wirePrice(p model.Price) any {
	if s.PricesAsStrings {
		return p.String()
	}
	return json.Number(mustMarshal(p))
}

func mustMarshal(p model.Price) string {
	data, _ := p.MarshalJSON()
	return string(data)
}

func (s *FakeShop) wireProduct(p model.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       s.wirePrice(p.Price),
		"stock":       p.Stock,
		"categoryId":  p.CategoryID,
	}
}

func (s *FakeShop) wireLine(l model.CartLine) map[string]any {
	m := s.wireProduct(model.Product{
		ID: l.ID, Name: l.Name, Description: l.Description,
		Price: l.Price, Stock: l.Stock, CategoryID: l.CategoryID,
	})
	m["quantity"] = l.Quantity
	return m
}

func (s *FakeShop) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	var found *fakeUser
	for _, u := range s.users {
		if strings.EqualFold(u.user.Email, req.Email) && u.password == req.Password {
			found = u
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusCreated, model.AuthResponse{
		AccessToken: MintToken(s.secret, found.user, time.Now().Add(time.Hour)),
		User:        found.user,
	})
}

func (s *FakeShop) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "access_token is required")
		return
	}
	s.mu.Lock()
	s.revoked[req.AccessToken] = true
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Logged out"})
}

func (s *FakeShop) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if strings.EqualFold(u.user.Email, req.Email) {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "Email already exists")
			return
		}
	}
	u := s.addUserLocked(model.User{Name: req.Name, Email: req.Email, Role: req.Role}, req.Password)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, model.SignupResponse{
		Token: MintToken(s.secret, u, time.Now().Add(time.Hour)),
		User:  u,
	})
}

func (s *FakeShop) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id := pathID(r, "id")
	if caller.ID != id && !caller.IsAdmin() {
		writeError(w, http.StatusForbidden, "Forbidden resource")
		return
	}
	var req model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	u.user.Name = req.Name
	u.user.Email = req.Email
	if req.Password != "" {
		u.password = req.Password
	}
	writeJSON(w, http.StatusOK, u.user)
}

func (s *FakeShop) sortedProducts() []model.Product {
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *FakeShop) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	search := strings.ToLower(q.Get("search"))

	s.mu.Lock()
	var matched []map[string]any
	for _, p := range s.sortedProducts() {
		if search == "" || strings.Contains(strings.ToLower(p.Name), search) {
			matched = append(matched, s.wireProduct(p))
		}
	}
	s.mu.Unlock()

	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	writeJSON(w, http.StatusOK, append([]map[string]any{}, matched[start:end]...))
}

func (s *FakeShop) handleAllProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := []map[string]any{}
	for _, p := range s.sortedProducts() {
		out = append(out, s.wireProduct(p))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeShop) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.products[pathID(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, s.wireProduct(p))
}

func (s *FakeShop) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	var in model.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	var id int64 = 1
	for existing := range s.products {
		if existing >= id {
			id = existing + 1
		}
	}
	p := model.Product{ID: id, Name: in.Name, Description: in.Description, Price: in.Price, Stock: in.Stock, CategoryID: in.CategoryID}
	s.products[id] = p
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, s.wireProduct(p))
}

func (s *FakeShop) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	var in model.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	id := pathID(r, "id")
	s.mu.Lock()
	if _, ok := s.products[id]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	p := model.Product{ID: id, Name: in.Name, Description: in.Description, Price: in.Price, Stock: in.Stock, CategoryID: in.CategoryID}
	s.products[id] = p
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, s.wireProduct(p))
}

func (s *FakeShop) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id := pathID(r, "id")
	s.mu.Lock()
	_, ok := s.products[id]
	delete(s.products, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (s *FakeShop) handleMyCart(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	out := []map[string]any{}
	for _, l := range s.carts[u.ID] {
		out = append(out, s.wireLine(l))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeShop) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[req.ProductID]
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	lines := s.carts[u.ID]
	for i := range lines {
		if lines[i].ID == req.ProductID {
			lines[i].Quantity += req.Quantity
			writeJSON(w, http.StatusCreated, map[string]string{"message": "Item added to cart"})
			return
		}
	}
	s.carts[u.ID] = append(lines, p.Line(req.Quantity))
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Item added to cart"})
}

func (s *FakeShop) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	id := pathID(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[u.ID]
	for i := range lines {
		if lines[i].ID == id {
			lines[i].Quantity = req.Quantity
			writeJSON(w, http.StatusOK, map[string]string{"message": "Cart item updated"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Cart item not found")
}

func (s *FakeShop) handleDeleteCart(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id := pathID(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[u.ID]
	for i := range lines {
		if lines[i].ID == id {
			s.carts[u.ID] = append(lines[:i:i], lines[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Cart item deleted successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Cart item not found")
}

func cartTotal(lines []model.CartLine) model.Price {
	var total model.Price
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s *FakeShop) handleCheckout(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	lines := s.carts[u.ID]
	items := []map[string]any{}
	for _, l := range lines {
		items = append(items, s.wireLine(l))
	}
	total := s.wirePrice(cartTotal(lines))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "totalPrice": total})
}

func (s *FakeShop) handleConfirm(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		ShippingAddress string `json:"shippingAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ShippingAddress) == "" {
		writeError(w, http.StatusBadRequest, "shippingAddress is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[u.ID]
	if len(lines) == 0 {
		writeError(w, http.StatusBadRequest, "Cart is empty")
		return
	}
	order := model.Order{
		ID:              s.nextOrder,
		UserID:          u.ID,
		Status:          model.OrderPending,
		TotalPrice:      cartTotal(lines),
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	for i, l := range lines {
		order.ProductsID = append(order.ProductsID, l.ID)
		order.OrderItems = append(order.OrderItems, model.OrderItem{
			ID: int64(i + 1), OrderID: order.ID, ProductID: l.ID, Quantity: l.Quantity, Price: l.Price,
		})
	}
	s.nextOrder++
	s.orders = append(s.orders, order)
	delete(s.carts, u.ID)
	writeJSON(w, http.StatusCreated, order)
}

func (s *FakeShop) handleUserOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	userID := pathID(r, "userId")
	if caller.ID != userID && !caller.IsAdmin() {
		writeError(w, http.StatusForbidden, "Forbidden resource")
		return
	}
	s.mu.Lock()
	out := []model.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeShop) handleAllOrders(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	s.mu.Lock()
	out := append([]model.Order{}, s.orders...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeShop) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	id := pathID(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = req.Status
			writeJSON(w, http.StatusOK, s.orders[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Order not found")
}
