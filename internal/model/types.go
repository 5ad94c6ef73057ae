package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CartLine is one product entry in the user's cart.
// Quantity is always >= 1; a line that would drop to 0 is removed instead.
type CartLine struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
	Stock       int    `json:"stock"`
	CategoryID  int64  `json:"categoryId"`
	Quantity    int    `json:"quantity"`
}

// Subtotal returns Price * Quantity.
func (l CartLine) Subtotal() Price {
	return l.Price.Mul(l.Quantity)
}

// Product is a catalog entry as returned by GET /products/{id}.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
	Stock       int    `json:"stock"`
	CategoryID  int64  `json:"categoryId"`
}

// Line builds a cart line from the product snapshot.
func (p Product) Line(quantity int) CartLine {
	return CartLine{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Quantity:    quantity,
	}
}

// ProductInput is the body of POST /products and PUT /products/{id}.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
	Stock       int    `json:"stock"`
	CategoryID  int64  `json:"categoryId"`
}

// Role values carried by User.Role.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is the authenticated account as stored next to the token.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user may use the admin console.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by POST /auth/login.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// SignupRequest is the body of POST /users/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SignupResponse is returned by POST /users/signup.
type SignupResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfileUpdate is the body of PUT /users/{id}. Password is only sent
// when set.
type ProfileUpdate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists the accepted statuses in workflow order.
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderCancelled}

// Valid reports whether s is one of OrderStatuses.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseOrderStatus matches s case-insensitively against OrderStatuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, v := range OrderStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, nil
		}
	}
	return "", &ValidationError{Fields: map[string]string{
		"status": fmt.Sprintf("must be one of %v", OrderStatuses),
	}}
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"orderId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Price     Price `json:"price"`
}

// Order is a placed order.
type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"userId"`
	ProductsID      []int64     `json:"productsId,omitempty"`
	Status          OrderStatus `json:"status"`
	TotalPrice      Price       `json:"totalPrice"`
	ShippingAddress string      `json:"shippingAddress"`
	CreatedAt       string      `json:"createdAt"`
	OrderItems      []OrderItem `json:"orderItems,omitempty"`
}

// CheckoutSummary is the body returned by POST /orders/checkout.
// Fields the service adds beyond these are ignored.
type CheckoutSummary struct {
	Items      []CartLine `json:"items,omitempty"`
	TotalPrice Price      `json:"totalPrice"`
}

// ErrorBody is the error envelope of the remote service. Message is either
// a string or a list of strings; both decode into Messages.
type ErrorBody struct {
	Messages []string
	Error    string
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *ErrorBody) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Error = raw.Error
	b.Messages = nil

	if len(raw.Message) == 0 || string(raw.Message) == "null" {
		return nil
	}
	var one string
	if err := json.Unmarshal(raw.Message, &one); err == nil {
		b.Messages = []string{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(raw.Message, &many); err != nil {
		return fmt.Errorf("decode error message: %w", err)
	}
	b.Messages = many
	return nil
}
