package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/session"
)

// Service is the remote cart API. *api.Client implements it.
type Service interface {
	MyCart(ctx context.Context, token string) ([]model.CartLine, error)
	AddToCart(ctx context.Context, token string, productID int64, quantity int) error
	UpdateCartItem(ctx context.Context, token string, productID int64, quantity int) error
	DeleteCartItem(ctx context.Context, token string, productID int64) error
	Product(ctx context.Context, token string, id int64) (model.Product, error)
}

// Session supplies the credential and performs forced logout.
// *session.Manager implements it.
type Session interface {
	Credential(ctx context.Context) (string, error)
	Invalidate(ctx context.Context, returnPath string)
}

// DefaultLocation is the return path used when none is configured.
const DefaultLocation = "/cart"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithLocation sets the path the user is sent back to after logging in
// again following a forced logout.
func WithLocation(path string) Option {
	return func(s *Store) {
		s.location = path
	}
}

// Store is the cart state container. It is safe for concurrent use.
type Store struct {
	svc      Service
	sess     Session
	logger   *zap.Logger
	location string

	mu           sync.Mutex
	state        State
	listeners    map[int]func(State)
	nextListener int
}

// New returns an empty, idle Store.
func New(svc Service, sess Session, opts ...Option) *Store {
	s := &Store{
		svc:       svc,
		sess:      sess,
		logger:    zap.NewNop(),
		location:  DefaultLocation,
		state:     State{Lines: []model.CartLine{}},
		listeners: map[int]func(State){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive a copy of the state after every change.
// fn runs on the goroutine that made the change, outside the store lock.
// The returned func removes the listener.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// update applies fn to the state under the lock and notifies listeners.
func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state.clone()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) begin() {
	s.update(func(st *State) {
		st.Status = StatusLoading
		st.Loading = true
		st.Error = ""
	})
}

func (s *Store) fail(msg string, err error) error {
	s.update(func(st *State) {
		st.Status = StatusErrored
		st.Loading = false
		st.Error = msg
	})
	return err
}

// credential returns a usable token. Without a session it triggers forced
// logout and reports false. Any other failure to read the credential is
// recorded under msg and returned.
func (s *Store) credential(ctx context.Context, msg string) (string, bool, error) {
	tok, err := s.sess.Credential(ctx)
	if errors.Is(err, session.ErrNoSession) {
		s.logger.Info("no usable credential", zap.Error(err))
		s.expire(ctx)
		return "", false, nil
	}
	if err != nil {
		s.logger.Warn("read credential", zap.Error(err))
		return "", false, s.fail(msg, fmt.Errorf("read credential: %w", err))
	}
	return tok, true, nil
}

// expire runs the forced-logout side effect and resets the mirror, which no
// longer belongs to anyone.
func (s *Store) expire(ctx context.Context) {
	s.sess.Invalidate(ctx, s.location)
	s.update(func(st *State) {
		st.Lines = []model.CartLine{}
		st.Status = StatusIdle
		st.Loading = false
		st.Error = ""
	})
}

// FetchItems replaces the local lines with the service's cart.
//
// On failures other than authentication the error is recorded, the previous
// lines are kept and the error is returned.
func (s *Store) FetchItems(ctx context.Context) error {
	tok, ok, err := s.credential(ctx, msgFetchFailed)
	if !ok {
		return err
	}

	s.begin()
	lines, err := s.svc.MyCart(ctx, tok)
	if errors.Is(err, api.ErrUnauthorized) {
		s.logger.Info("cart fetch rejected credential")
		s.expire(ctx)
		return nil
	}
	if err != nil {
		s.logger.Warn("fetch cart items", zap.Error(err))
		return s.fail(msgFetchFailed, fmt.Errorf("fetch cart: %w", err))
	}

	s.update(func(st *State) {
		st.Lines = append([]model.CartLine{}, lines...)
		st.Status = StatusPopulated
		st.Loading = false
	})
	return nil
}

// AddToCart adds quantity units of product id. The product's current stock
// is checked first; a shortfall returns *InsufficientStockError.
func (s *Store) AddToCart(ctx context.Context, id int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	tok, ok, err := s.credential(ctx, msgAddFailed)
	if !ok {
		return err
	}

	s.begin()
	product, err := s.svc.Product(ctx, tok, id)
	if errors.Is(err, api.ErrUnauthorized) {
		s.expire(ctx)
		return nil
	}
	if err != nil {
		s.logger.Warn("look up product for cart", zap.Int64("product_id", id), zap.Error(err))
		return s.fail(msgAddFailed, wrapNotFound(fmt.Sprintf("product %d", id), err))
	}

	if product.Stock < quantity {
		return s.fail(msgNoStock, &InsufficientStockError{
			ProductID: id,
			Requested: quantity,
			Available: product.Stock,
		})
	}

	err = s.svc.AddToCart(ctx, tok, id, quantity)
	if errors.Is(err, api.ErrUnauthorized) {
		s.expire(ctx)
		return nil
	}
	if err != nil {
		s.logger.Warn("add item to cart", zap.Int64("product_id", id), zap.Error(err))
		return s.fail(msgAddFailed, wrapNotFound(fmt.Sprintf("add product %d", id), err))
	}

	s.update(func(st *State) {
		if i := st.indexOf(id); i >= 0 {
			st.Lines[i].Quantity += quantity
		} else {
			st.Lines = append(st.Lines, product.Line(quantity))
		}
		st.Status = StatusPopulated
		st.Loading = false
	})
	return nil
}

// UpdateQuantity sets the quantity of line id to exactly quantity.
func (s *Store) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	tok, ok, err := s.credential(ctx, msgUpdateFailed)
	if !ok {
		return err
	}

	s.begin()
	err = s.svc.UpdateCartItem(ctx, tok, id, quantity)
	if done, err := s.settle(ctx, "update", id, msgUpdateFailed, err); done {
		return err
	}

	s.update(func(st *State) {
		if i := st.indexOf(id); i >= 0 {
			st.Lines[i].Quantity = quantity
		}
		st.Status = StatusPopulated
		st.Loading = false
	})
	return nil
}

// RemoveFromCart deletes line id.
func (s *Store) RemoveFromCart(ctx context.Context, id int64) error {
	tok, ok, err := s.credential(ctx, msgRemoveFailed)
	if !ok {
		return err
	}

	s.begin()
	err = s.svc.DeleteCartItem(ctx, tok, id)
	if done, err := s.settle(ctx, "remove", id, msgRemoveFailed, err); done {
		return err
	}

	s.update(func(st *State) {
		if i := st.indexOf(id); i >= 0 {
			st.Lines = append(st.Lines[:i:i], st.Lines[i+1:]...)
		}
		st.Status = StatusPopulated
		st.Loading = false
	})
	return nil
}

// ClearCart empties the local lines without contacting the service, e.g.
// after checkout consumed the server-side cart.
func (s *Store) ClearCart() {
	s.update(func(st *State) {
		st.Lines = []model.CartLine{}
		st.Status = StatusIdle
		st.Loading = false
		st.Error = ""
	})
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Items returns a copy of the current lines.
func (s *Store) Items() []model.CartLine {
	return s.State().Lines
}

// TotalItems returns the sum of all line quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalItems()
}

// TotalPrice returns the exact sum of price * quantity.
func (s *Store) TotalPrice() model.Price {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalPrice()
}

// settle handles the outcome of an update or remove call. done is true when
// the caller must not apply the mutation.
func (s *Store) settle(ctx context.Context, op string, id int64, failMsg string, err error) (done bool, _ error) {
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, api.ErrUnauthorized):
		s.expire(ctx)
		return true, nil
	case errors.Is(err, api.ErrNotFound):
		s.logger.Info("cart item not found", zap.String("op", op), zap.Int64("product_id", id))
		return true, s.fail(msgNotFound, fmt.Errorf("%s cart item %d: %w: %w", op, id, ErrNotFound, err))
	default:
		s.logger.Warn(failMsg, zap.Int64("product_id", id), zap.Error(err))
		return true, s.fail(failMsg, fmt.Errorf("%s cart item %d: %w", op, id, err))
	}
}

func wrapNotFound(what string, err error) error {
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("%s: %w: %w", what, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
