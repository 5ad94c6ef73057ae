package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/token"
)

// ErrNoSession means there is no usable credential: nobody logged in, or the
// stored token was expired or unreadable and has been discarded.
var ErrNoSession = errors.New("session: not logged in")

// LoginPath is where an invalidated session is sent.
const LoginPath = "/login"

// LoginURL returns the login location that brings the user back to
// returnPath afterwards: /login?returnUrl=<escaped path>.
func LoginURL(returnPath string) string {
	if returnPath == "" {
		returnPath = "/"
	}
	escaped := strings.ReplaceAll(url.QueryEscape(returnPath), "+", "%20")
	return LoginPath + "?returnUrl=" + escaped
}

// Manager hands out the stored credential and performs forced logout.
type Manager struct {
	store     *Store
	validator *token.Validator
	logger    *zap.Logger
	redirect  func(loginURL string)

	// mu serialises invalidations, so the redirect hook never runs twice at
	// once when concurrent requests are rejected together.
	mu          sync.Mutex
	invalidated atomic.Bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRedirect sets the hook that receives the login URL on invalidation.
func WithRedirect(fn func(loginURL string)) ManagerOption {
	return func(m *Manager) {
		m.redirect = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a Manager over store. A nil validator uses the wall clock.
func NewManager(store *Store, validator *token.Validator, opts ...ManagerOption) *Manager {
	if validator == nil {
		validator = token.NewValidator()
	}
	m := &Manager{
		store:     store,
		validator: validator,
		logger:    zap.NewNop(),
		redirect:  func(string) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying session store.
func (m *Manager) Store() *Store {
	return m.store
}

// Credential returns the stored token if it is still usable.
//
// A token that is malformed, has no exp or has expired is removed (with the
// stored user) before ErrNoSession is returned; the returned error wraps the
// validator's reason.
func (m *Manager) Credential(ctx context.Context) (string, error) {
	raw, err := m.store.Token(ctx)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", ErrNoSession
	}

	if _, verr := m.validator.Validate(raw); verr != nil {
		m.logger.Debug("discarding stored credential", zap.Error(verr))
		if err := m.store.Clear(ctx); err != nil {
			return "", fmt.Errorf("discard credential: %w", err)
		}
		return "", fmt.Errorf("%w: %w", ErrNoSession, verr)
	}
	return raw, nil
}

// Invalidate logs the user out locally and redirects to the login page with
// returnPath as the place to come back to. Storage failures are logged; the
// redirect always happens.
func (m *Manager) Invalidate(ctx context.Context, returnPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear session on invalidation", zap.Error(err))
	}
	m.invalidated.Store(true)

	loc := LoginURL(returnPath)
	m.logger.Info("session invalidated", zap.String("redirect", loc))
	m.redirect(loc)
}

// Invalidated reports whether Invalidate ran on this Manager.
func (m *Manager) Invalidated() bool {
	return m.invalidated.Load()
}

// CurrentUser returns the logged-in user or ErrNoSession.
func (m *Manager) CurrentUser(ctx context.Context) (model.User, error) {
	u, ok, err := m.store.User(ctx)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, ErrNoSession
	}
	return u, nil
}

// SaveLogin stores a new login and resets the invalidation flag.
func (m *Manager) SaveLogin(ctx context.Context, raw string, user model.User) error {
	if err := m.store.SaveLogin(ctx, raw, user); err != nil {
		return err
	}
	m.invalidated.Store(false)
	return nil
}

// Clear forgets the stored login without redirecting (explicit logout).
func (m *Manager) Clear(ctx context.Context) error {
	return m.store.Clear(ctx)
}
