package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/session"
)

// Account handles login, signup, logout and the user's profile.
type Account struct {
	deps Deps
}

// NewAccount creates the account service.
func NewAccount(d Deps) *Account {
	return &Account{deps: d}
}

// Login exchanges credentials for a token and stores the session.
func (a *Account) Login(ctx context.Context, req model.LoginRequest) (model.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return model.User{}, err
	}

	resp, err := a.deps.Client.Login(ctx, req)
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return model.User{}, ErrInvalidCredentials
	case errors.Is(err, api.ErrBadRequest):
		return model.User{}, fmt.Errorf("%w: %w", ErrLoginRejected, err)
	case err != nil:
		return model.User{}, fmt.Errorf("login: %w", err)
	}

	if err := a.deps.Session.SaveLogin(ctx, resp.AccessToken, resp.User); err != nil {
		return model.User{}, fmt.Errorf("save session: %w", err)
	}
	a.deps.logger().Info("logged in", zap.Int64("user_id", resp.User.ID))
	return resp.User, nil
}

// Signup registers a USER account and stores the returned session.
func (a *Account) Signup(ctx context.Context, req model.SignupRequest) (model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = model.RoleUser
	if err := req.Validate(); err != nil {
		return model.User{}, err
	}

	resp, err := a.deps.Client.Signup(ctx, req)
	switch {
	case errors.Is(err, api.ErrConflict):
		return model.User{}, ErrEmailExists
	case err != nil:
		return model.User{}, fmt.Errorf("signup: %w", err)
	}

	if err := a.deps.Session.SaveLogin(ctx, resp.Token, resp.User); err != nil {
		return model.User{}, fmt.Errorf("save session: %w", err)
	}
	a.deps.logger().Info("signed up", zap.Int64("user_id", resp.User.ID))
	return resp.User, nil
}

// Logout revokes the stored token and forgets the session and the cart.
// A token the service already rejects (401) counts as logged out.
func (a *Account) Logout(ctx context.Context) error {
	tok, err := a.deps.Session.Store().Token(ctx)
	if err != nil {
		return err
	}
	if tok == "" {
		return ErrNoToken
	}

	if err := a.deps.Client.Logout(ctx, tok); err != nil && !errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("logout: %w", err)
	}

	if err := a.deps.Session.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if a.deps.Cart != nil {
		a.deps.Cart.ClearCart()
	}
	return nil
}

// Me returns the logged-in user.
func (a *Account) Me(ctx context.Context) (model.User, error) {
	u, err := a.deps.Session.CurrentUser(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return model.User{}, fmt.Errorf("%w: %w", ErrAuthRequired, err)
	}
	return u, err
}

// UpdateProfile changes name, email and optionally the password of the
// logged-in user, then refreshes the stored user.
func (a *Account) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) (model.User, error) {
	upd.Name = strings.TrimSpace(upd.Name)
	upd.Email = strings.TrimSpace(upd.Email)
	if err := upd.Validate(); err != nil {
		return model.User{}, err
	}

	const returnPath = "/profile"
	u, tok, err := a.deps.user(ctx, returnPath)
	if err != nil {
		return model.User{}, err
	}

	if err := a.deps.Client.UpdateUser(ctx, tok, u.ID, upd); err != nil {
		return model.User{}, a.deps.remote(ctx, "update profile", returnPath, err)
	}

	u.Name = upd.Name
	u.Email = upd.Email
	if err := a.deps.Session.Store().SaveUser(ctx, u); err != nil {
		return model.User{}, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}
