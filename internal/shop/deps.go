package shop

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/session"
)

// Deps are the collaborators every service is built from.
type Deps struct {
	Client  *api.Client
	Session *session.Manager
	Cart    *cart.Store
	Logger  *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// credential returns a usable token. When there is none the session is
// invalidated with returnPath and ErrAuthRequired is returned.
func (d Deps) credential(ctx context.Context, returnPath string) (string, error) {
	tok, err := d.Session.Credential(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			d.Session.Invalidate(ctx, returnPath)
			return "", fmt.Errorf("%w: %w", ErrAuthRequired, err)
		}
		return "", err
	}
	return tok, nil
}

// user returns the stored user and a usable token.
func (d Deps) user(ctx context.Context, returnPath string) (model.User, string, error) {
	tok, err := d.credential(ctx, returnPath)
	if err != nil {
		return model.User{}, "", err
	}
	u, err := d.Session.CurrentUser(ctx)
	if errors.Is(err, session.ErrNoSession) {
		d.Session.Invalidate(ctx, returnPath)
		return model.User{}, "", fmt.Errorf("%w: %w", ErrAuthRequired, err)
	}
	if err != nil {
		return model.User{}, "", err
	}
	return u, tok, nil
}

// remote maps a service failure. 401 invalidates the session; 403 becomes
// ErrForbidden. Anything else is wrapped with op.
func (d Deps) remote(ctx context.Context, op, returnPath string, err error) error {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		d.Session.Invalidate(ctx, returnPath)
		return fmt.Errorf("%s: %w: %w", op, ErrAuthRequired, err)
	case errors.Is(err, api.ErrForbidden):
		return fmt.Errorf("%s: %w: %w", op, ErrForbidden, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
