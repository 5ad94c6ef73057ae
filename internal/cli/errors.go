package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/session"
	"github.com/roach88/storefront/internal/shop"
)

// errInput marks bad command-line input.
var errInput = errors.New("invalid input")

// errSessionExpired is reported when a command finished but had to log the
// user out along the way.
var errSessionExpired = errors.New("session expired, log in again")

func inputErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInput, fmt.Sprintf(format, args...))
}

// classify maps an error onto an exit code, a machine code and optional
// details for the JSON envelope.
func classify(err error) (exit int, code string, details interface{}) {
	var verr *model.ValidationError
	var stock *cart.InsufficientStockError

	switch {
	case errors.Is(err, errInput):
		return ExitCommandError, ErrCodeInput, nil

	case errors.Is(err, errSessionExpired),
		errors.Is(err, shop.ErrAuthRequired),
		errors.Is(err, session.ErrNoSession),
		errors.Is(err, shop.ErrNoToken):
		return ExitAuthRequired, ErrCodeAuth, nil

	case errors.Is(err, shop.ErrInvalidCredentials),
		errors.Is(err, shop.ErrForbidden),
		errors.Is(err, api.ErrForbidden),
		errors.Is(err, api.ErrUnauthorized):
		return ExitFailure, ErrCodeAuth, nil

	case errors.As(err, &stock):
		return ExitFailure, ErrCodeStock, map[string]int{
			"requested": stock.Requested,
			"available": stock.Available,
		}

	case errors.Is(err, cart.ErrNotFound),
		errors.Is(err, shop.ErrNotFound),
		errors.Is(err, api.ErrNotFound):
		return ExitFailure, ErrCodeNotFound, nil

	case errors.As(err, &verr):
		return ExitFailure, ErrCodeValidation, verr.Fields

	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, shop.ErrAddressRequired),
		errors.Is(err, shop.ErrEmailExists),
		errors.Is(err, shop.ErrLoginRejected),
		errors.Is(err, api.ErrBadRequest),
		errors.Is(err, api.ErrConflict):
		return ExitFailure, ErrCodeValidation, messages(api.Messages(err))

	case errors.Is(err, api.ErrNetwork),
		errors.Is(err, api.ErrServer):
		return ExitFailure, ErrCodeRemote, nil
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return ExitFailure, ErrCodeRemote, messages(apiErr.Messages)
	}
	return ExitFailure, ErrCodeInternal, nil
}

func messages(m []string) interface{} {
	if len(m) == 0 {
		return nil
	}
	return m
}
