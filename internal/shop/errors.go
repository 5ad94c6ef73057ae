package shop

import "errors"

var (
	// ErrAuthRequired means the call needs a logged-in user and there is
	// none, or the service rejected the stored credential.
	ErrAuthRequired = errors.New("shop: authentication required")

	// ErrForbidden means the logged-in user lacks the required role.
	ErrForbidden = errors.New("shop: forbidden")

	// ErrInvalidCredentials is a login rejected with 401.
	ErrInvalidCredentials = errors.New("shop: invalid email or password")

	// ErrLoginRejected is a login rejected with 400.
	ErrLoginRejected = errors.New("shop: login request rejected")

	// ErrEmailExists is a signup for an email that is already registered.
	ErrEmailExists = errors.New("shop: email already registered")

	// ErrNoToken is a logout without a stored token.
	ErrNoToken = errors.New("shop: no token to log out")

	// ErrNotFound is a product the service does not know.
	ErrNotFound = errors.New("shop: not found")

	// ErrAddressRequired is a checkout confirmation with a blank address.
	ErrAddressRequired = errors.New("shop: shipping address is required")
)
