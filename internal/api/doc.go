// Package api is the HTTP client for the remote storefront service.
//
// Every call takes the bearer token explicitly. The client holds no session
// state, so one Client can serve anonymous catalog reads and authenticated
// cart writes side by side. Credential handling (lookup, expiry, forced
// logout) lives in internal/session and internal/cart.
//
// # Errors
//
// A non-2xx response becomes *Error, which matches the status sentinels with
// errors.Is:
//
//	if errors.Is(err, api.ErrUnauthorized) { ... }   // 401
//	if errors.Is(err, api.ErrNotFound) { ... }       // 404
//
// Transport failures (DNS, refused connection, context cancellation) become
// *NetworkError, which matches ErrNetwork and also unwraps to the cause.
//
// # Requests
//
// Each request carries an X-Request-ID (UUIDv7 by default) that is also
// attached to the debug log line and to *Error for correlation with
// server logs.
package api
