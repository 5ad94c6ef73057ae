// Package token checks the storefront bearer credential on the client side.
//
// The storefront issues JWTs. The client cannot verify their signature (it
// does not hold the key) and does not need to: the service re-checks every
// request. What the client does need is to avoid sending a credential that is
// already expired or cannot be decoded, so it can force a fresh login instead
// of failing request by request.
//
// Validate distinguishes four failures so callers can log the reason:
//
//   - ErrMissing: no token stored
//   - ErrMalformed: not a decodable JWT
//   - ErrNoExpiry: decodable but carries no exp claim
//   - ErrExpired: exp is not in the future
//
// All four mean "treat the session as invalid".
package token
