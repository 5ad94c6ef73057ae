package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMissing   = errors.New("token: missing")
	ErrMalformed = errors.New("token: malformed")
	ErrNoExpiry  = errors.New("token: no expiry")
	ErrExpired   = errors.New("token: expired")
)

// Claims is the subset of the storefront JWT payload the client reads.
// Subject is left untyped because the service encodes user ids as numbers.
type Claims struct {
	Subject   any              `json:"sub,omitempty"`
	Email     string           `json:"email,omitempty"`
	Role      string           `json:"role,omitempty"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
}

// Valid satisfies jwt.Claims. Expiry is checked by Validator against its own
// clock, not here.
func (c *Claims) Valid() error {
	return nil
}

// Validator decodes tokens and checks expiry against an injectable clock.
type Validator struct {
	now    func() time.Time
	parser *jwt.Parser
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// NewValidator creates a Validator using the wall clock unless overridden.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		now:    time.Now,
		parser: jwt.NewParser(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Decode parses the token payload without verifying the signature.
func (v *Validator) Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissing
	}
	claims := &Claims{}
	if _, _, err := v.parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims, nil
}

// Validate decodes raw and rejects it once the clock has passed exp. A token
// is still usable at the exact second it expires.
func (v *Validator) Validate(raw string) (*Claims, error) {
	claims, err := v.Decode(raw)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, ErrNoExpiry
	}
	if v.now().After(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w at %s", ErrExpired, claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
	}
	return claims, nil
}

// IsExpired reports whether raw should not be used. It is the boolean
// form of Validate.
func (v *Validator) IsExpired(raw string) bool {
	_, err := v.Validate(raw)
	return err != nil
}
