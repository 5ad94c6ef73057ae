package testutil

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/roach88/storefront/internal/model"
)

// DefaultSecret signs tokens minted by FakeShop.
var DefaultSecret = []byte("storefront-test-secret")

// MalformedToken is not a JWT.
const MalformedToken = "not.a-jwt"

// MintToken returns an HS256 token for u that expires at exp.
// A zero exp produces a token without an exp claim.
func MintToken(secret []byte, u model.User, exp time.Time) string {
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"role":  u.Role,
		"iat":   time.Now().Add(-time.Minute).Unix(),
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		panic(err)
	}
	return signed
}
