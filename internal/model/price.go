package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// decimalCtx is shared by all Price arithmetic. 34 digits is decimal128,
// far beyond any cart total.
var decimalCtx = apd.BaseContext.WithPrecision(34)

// Bounds on parsed prices. Anything outside them cannot be a storefront
// amount and would push totals past decimalCtx.
const (
	maxIntegerDigits  = 15
	maxFractionDigits = 8
)

// Price is an exact decimal amount. The zero value is 0.
//
// A Price is immutable: Add and Mul return new values and never modify the
// receiver, so copies may share the underlying decimal.
type Price struct {
	d *apd.Decimal
}

// ParsePrice parses a decimal string such as "9.99" or "12".
// Empty input parses as zero.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{}, nil
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("parse price %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return Price{}, fmt.Errorf("parse price %q: not a finite number", s)
	}
	if d.NumDigits()+int64(d.Exponent) > maxIntegerDigits {
		return Price{}, fmt.Errorf("parse price %q: more than %d integer digits", s, maxIntegerDigits)
	}
	if d.Exponent < -maxFractionDigits {
		return Price{}, fmt.Errorf("parse price %q: more than %d decimal places", s, maxFractionDigits)
	}
	return Price{d: d}, nil
}

// MustPrice is like ParsePrice but panics on malformed input.
// Intended for constants and tests.
func MustPrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// NewPrice returns coeff * 10^exp, e.g. NewPrice(999, -2) is 9.99.
func NewPrice(coeff int64, exp int32) Price {
	return Price{d: apd.New(coeff, exp)}
}

func (p Price) dec() *apd.Decimal {
	if p.d == nil {
		return apd.New(0, 0)
	}
	return p.d
}

// Add returns p + o.
func (p Price) Add(o Price) Price {
	var r apd.Decimal
	mustOp(decimalCtx.Add(&r, p.dec(), o.dec()))
	return Price{d: &r}
}

// Mul returns p * n.
func (p Price) Mul(n int) Price {
	var r apd.Decimal
	mustOp(decimalCtx.Mul(&r, p.dec(), apd.New(int64(n), 0)))
	return Price{d: &r}
}

// Cmp compares p and o and returns -1, 0 or +1.
func (p Price) Cmp(o Price) int {
	return p.dec().Cmp(o.dec())
}

// Equal reports whether p and o are numerically equal ("9.9" equals "9.90").
func (p Price) Equal(o Price) bool {
	return p.Cmp(o) == 0
}

// Sign returns -1, 0 or +1.
func (p Price) Sign() int {
	return p.dec().Sign()
}

// IsZero reports whether p is zero.
func (p Price) IsZero() bool {
	return p.Sign() == 0
}

// Float64 returns the nearest float64. Only use it for display or
// interoperability; totals must be computed on Price.
func (p Price) Float64() float64 {
	f, err := p.dec().Float64()
	if err != nil {
		return 0
	}
	return f
}

// String renders the amount with exactly two decimal places. An amount too
// large to round within decimalCtx is rendered unrounded.
func (p Price) String() string {
	var r apd.Decimal
	if _, err := decimalCtx.Quantize(&r, p.dec(), -2); err != nil {
		return p.dec().Text('f')
	}
	return r.Text('f')
}

// MarshalJSON encodes the price as a JSON number without losing digits.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.dec().Text('f')), nil
}

// UnmarshalJSON accepts a JSON number, a JSON string holding a number, or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}

	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
	}

	v, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// mustOp panics when apd reports a trapped condition. With 34 digits of
// precision only overflow of the exponent range can trip it.
func mustOp(_ apd.Condition, err error) {
	if err != nil {
		panic(fmt.Sprintf("price arithmetic: %v", err))
	}
}
