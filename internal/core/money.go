// Package core holds the wedding planning domain: records, validation and
// the aggregations behind the guest, budget, task and dashboard views.
package core

import (
	"bytes"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// Money is an amount in integer cents.
type Money struct {
	Cents int64
}

// ParseMoney converts a decimal string to Money, rounding half-up to the cent.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Zero is allowed,
// signs are not.
//
//	ParseMoney("12.34")  -> 1234
//	ParseMoney("12,345") -> 1235
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.IsNegative() || cents.GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// ParseDecimalToCents is ParseMoney restricted to strictly positive amounts.
func ParseDecimalToCents(s string) (int64, error) {
	m, err := ParseMoney(s)
	if err != nil {
		return 0, err
	}
	if m.Cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return m.Cents, nil
}

// Validate requires a strictly positive amount.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Euros returns the value as a float64 for display and charts only.
func (m Money) Euros() float64 {
	return m.Decimal().InexactFloat64()
}

// String renders the amount with two decimals and a dot separator.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// DivRound divides by n, rounding half away from zero. Division by zero yields 0.
func (m Money) DivRound(n int) Money {
	if n == 0 {
		return Money{}
	}
	q := decimal.NewFromInt(m.Cents).DivRound(decimal.NewFromInt(int64(n)), 0)
	return Money{Cents: q.IntPart()}
}

// Percent returns m as a percentage of total with one decimal; 0 when total is 0.
func (m Money) Percent(total Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	p := decimal.NewFromInt(m.Cents).Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(total.Cents), 1)
	return p.InexactFloat64()
}

// MarshalJSON writes a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(string(b), ",", "."))
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = d.Shift(2).Round(0).IntPart()
	return nil
}
