// Package core provides the ledger domain types.
//
// Amounts are kept as integer cents so sums are exact; conversion to and
// from decimal.Decimal happens at the edges.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmount bounds amounts so that cents fit in an int64.
var maxAmount = decimal.New((1<<63-1)/100, 0)

// MoneyFromDecimal converts a decimal amount to Money.
//
// Fractional digits beyond the second are rounded half away from zero:
//
//	MoneyFromDecimal(12.345) -> 1235 cents
//	MoneyFromDecimal(-0.005) -> -1 cent
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	rounded := d.Round(2)
	if rounded.Abs().GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: rounded.Shift(2).IntPart()}, nil
}

// ParseAmount parses a user supplied amount such as "12.50" or "12,50".
//
// A leading sign is accepted so that refunds can be recorded as negative
// amounts. Exponent notation is rejected.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d)
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// String formats m with exactly two fractional digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
