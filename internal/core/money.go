// Package core holds the domain types shared by the cache, merge and
// recorder components.
//
// This file contains the monetary amount type. Amounts are exact decimals,
// never floats: patches and snapshots round-trip through JSON and a float
// representation would drift.
package core

import (
	"github.com/shopspring/decimal"
)

// Money is an exact decimal currency amount.
type Money struct {
	decimal.Decimal
}

// NewMoney builds a Money from a decimal string such as "12.34".
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{d}, nil
}

// MustMoney is NewMoney for literals in tests and seed data; it panics on
// malformed input.
func MustMoney(s string) Money {
	m, err := NewMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromFloat converts a float amount coming from a JSON-ish caller.
func MoneyFromFloat(f float64) Money {
	return Money{decimal.NewFromFloat(f)}
}

func (m Money) Validate() error {
	if m.Decimal.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Equal compares two amounts by value, ignoring exponent representation
// (1.5 equals 1.50).
func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{m.Decimal.Add(other.Decimal)}
}
