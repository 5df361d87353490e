// Package core holds the transaction value type and amount handling shared by
// the store, the aggregation code and the HTTP boundary.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses an amount string supplied by a caller. It accepts both
// dot (12.34) and comma (12,34) decimal separators and returns ErrInvalidAmount
// for anything that is not a finite decimal number. Callers at the request
// boundary must use this and reject the input on error; the silent
// fallback-to-zero lives only in CoerceAmount, at the storage layer.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// CoerceAmount converts a stored amount string to a float, falling back to 0.0
// when the value does not parse. The store uses this on load so that a corrupt
// cell degrades to zero instead of failing the whole table.
func CoerceAmount(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
