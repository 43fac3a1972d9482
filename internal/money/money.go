// Package money converts euro amounts to integer cents for storage.
package money

import "math"

// ToCents converts a euro amount to cents. Nil stays nil.
func ToCents(eur *float64) *int64 {
	if eur == nil {
		return nil
	}
	c := int64(math.RoundToEven(*eur * 100))
	return &c
}

// FromCents converts stored cents back to euros.
func FromCents(cents *int64) *float64 {
	if cents == nil {
		return nil
	}
	eur := float64(*cents) / 100
	return &eur
}
