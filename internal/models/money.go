package models

import (
	"fmt"
	"math"
)

// Cents is a currency amount in integer cents. All pricing math is done in
// cents and only formatted to dollars at the presentation edge.
type Cents int64

// Dollars returns the amount as a float64 dollar value.
func (c Cents) Dollars() float64 {
	return float64(c) / 100.0
}

// String formats the amount with two decimal places.
func (c Cents) String() string {
	return fmt.Sprintf("%.2f", c.Dollars())
}

// CeilToDollar rounds the amount up to the nearest whole dollar.
func (c Cents) CeilToDollar() Cents {
	if c%100 == 0 {
		return c
	}
	if c < 0 {
		return (c / 100) * 100
	}
	return (c/100 + 1) * 100
}

// CentsFromDollars converts a float dollar amount to cents, rounding to the
// nearest cent.
func CentsFromDollars(d float64) Cents {
	return Cents(math.Round(d * 100))
}
