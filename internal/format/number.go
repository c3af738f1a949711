// Package format renders dashboard magnitudes as short human strings.
package format

import (
	"math"
	"strconv"
)

// CurrencyBRL is the prefix used for revenue metrics.
const CurrencyBRL = "R$"

const (
	unitStep    = 1000
	largestUnit = "milhões"
)

var units = []string{"", "mil"}

// Number scales value by thousands and appends the unit: 1500 -> "1.50 mil".
// The prefix, when given, is followed by a single space.
func Number(value float64, prefix string) string {
	for _, unit := range units {
		if math.Abs(value) < unitStep {
			return compose(prefix, value, unit)
		}
		value /= unitStep
	}
	return compose(prefix, value, largestUnit)
}

// Count formats an integer metric such as a row count.
func Count(n int) string {
	return Number(float64(n), "")
}

// Money formats value with the BRL prefix.
func Money(value float64) string {
	return Number(value, CurrencyBRL)
}

func compose(prefix string, value float64, unit string) string {
	text := strconv.FormatFloat(value, 'f', 2, 64) + " " + unit
	if prefix == "" {
		return text
	}
	return prefix + " " + text
}
