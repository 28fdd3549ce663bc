// Package money holds the rounding and percentage arithmetic shared by the
// reporting code. All monetary results are rounded half-up to two decimal
// places so that every report applies the same rule.
package money

import "math"

// Round2 rounds half-up to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Discounted returns price reduced by a whole-number percentage.
// The result is not rounded; callers round once per reported figure.
func Discounted(price int64, discountPercent int) float64 {
	return float64(price) - float64(price)*float64(discountPercent)/100
}

// Percent returns pct percent of v.
func Percent(v float64, pct int) float64 {
	return v * float64(pct) / 100
}
