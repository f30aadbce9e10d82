package claim

import (
	"math"
	"strconv"
)

// Round2 rounds to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatFloat renders v the way the tables have always carried numbers:
// integral values keep a trailing ".0" (120.0), others print their shortest
// decimal form (12.25).
func FormatFloat(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatQuantity renders a template quantity: integral values print without
// a decimal point (120), others in shortest form (2.5).
func FormatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
