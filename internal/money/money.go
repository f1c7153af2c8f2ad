// Package money holds the rounding and coercion primitives every monetary
// value in the pricing engine passes through. Totals are only reproducible
// across preview, checkout guard and receipt rendering if every intermediate
// amount goes through Round2.
package money

import (
	"math"
	"strconv"
	"strings"
)

// epsilon absorbs float drift such as 2.675*100 == 267.49999999999997
// before the half-up rounding step.
const epsilon = 1e-9

// Round2 rounds to the nearest cent, half rounding up.
// Non-finite input rounds to zero.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Floor(x*100+0.5+epsilon) / 100
}

// ToNumber coerces v to a finite float64. NaN, infinities and unparseable
// values coerce to zero. It never panics.
func ToNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return finite(parsed)
	case bool:
		if n {
			return 1
		}
		return 0
	case nil:
		return 0
	default:
		return 0
	}
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
