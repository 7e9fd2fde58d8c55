//go:build fastmath

package tapdelay

import "github.com/meko-christian/algo-approx"

// mathSqrt computes sqrt(x) using fast approximation.
// Only the output meter uses it.
func mathSqrt(x float64) float64 {
	return approx.FastSqrt(x)
}
