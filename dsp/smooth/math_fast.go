//go:build fastmath

package smooth

import "github.com/meko-christian/algo-approx"

// mathExp computes e^x using fast approximation.
// Only used when deriving coefficients, never per sample.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}
