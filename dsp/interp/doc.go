// Package interp holds the fractional read kernels of the delay line.
//
// [Linear2] blends the two nearest samples and is the default. [Hermite4]
// fits a cubic through four neighbours and keeps more high-frequency
// content when the delay time glides. [Mode] selects between them.
package interp
