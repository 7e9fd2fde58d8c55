// Package delay provides the fixed-capacity circular delay line used by the
// tap delay. Lines are sized once for the longest supported delay and read
// at fractional lengths with linear (default) or Hermite interpolation.
package delay
