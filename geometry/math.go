// Package geometry provides scalar helpers for document-space arithmetic.
package geometry

import "math"

// Round2 rounds a coordinate to two decimal places.
// Every stored coordinate passes through this on mutation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Min returns the minimum of two floats.
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two floats.
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Abs returns the absolute value of a float.
func Abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
