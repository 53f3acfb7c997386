package utils

import "math"

// Min returns the minimum of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// RoundKm converts a fractional distance to whole kilometers using
// round-half-away-from-zero, the convention every odometer counter in
// the engine shares.
func RoundKm(km float64) int {
	return int(math.Round(km))
}
