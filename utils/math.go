package utils

import "math"

// Float64AlmostEqual evaluates if two float64s are equal within a given epsilon.
func Float64AlmostEqual(v1, v2, epsilon float64) bool {
	return math.Abs(v1-v2) < epsilon
}

func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Math.pow( x, 2 ) is slow, this is faster
func Square(n float64) float64 {
	return n * n
}
