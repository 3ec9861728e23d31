package common

import "github.com/jakecoffman/cp"

// Lerp interpolates between a and b by t.
func Lerp[T ~float32 | ~float64](a, b, t T) T {
	return a + t*(b-a)
}

// Clamp limits v to [lo, hi].
func Clamp[T ~float32 | ~float64 | ~int](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Vec is shorthand for a cp.Vector literal.
func Vec(x, y float64) cp.Vector {
	return cp.Vector{X: x, Y: y}
}
