package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

// unitCorners are the corners of the unit square centered on the origin,
// listed clockwise starting at the top left.
var unitCorners = [4]cp.Vector{
	{X: -0.5, Y: 0.5},
	{X: 0.5, Y: 0.5},
	{X: 0.5, Y: -0.5},
	{X: -0.5, Y: -0.5},
}

// Rect is an oriented rectangle stored as its four world-space corners.
type Rect struct {
	Points [4]cp.Vector
}

// NewRect builds a rectangle of the given size centered on center and
// rotated by rotation radians. Scale is applied before rotation.
func NewRect(center, size cp.Vector, rotation float64) Rect {
	rot := cp.ForAngle(rotation)
	var r Rect
	for i, c := range unitCorners {
		scaled := cp.Vector{X: c.X * size.X, Y: c.Y * size.Y}
		r.Points[i] = center.Add(scaled.Rotate(rot))
	}
	return r
}

// Center returns the mean of the corners.
func (r Rect) Center() cp.Vector {
	var sum cp.Vector
	for _, p := range r.Points {
		sum = sum.Add(p)
	}
	return sum.Mult(0.25)
}

// BB returns the axis-aligned bounds of the rectangle.
func (r Rect) BB() cp.BB {
	bb := cp.BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
	for _, p := range r.Points {
		bb.L = math.Min(bb.L, p.X)
		bb.B = math.Min(bb.B, p.Y)
		bb.R = math.Max(bb.R, p.X)
		bb.T = math.Max(bb.T, p.Y)
	}
	return bb
}

// Translate returns the rectangle moved by offset.
func (r Rect) Translate(offset cp.Vector) Rect {
	for i := range r.Points {
		r.Points[i] = r.Points[i].Add(offset)
	}
	return r
}

func (r Rect) edges() [4]cp.Vector {
	var out [4]cp.Vector
	for i := range r.Points {
		next := r.Points[(i+1)%len(r.Points)]
		out[i] = next.Sub(r.Points[i])
	}
	return out
}

func (r Rect) project(axis cp.Vector) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range r.Points {
		d := p.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// Intersects runs a separating-axis test against other. When the
// rectangles overlap it returns true and the minimum translation vector
// that pushes r out of other. Rectangles that only touch do not overlap.
func (r Rect) Intersects(other Rect) (bool, cp.Vector) {
	axes := make([]cp.Vector, 0, 8)
	for _, e := range r.edges() {
		axes = appendAxis(axes, e)
	}
	for _, e := range other.edges() {
		axes = appendAxis(axes, e)
	}
	if len(axes) == 0 {
		return false, cp.Vector{}
	}

	depth := math.MaxFloat64
	var best cp.Vector
	for _, axis := range axes {
		aMin, aMax := r.project(axis)
		bMin, bMax := other.project(axis)
		if aMax <= bMin || bMax <= aMin {
			return false, cp.Vector{}
		}

		var overlap float64
		if aMax > bMax {
			overlap = bMax - aMin
		} else {
			overlap = aMax - bMin
		}
		if math.Abs(overlap) < depth {
			depth = math.Abs(overlap)
			best = axis
		}
	}

	if other.Center().Sub(r.Center()).Dot(best) > 0 {
		best = best.Neg()
	}
	return true, best.Mult(depth)
}

func appendAxis(axes []cp.Vector, edge cp.Vector) []cp.Vector {
	if edge.LengthSq() == 0 {
		return axes
	}
	return append(axes, edge.Normalize())
}
