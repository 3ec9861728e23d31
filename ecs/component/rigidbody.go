package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/common"
)

// Rigidbody is a kinematic box collider. When Solid is false the body still
// records collisions in Colliding but is never pushed out of other bodies.
type Rigidbody struct {
	Position cp.Vector
	Pivot    cp.Vector
	Scale    cp.Vector
	Rotation float64
	Bounds   cp.Vector
	Velocity cp.Vector
	Solid    bool

	// Colliding is the last body this one overlapped during the current
	// physics step, or nil.
	Colliding *ID
}

func NewRigidbody() *Rigidbody {
	return &Rigidbody{
		Position: cp.Vector{X: 1, Y: 1},
		Scale:    cp.Vector{X: 1, Y: 1},
		Bounds:   cp.Vector{X: 1, Y: 1},
		Solid:    true,
	}
}

// NewRigidbodyAt returns a default body placed at pos.
func NewRigidbodyAt(pos cp.Vector) *Rigidbody {
	rb := NewRigidbody()
	rb.Position = pos
	return rb
}

func (r *Rigidbody) Kind() Kind { return KindRigidbody }

func (r *Rigidbody) Clone() Component {
	c := *r
	if r.Colliding != nil {
		id := *r.Colliding
		c.Colliding = &id
	}
	return &c
}

func (r *Rigidbody) IntegrateX(dt float64) { r.Position.X += r.Velocity.X * dt }
func (r *Rigidbody) IntegrateY(dt float64) { r.Position.Y += r.Velocity.Y * dt }
func (r *Rigidbody) CorrectX(dt float64)   { r.Position.X -= r.Velocity.X * dt }
func (r *Rigidbody) CorrectY(dt float64)   { r.Position.Y -= r.Velocity.Y * dt }

// Size is the collider extent after scaling.
func (r *Rigidbody) Size() cp.Vector {
	return cp.Vector{X: r.Bounds.X * r.Scale.X, Y: r.Bounds.Y * r.Scale.Y}
}

// Rect returns the oriented collider rectangle in world space.
func (r *Rigidbody) Rect() common.Rect {
	return common.NewRect(r.Position.Add(r.Pivot), r.Size(), r.Rotation)
}

// FollowTransform copies scale and pivot authored on a transform.
func (r *Rigidbody) FollowTransform(t *Transform) {
	r.Scale = t.Scale
	r.Pivot = t.Pivot
}

// FitSprite sizes the collider to one sprite cell.
func (r *Rigidbody) FitSprite(s *Sprite) {
	w, h := s.Size()
	r.Bounds = cp.Vector{X: float64(w), Y: float64(h)}
}

// SetColliding records other as the current collision partner.
func (r *Rigidbody) SetColliding(other ID) {
	id := other
	r.Colliding = &id
}
