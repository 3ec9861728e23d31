package component

import "github.com/jakecoffman/cp"

type Transform struct {
	Position cp.Vector
	Pivot    cp.Vector
	Scale    cp.Vector
	Rotation float64
}

func NewTransform(pos cp.Vector) *Transform {
	return &Transform{Position: pos, Scale: cp.Vector{X: 1, Y: 1}}
}

func (t *Transform) Kind() Kind { return KindTransform }

func (t *Transform) Clone() Component {
	c := *t
	return &c
}

// FollowBody copies the simulated position and rotation of a rigidbody.
func (t *Transform) FollowBody(rb *Rigidbody) {
	t.Position = rb.Position
	t.Rotation = rb.Rotation
}
