package system

import (
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/ecs"
	"github.com/milk9111/lilah/ecs/component"
	"github.com/milk9111/lilah/logging"
)

var logger = logging.New("collision")

// ResolvePolicy decides whose solid flag gates the correction of a moving
// body.
type ResolvePolicy int

const (
	// ResolveAgainstOther corrects the moving body when the body it hits is
	// solid.
	ResolveAgainstOther ResolvePolicy = iota
	// ResolveSelf corrects the moving body when it is itself solid.
	ResolveSelf
)

func (p ResolvePolicy) String() string {
	switch p {
	case ResolveSelf:
		return "self"
	default:
		return "other"
	}
}

// ParseResolvePolicy accepts "other" or "self". Empty means other.
func ParseResolvePolicy(s string) (ResolvePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "other":
		return ResolveAgainstOther, nil
	case "self":
		return ResolveSelf, nil
	default:
		return ResolveAgainstOther, fmt.Errorf("collision: unknown resolve policy %q", s)
	}
}

type axis int

const (
	axisX axis = iota
	axisY
)

func (a axis) String() string {
	if a == axisY {
		return "y"
	}
	return "x"
}

// Fact is the result of one overlapping pair test.
type Fact struct {
	A, B   ecs.ID
	Axis   string
	MTV    cp.Vector
	Static bool
}

type collider struct {
	obj *ecs.GameObject
	rb  *component.Rigidbody
}

// CollisionSystem moves rigidbodies by their velocity and resolves overlap
// one axis at a time: integrate X, test and correct, then the same for Y.
type CollisionSystem struct {
	Policy ResolvePolicy

	facts []Fact
}

func NewCollisionSystem(policy ResolvePolicy) *CollisionSystem {
	return &CollisionSystem{Policy: policy}
}

// Facts returns the overlapping pairs found by the last Update.
func (c *CollisionSystem) Facts() []Fact {
	return c.facts
}

func (c *CollisionSystem) Update(s *ecs.State, dt float64) {
	if s == nil {
		return
	}
	c.facts = c.facts[:0]

	var bodies, statics []collider
	for _, g := range s.GameObjects() {
		if rb, ok := ecs.Wrap[*component.Rigidbody](g); ok {
			bodies = append(bodies, collider{obj: g, rb: rb})
		}
		if sc, ok := ecs.Wrap[*component.Scene](g); ok {
			for _, rb := range sc.Bodies {
				statics = append(statics, collider{obj: g, rb: rb})
			}
		}
	}

	for _, b := range bodies {
		b.rb.Colliding = nil
		b.rb.IntegrateX(dt)
	}
	c.resolve(s, bodies, statics, axisX, dt)

	for _, b := range bodies {
		b.rb.IntegrateY(dt)
	}
	c.resolve(s, bodies, statics, axisY, dt)
}

func (c *CollisionSystem) resolve(s *ecs.State, bodies, statics []collider, ax axis, dt float64) {
	for i, a := range bodies {
		corrected := false
		for j, b := range bodies {
			if i == j {
				continue
			}
			corrected = c.test(s, a, b, ax, dt, corrected, false)
		}
		for _, b := range statics {
			if b.obj == a.obj {
				continue
			}
			corrected = c.test(s, a, b, ax, dt, corrected, true)
		}
	}
}

// test checks a against b and corrects a at most once per axis pass. It
// returns whether a has been corrected.
func (c *CollisionSystem) test(s *ecs.State, a, b collider, ax axis, dt float64, corrected, static bool) bool {
	rectA, rectB := a.rb.Rect(), b.rb.Rect()
	if !rectA.BB().Intersects(rectB.BB()) {
		return corrected
	}
	ok, mtv := rectA.Intersects(rectB)
	if !ok || !a.obj.Init || !b.obj.Init {
		return corrected
	}

	a.rb.SetColliding(b.obj.ID)
	if !static {
		b.rb.SetColliding(a.obj.ID)
	}

	fact := Fact{A: a.obj.ID, B: b.obj.ID, Axis: ax.String(), MTV: mtv, Static: static}
	c.facts = append(c.facts, fact)
	s.Events().Push(ecs.Event{Type: ecs.EventCollision, Data: ecs.CollisionEvent{
		A: fact.A, B: fact.B, Axis: fact.Axis, MTV: mtv, Static: static,
	}})

	if corrected || !c.corrects(a.rb, b.rb) {
		return corrected
	}
	switch ax {
	case axisX:
		a.rb.CorrectX(dt)
	case axisY:
		a.rb.CorrectY(dt)
	}
	logger.Debug("corrected", "object", a.obj.ID.Name, "against", b.obj.ID.Name, "axis", ax, "depth", mtv.Length())
	return true
}

func (c *CollisionSystem) corrects(moving, other *component.Rigidbody) bool {
	if c.Policy == ResolveSelf {
		return moving.Solid
	}
	return other.Solid
}

// Overlaps runs the separating-axis test between two bodies.
func Overlaps(a, b *component.Rigidbody) (bool, cp.Vector) {
	return a.Rect().Intersects(b.Rect())
}
