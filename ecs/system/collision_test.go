package system

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/ecs"
	"github.com/milk9111/lilah/ecs/component"
)

const dt = 1.0 / 60

func newBody(t *testing.T, s *ecs.State, name string, pos, size, vel cp.Vector, solid bool) (*ecs.GameObject, *component.Rigidbody) {
	t.Helper()
	rb := component.NewRigidbodyAt(pos)
	rb.Bounds = size
	rb.Velocity = vel
	rb.Solid = solid
	g := ecs.NewGameObject(name).With(rb)
	g.Init = true
	s.Insert(g)
	return g, rb
}

func xOverlap(a, b *component.Rigidbody) float64 {
	aMin, aMax := a.Position.X-a.Size().X/2, a.Position.X+a.Size().X/2
	bMin, bMax := b.Position.X-b.Size().X/2, b.Position.X+b.Size().X/2
	return math.Max(0, math.Min(aMax, bMax)-math.Max(aMin, bMin))
}

func TestParseResolvePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    ResolvePolicy
		wantErr bool
	}{
		{"", ResolveAgainstOther, false},
		{"other", ResolveAgainstOther, false},
		{"SELF", ResolveSelf, false},
		{"both", ResolveAgainstOther, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseResolvePolicy(c.in)
			if (err != nil) != c.wantErr || got != c.want {
				t.Fatalf("ParseResolvePolicy(%q) = %v, %v", c.in, got, err)
			}
		})
	}
}

func TestCollisionSymmetry(t *testing.T) {
	cases := []struct {
		name       string
		posA, posB cp.Vector
		rotB       float64
	}{
		{"aligned_overlap", cp.Vector{X: 0, Y: 0}, cp.Vector{X: 12, Y: 3}, 0},
		{"rotated_overlap", cp.Vector{X: 0, Y: 0}, cp.Vector{X: 14, Y: -2}, 0.6},
		{"apart", cp.Vector{X: 0, Y: 0}, cp.Vector{X: 40, Y: 0}, 0.2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := component.NewRigidbodyAt(c.posA)
			a.Bounds = cp.Vector{X: 16, Y: 16}
			b := component.NewRigidbodyAt(c.posB)
			b.Bounds = cp.Vector{X: 16, Y: 16}
			b.Rotation = c.rotB

			okAB, mtvAB := Overlaps(a, b)
			okBA, mtvBA := Overlaps(b, a)
			if okAB != okBA {
				t.Fatalf("overlap differs: ab=%v ba=%v", okAB, okBA)
			}
			if math.Abs(mtvAB.Length()-mtvBA.Length()) > 1e-6 {
				t.Fatalf("mtv magnitude differs: %v vs %v", mtvAB.Length(), mtvBA.Length())
			}
		})
	}
}

func TestCollisionConvergenceOnX(t *testing.T) {
	cases := []struct {
		name       string
		velA, velB float64
		gap        float64
	}{
		{"approach_into_overlap", 300, 0, 2},
		{"head_on", 300, -300, 1},
		{"already_overlapping", 60, -60, -4},
		{"moving_apart", -120, 120, -2},
		{"no_contact", 10, 0, 30},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := ecs.NewState()
			size := cp.Vector{X: 16, Y: 16}
			_, a := newBody(t, s, "a", cp.Vector{X: 0, Y: 0}, size, cp.Vector{X: c.velA}, true)
			_, b := newBody(t, s, "b", cp.Vector{X: 16 + c.gap, Y: 0}, size, cp.Vector{X: c.velB}, true)

			before := xOverlap(a, b)
			NewCollisionSystem(ResolveAgainstOther).Update(s, dt)
			after := xOverlap(a, b)
			if after > before+1e-9 {
				t.Fatalf("penetration increased from %v to %v", before, after)
			}
		})
	}
}

func TestCollisionSolidTriggerScenario(t *testing.T) {
	cases := []struct {
		name           string
		policy         ResolvePolicy
		wantACorrected bool
		wantBPushed    bool
	}{
		{"self_policy", ResolveSelf, false, true},
		{"other_policy", ResolveAgainstOther, true, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := ecs.NewState()
			size := cp.Vector{X: 16, Y: 16}
			ga, a := newBody(t, s, "trigger", cp.Vector{X: 0, Y: 0}, size, cp.Vector{X: 60}, false)
			gb, b := newBody(t, s, "wall", cp.Vector{X: 17, Y: 0}, size, cp.Vector{X: -120}, true)

			sys := NewCollisionSystem(c.policy)
			sys.Update(s, dt)

			if c.wantACorrected {
				if math.Abs(a.Position.X) > 1e-9 {
					t.Fatalf("expected trigger corrected back to 0, got %v", a.Position.X)
				}
			} else if math.Abs(a.Position.X-1) > 1e-9 {
				t.Fatalf("expected trigger position unchanged by resolution (x=1), got %v", a.Position.X)
			}

			if c.wantBPushed {
				if math.Abs(b.Position.X-17) > 1e-9 {
					t.Fatalf("expected wall corrected away to 17, got %v", b.Position.X)
				}
			} else if math.Abs(b.Position.X-15) > 1e-9 {
				t.Fatalf("expected wall uncorrected at 15, got %v", b.Position.X)
			}

			if a.Colliding == nil || !a.Colliding.Same(gb.ID) {
				t.Fatalf("trigger colliding = %v, want %v", a.Colliding, gb.ID)
			}
			if b.Colliding == nil || !b.Colliding.Same(ga.ID) {
				t.Fatalf("wall colliding = %v, want %v", b.Colliding, ga.ID)
			}
			if len(sys.Facts()) == 0 || s.Events().Len() == 0 {
				t.Fatalf("expected recorded collision facts and events")
			}
		})
	}
}

func TestCollisionRequiresInit(t *testing.T) {
	s := ecs.NewState()
	size := cp.Vector{X: 16, Y: 16}
	ga, a := newBody(t, s, "a", cp.Vector{}, size, cp.Vector{X: 60}, true)
	_, b := newBody(t, s, "b", cp.Vector{X: 10}, size, cp.Vector{}, true)
	ga.Init = false

	NewCollisionSystem(ResolveAgainstOther).Update(s, dt)
	if a.Colliding != nil || b.Colliding != nil {
		t.Fatalf("uninitialized objects must not collide")
	}
	if math.Abs(a.Position.X-1) > 1e-9 {
		t.Fatalf("expected a to move freely, got %v", a.Position.X)
	}
}

func TestCollisionAgainstSceneBodies(t *testing.T) {
	s := ecs.NewState()
	scene := component.NewScene("level")
	floor := component.NewRigidbodyAt(cp.Vector{X: 0, Y: -16})
	floor.Bounds = cp.Vector{X: 64, Y: 16}
	scene.Bodies = []*component.Rigidbody{floor}
	level := ecs.NewGameObject("level").With(scene)
	level.Init = true
	s.Insert(level)

	_, player := newBody(t, s, "player", cp.Vector{X: 0, Y: 0.5}, cp.Vector{X: 16, Y: 16}, cp.Vector{X: 30, Y: -120}, false)

	NewCollisionSystem(ResolveAgainstOther).Update(s, dt)
	if math.Abs(player.Position.Y-0.5) > 1e-9 {
		t.Fatalf("expected fall undone by solid floor, got y=%v", player.Position.Y)
	}
	if math.Abs(player.Position.X-0.5) > 1e-9 {
		t.Fatalf("expected x motion kept, got x=%v", player.Position.X)
	}
	if player.Colliding == nil || player.Colliding.Name != "level" {
		t.Fatalf("expected colliding with level, got %v", player.Colliding)
	}
	if floor.Colliding != nil {
		t.Fatalf("static bodies do not record back-references")
	}
}

func TestCollisionClearsStaleReference(t *testing.T) {
	s := ecs.NewState()
	size := cp.Vector{X: 16, Y: 16}
	_, a := newBody(t, s, "a", cp.Vector{}, size, cp.Vector{}, true)
	a.SetColliding(ecs.ID{Name: "old", UUID: "old"})

	NewCollisionSystem(ResolveAgainstOther).Update(s, dt)
	if a.Colliding != nil {
		t.Fatalf("expected colliding cleared, got %v", a.Colliding)
	}
}
