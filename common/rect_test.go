package common

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

const eps = 1e-6

func TestRectIntersects(t *testing.T) {
	cases := []struct {
		name      string
		a, b      Rect
		overlap   bool
		wantDepth float64
	}{
		{
			name:      "x_overlap",
			a:         NewRect(cp.Vector{X: 0, Y: 0}, cp.Vector{X: 10, Y: 10}, 0),
			b:         NewRect(cp.Vector{X: 8, Y: 0}, cp.Vector{X: 10, Y: 10}, 0),
			overlap:   true,
			wantDepth: 2,
		},
		{
			name:      "y_overlap",
			a:         NewRect(cp.Vector{X: 0, Y: 0}, cp.Vector{X: 10, Y: 10}, 0),
			b:         NewRect(cp.Vector{X: 1, Y: 9}, cp.Vector{X: 10, Y: 10}, 0),
			overlap:   true,
			wantDepth: 1,
		},
		{
			name:    "separated",
			a:       NewRect(cp.Vector{X: 0, Y: 0}, cp.Vector{X: 10, Y: 10}, 0),
			b:       NewRect(cp.Vector{X: 20, Y: 0}, cp.Vector{X: 10, Y: 10}, 0),
			overlap: false,
		},
		{
			name:    "touching_edges",
			a:       NewRect(cp.Vector{X: 0, Y: 0}, cp.Vector{X: 10, Y: 10}, 0),
			b:       NewRect(cp.Vector{X: 10, Y: 0}, cp.Vector{X: 10, Y: 10}, 0),
			overlap: false,
		},
		{
			name:    "rotated_clears_corner",
			a:       NewRect(cp.Vector{X: 0, Y: 0}, cp.Vector{X: 10, Y: 10}, math.Pi/4),
			b:       NewRect(cp.Vector{X: 10.5, Y: 10.5}, cp.Vector{X: 10, Y: 10}, 0),
			overlap: false,
		},
		{
			name:    "rotated_overlap",
			a:       NewRect(cp.Vector{X: 0, Y: 0}, cp.Vector{X: 10, Y: 10}, math.Pi/4),
			b:       NewRect(cp.Vector{X: 11, Y: 0}, cp.Vector{X: 10, Y: 10}, 0),
			overlap: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ok, mtv := c.a.Intersects(c.b)
			if ok != c.overlap {
				t.Fatalf("expected overlap=%v, got %v", c.overlap, ok)
			}
			if !ok {
				if mtv != (cp.Vector{}) {
					t.Fatalf("expected zero mtv, got %v", mtv)
				}
				return
			}
			if c.wantDepth > 0 && math.Abs(mtv.Length()-c.wantDepth) > eps {
				t.Fatalf("expected depth %v, got %v", c.wantDepth, mtv.Length())
			}
		})
	}
}

func TestRectIntersectsSymmetry(t *testing.T) {
	pairs := []struct {
		name string
		a, b Rect
	}{
		{"aligned", NewRect(cp.Vector{}, cp.Vector{X: 4, Y: 2}, 0), NewRect(cp.Vector{X: 3, Y: 1}, cp.Vector{X: 4, Y: 2}, 0)},
		{"rotated", NewRect(cp.Vector{}, cp.Vector{X: 6, Y: 3}, 0.3), NewRect(cp.Vector{X: 2, Y: -1}, cp.Vector{X: 2, Y: 5}, -0.7)},
		{"contained", NewRect(cp.Vector{}, cp.Vector{X: 20, Y: 20}, 0), NewRect(cp.Vector{X: 1, Y: 1}, cp.Vector{X: 2, Y: 2}, 0)},
		{"apart", NewRect(cp.Vector{}, cp.Vector{X: 1, Y: 1}, 0), NewRect(cp.Vector{X: 5, Y: 5}, cp.Vector{X: 1, Y: 1}, 0.5)},
	}

	for _, p := range pairs {
		t.Run(p.name, func(t *testing.T) {
			okAB, mtvAB := p.a.Intersects(p.b)
			okBA, mtvBA := p.b.Intersects(p.a)
			if okAB != okBA {
				t.Fatalf("asymmetric overlap: ab=%v ba=%v", okAB, okBA)
			}
			if math.Abs(mtvAB.Length()-mtvBA.Length()) > eps {
				t.Fatalf("asymmetric depth: ab=%v ba=%v", mtvAB.Length(), mtvBA.Length())
			}
		})
	}
}

func TestRectIntersectsPushesAway(t *testing.T) {
	a := NewRect(cp.Vector{X: 0, Y: 0}, cp.Vector{X: 10, Y: 10}, 0)
	b := NewRect(cp.Vector{X: 8, Y: 0}, cp.Vector{X: 10, Y: 10}, 0)

	_, mtv := a.Intersects(b)
	if mtv.X >= 0 {
		t.Fatalf("expected mtv to point away from b, got %v", mtv)
	}
	moved := a.Translate(mtv)
	if ok, _ := moved.Intersects(b); ok {
		t.Fatalf("expected translated rect to be separated")
	}
}

func TestRectBB(t *testing.T) {
	r := NewRect(cp.Vector{X: 5, Y: 5}, cp.Vector{X: 2, Y: 4}, 0)
	bb := r.BB()
	want := cp.BB{L: 4, B: 3, R: 6, T: 7}
	if math.Abs(bb.L-want.L) > eps || math.Abs(bb.B-want.B) > eps || math.Abs(bb.R-want.R) > eps || math.Abs(bb.T-want.T) > eps {
		t.Fatalf("expected %v, got %v", want, bb)
	}
}

func TestLerpAndClamp(t *testing.T) {
	if got := Lerp(0.0, 10.0, 0.25); got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}
	if got := Clamp(12, 0, 10); got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
	if got := Clamp(-1.5, 0, 1); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
