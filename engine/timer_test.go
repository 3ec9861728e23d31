package engine

import (
	"math"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTimer(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	timer := NewTimer(clock.now)
	timer.Update()
	if timer.DeltaTime != 0 || timer.Time != 0 {
		t.Fatalf("first update should only start the clock: %+v", timer)
	}

	for range 30 {
		clock.advance(50 * time.Millisecond)
		timer.Update()
	}
	if math.Abs(timer.DeltaTime-0.05) > 1e-9 {
		t.Fatalf("delta = %v", timer.DeltaTime)
	}
	if math.Abs(timer.Time-1.5) > 1e-9 {
		t.Fatalf("time = %v", timer.Time)
	}
	if math.Abs(timer.FPS-20) > 1e-9 {
		t.Fatalf("fps = %v, want 20", timer.FPS)
	}

	fixed := NewTimer(clock.now)
	fixed.Fixed = 0.01
	fixed.Update()
	clock.advance(time.Second)
	fixed.Update()
	if fixed.DeltaTime != 0.01 || fixed.Time != 0.01 {
		t.Fatalf("fixed step ignored: %+v", fixed)
	}
	if got := fixed.Timing(); got.DeltaTime != 0.01 {
		t.Fatalf("Timing = %+v", got)
	}
}

func TestCamera(t *testing.T) {
	cam := Camera{Position: cp.Vector{X: 100, Y: 50}, Width: 320, Height: 240}
	cases := []struct {
		world, screen cp.Vector
	}{
		{cp.Vector{X: 100, Y: 50}, cp.Vector{X: 0, Y: 240}},
		{cp.Vector{X: 420, Y: 290}, cp.Vector{X: 320, Y: 0}},
		{cp.Vector{X: 150, Y: 100}, cp.Vector{X: 50, Y: 190}},
	}
	for _, c := range cases {
		if got := cam.WorldToScreen(c.world); got != c.screen {
			t.Fatalf("WorldToScreen(%v) = %v, want %v", c.world, got, c.screen)
		}
		if got := cam.ScreenToWorld(c.screen); got != c.world {
			t.Fatalf("ScreenToWorld(%v) = %v, want %v", c.screen, got, c.world)
		}
	}
	if !cam.Visible(cp.BB{L: 90, B: 40, R: 110, T: 60}) || cam.Visible(cp.BB{L: 0, B: 0, R: 10, T: 10}) {
		t.Fatalf("Visible is wrong")
	}
}
