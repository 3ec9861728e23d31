package engine

import (
	"time"

	"github.com/milk9111/lilah/scripting"
)

// maxSampleFrames bounds the frame counter between fps samples.
const maxSampleFrames = 2_000_000

// Timer tracks frame time. FPS is sampled over windows of at least one
// second.
type Timer struct {
	DeltaTime float64
	FPS       float64
	Time      float64
	// Fixed, when positive, is used as DeltaTime instead of wall time.
	Fixed float64

	frames int
	last   time.Time
	sample time.Time
	now    func() time.Time
}

// NewTimer creates a timer reading the clock from now, or time.Now when
// now is nil.
func NewTimer(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

// Update advances the timer by one frame.
func (t *Timer) Update() {
	now := t.now()
	if t.last.IsZero() {
		t.last, t.sample = now, now
		if t.Fixed > 0 {
			t.DeltaTime = t.Fixed
		}
		return
	}

	elapsed := now.Sub(t.last).Seconds()
	t.last = now
	if t.Fixed > 0 {
		t.DeltaTime = t.Fixed
	} else {
		t.DeltaTime = elapsed
	}
	t.Time += t.DeltaTime

	t.frames++
	if window := now.Sub(t.sample).Seconds(); window >= 1 {
		t.FPS = float64(t.frames) / window
		t.frames = 0
		t.sample = now
	}
	if t.frames > maxSampleFrames {
		t.frames = 0
		t.sample = now
	}
}

// Timing is the clock as pushed to scripts.
func (t *Timer) Timing() scripting.Timing {
	return scripting.Timing{DeltaTime: t.DeltaTime, FPS: t.FPS, Time: t.Time}
}
