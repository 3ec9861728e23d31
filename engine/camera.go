package engine

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/common"
)

// CameraName is the game object whose Transform positions the view.
const CameraName = "Camera"

// Camera maps world space (y up) to screen space (y down). Position is the
// world point drawn at the bottom left of the screen.
type Camera struct {
	Position cp.Vector
	Width    float64
	Height   float64
}

func (c Camera) WorldToScreen(p cp.Vector) cp.Vector {
	return cp.Vector{X: p.X - c.Position.X, Y: c.Height - p.Y + c.Position.Y}
}

func (c Camera) ScreenToWorld(p cp.Vector) cp.Vector {
	return cp.Vector{X: p.X + c.Position.X, Y: c.Height - p.Y + c.Position.Y}
}

// RectToScreen converts every corner of r.
func (c Camera) RectToScreen(r common.Rect) common.Rect {
	for i, p := range r.Points {
		r.Points[i] = c.WorldToScreen(p)
	}
	return r
}

// Visible reports whether the world box bb overlaps the view.
func (c Camera) Visible(bb cp.BB) bool {
	view := cp.BB{L: c.Position.X, B: c.Position.Y, R: c.Position.X + c.Width, T: c.Position.Y + c.Height}
	return view.Intersects(bb)
}
