package engine

import (
	"cmp"
	"image"
	"image/color"
	"slices"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/common"
	"github.com/milk9111/lilah/ecs"
	"github.com/milk9111/lilah/ecs/component"
)

// DrawOp places a sprite or text in screen space. Screen is the center of
// the drawn cell.
type DrawOp struct {
	Screen   cp.Vector
	Scale    cp.Vector
	Rotation float64
	Tint     color.RGBA
}

// Renderer issues one draw call per visual component.
type Renderer interface {
	DrawSprite(tex *assets.Texture, src image.Rectangle, op DrawOp)
	DrawText(font *assets.Font, text string, size int, clr color.RGBA, op DrawOp)
	// DrawRect outlines r, given in screen space.
	DrawRect(r common.Rect, clr color.RGBA)
}

// NopRenderer discards every draw call.
type NopRenderer struct{}

func (NopRenderer) DrawSprite(*assets.Texture, image.Rectangle, DrawOp)    {}
func (NopRenderer) DrawText(*assets.Font, string, int, color.RGBA, DrawOp) {}
func (NopRenderer) DrawRect(common.Rect, color.RGBA)                       {}

var (
	debugBodyColor   = color.RGBA{R: 0x40, G: 0xff, B: 0x40, A: 0xff}
	debugHitColor    = color.RGBA{R: 0xff, G: 0x40, B: 0x40, A: 0xff}
	debugStaticColor = color.RGBA{R: 0x40, G: 0x80, B: 0xff, A: 0xff}
)

type drawItem struct {
	sort  int
	index int
	draw  func(r Renderer)
}

// Draw renders every visual component ordered by sort key, then by object
// index. Scene tiles use their layer as the sort key.
func (e *Engine) Draw(r Renderer) {
	start := time.Now()
	items := e.drawList()
	slices.SortStableFunc(items, func(a, b drawItem) int {
		if c := cmp.Compare(a.sort, b.sort); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})
	for _, it := range items {
		it.draw(r)
	}
	if e.Debug {
		e.drawDebug(r)
	}
	e.measure("frame.draw", start)
}

func (e *Engine) drawList() []drawItem {
	var items []drawItem
	cam := e.Camera
	for _, g := range e.State.GameObjects() {
		pos, scale, rot := placement(g)

		if sp, ok := ecs.Wrap[*component.Sprite](g); ok && sp.Bound {
			if tex, ok := e.State.Textures[sp.TextureID]; ok {
				op := DrawOp{Screen: cam.WorldToScreen(pos), Scale: scale, Rotation: rot, Tint: sp.Tint}
				src := sp.SourceRect()
				items = append(items, drawItem{sort: sp.Sort, index: g.Index, draw: func(r Renderer) {
					r.DrawSprite(tex, src, op)
				}})
			}
		}

		if txt, ok := ecs.Wrap[*component.Text](g); ok && txt.Text != "" {
			font := e.State.Fonts[txt.Font]
			op := DrawOp{Screen: cam.WorldToScreen(pos), Scale: scale, Rotation: rot, Tint: txt.Color}
			text, size, clr := txt.Text, txt.FontSize, txt.Color
			items = append(items, drawItem{sort: txt.Sort, index: g.Index, draw: func(r Renderer) {
				r.DrawText(font, text, size, clr, op)
			}})
			txt.Changed = false
		}

		if sc, ok := ecs.Wrap[*component.Scene](g); ok && sc.Loaded {
			for _, tile := range sc.Tiles {
				tex, ok := e.State.Textures[tile.Sprite.TextureID]
				if !ok || !tile.Sprite.Bound {
					continue
				}
				op := DrawOp{Screen: cam.WorldToScreen(pos.Add(tile.Offset)), Scale: cp.Vector{X: 1, Y: 1}, Tint: tile.Sprite.Tint}
				src := tile.Sprite.SourceRect()
				items = append(items, drawItem{sort: tile.Layer, index: g.Index, draw: func(r Renderer) {
					r.DrawSprite(tex, src, op)
				}})
			}
		}
	}
	return items
}

// placement is where an object is drawn: its Transform, else its
// Rigidbody, else the origin.
func placement(g *ecs.GameObject) (pos, scale cp.Vector, rot float64) {
	if tr, ok := ecs.Wrap[*component.Transform](g); ok {
		return tr.Position.Add(tr.Pivot), tr.Scale, tr.Rotation
	}
	if rb, ok := ecs.Wrap[*component.Rigidbody](g); ok {
		return rb.Position.Add(rb.Pivot), rb.Scale, rb.Rotation
	}
	return cp.Vector{}, cp.Vector{X: 1, Y: 1}, 0
}

func (e *Engine) drawDebug(r Renderer) {
	for _, g := range e.State.GameObjects() {
		if rb, ok := ecs.Wrap[*component.Rigidbody](g); ok {
			clr := debugBodyColor
			if rb.Colliding != nil {
				clr = debugHitColor
			}
			r.DrawRect(e.Camera.RectToScreen(rb.Rect()), clr)
		}
		if sc, ok := ecs.Wrap[*component.Scene](g); ok {
			for _, body := range sc.Bodies {
				if e.Camera.Visible(body.Rect().BB()) {
					r.DrawRect(e.Camera.RectToScreen(body.Rect()), debugStaticColor)
				}
			}
		}
	}
}
