package component

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// SceneTile is one drawable tile of a loaded scene, positioned relative to
// the owning game object.
type SceneTile struct {
	Layer  int
	Sprite *Sprite
	Offset cp.Vector
}

// Scene instantiates a SceneData tile map. Collision layers contribute
// static bodies in world space.
type Scene struct {
	File    string
	Tiles   []SceneTile
	Markers []Marker
	Bodies  []*Rigidbody
	Loaded  bool
}

func NewScene(file string) *Scene {
	return &Scene{File: file}
}

func (s *Scene) Kind() Kind { return KindScene }

func (s *Scene) Clone() Component {
	c := &Scene{File: s.File, Loaded: s.Loaded}
	if s.Tiles != nil {
		c.Tiles = make([]SceneTile, len(s.Tiles))
		for i, t := range s.Tiles {
			c.Tiles[i] = SceneTile{Layer: t.Layer, Offset: t.Offset, Sprite: t.Sprite.Clone().(*Sprite)}
		}
	}
	if s.Markers != nil {
		c.Markers = append([]Marker(nil), s.Markers...)
	}
	if s.Bodies != nil {
		c.Bodies = make([]*Rigidbody, len(s.Bodies))
		for i, b := range s.Bodies {
			c.Bodies[i] = b.Clone().(*Rigidbody)
		}
	}
	return c
}

// Load lays out the tiles of data. origin is the world position of the
// owning game object and offsets the static bodies.
func (s *Scene) Load(data *SceneData, origin cp.Vector) error {
	if data == nil {
		return fmt.Errorf("component: scene %q: no data", s.File)
	}
	s.Tiles = s.Tiles[:0]
	s.Bodies = s.Bodies[:0]
	s.Markers = append(s.Markers[:0], data.Markers...)

	for li, layer := range data.Layers {
		for _, lt := range layer.Tiles {
			sheet, ok := data.Sheet(lt.Tile.Sheet)
			if !ok {
				return fmt.Errorf("component: scene %q: %w: %q", s.File, ErrUnknownSheet, lt.Tile.Sheet)
			}
			cols, rows := sheet.Grid()
			sprite := NewSprite(sheet.TextureID())
			sprite.CutSheet(lt.Tile.SheetID[0], lt.Tile.SheetID[1], cols, rows)
			sprite.Sort = li

			pos := cp.Vector{X: lt.Tile.Position[0], Y: lt.Tile.Position[1]}
			s.Tiles = append(s.Tiles, SceneTile{Layer: li, Sprite: sprite, Offset: pos})

			if layer.Collision {
				body := NewRigidbodyAt(origin.Add(pos))
				body.Bounds = cp.Vector{X: float64(sheet.TileSize[0]), Y: float64(sheet.TileSize[1])}
				s.Bodies = append(s.Bodies, body)
			}
		}
	}
	s.Loaded = true
	return nil
}

// TextureIDs lists the distinct textures used by the tiles.
func (s *Scene) TextureIDs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range s.Tiles {
		if _, ok := seen[t.Sprite.TextureID]; ok {
			continue
		}
		seen[t.Sprite.TextureID] = struct{}{}
		out = append(out, t.Sprite.TextureID)
	}
	return out
}
