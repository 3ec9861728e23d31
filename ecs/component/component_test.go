package component

import (
	"errors"
	"image"
	"testing"

	"github.com/jakecoffman/cp"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"Transform", KindTransform, false},
		{"rigidbody", KindRigidbody, false},
		{" Sfx ", KindSfx, false},
		{"Camera", KindInvalid, true},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseKind(c.in)
			if c.wantErr {
				if !errors.Is(err, ErrUnknownKind) {
					t.Fatalf("expected ErrUnknownKind, got %v", err)
				}
				return
			}
			if err != nil || got != c.want {
				t.Fatalf("expected %v, got %v err=%v", c.want, got, err)
			}
		})
	}
}

func TestNewEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			c, err := New(k)
			if err != nil {
				t.Fatalf("New(%v): %v", k, err)
			}
			if c.Kind() != k {
				t.Fatalf("expected kind %v, got %v", k, c.Kind())
			}
			if c.Clone().Kind() != k {
				t.Fatalf("clone changed kind")
			}
		})
	}
	if _, err := New(KindInvalid); err == nil {
		t.Fatalf("expected error for invalid kind")
	}
}

func TestCloneIsDeep(t *testing.T) {
	rb := NewRigidbody()
	rb.SetColliding(ID{Name: "wall", UUID: "u1"})
	rbc := rb.Clone().(*Rigidbody)
	rbc.Colliding.Name = "changed"
	rbc.Position.X = 99
	if rb.Colliding.Name != "wall" || rb.Position.X == 99 {
		t.Fatalf("rigidbody clone shares state with source")
	}

	an := NewAnimator()
	an.Insert("run", 4, 1)
	anc := an.Clone().(*Animator)
	anc.Insert("jump", 2, 2)
	if _, ok := an.States["jump"]; ok {
		t.Fatalf("animator clone shares states map")
	}

	sc := NewScene("level")
	sc.Tiles = []SceneTile{{Sprite: NewSprite("sheet")}}
	sc.Bodies = []*Rigidbody{NewRigidbody()}
	scc := sc.Clone().(*Scene)
	scc.Tiles[0].Sprite.TextureID = "other"
	scc.Bodies[0].Position.X = 42
	if sc.Tiles[0].Sprite.TextureID != "sheet" || sc.Bodies[0].Position.X == 42 {
		t.Fatalf("scene clone shares tiles or bodies")
	}
}

func TestRigidbodyDefaults(t *testing.T) {
	rb := NewRigidbody()
	if !rb.Solid {
		t.Fatalf("expected solid by default")
	}
	if rb.Bounds != (cp.Vector{X: 1, Y: 1}) || rb.Scale != (cp.Vector{X: 1, Y: 1}) {
		t.Fatalf("unexpected defaults: bounds=%v scale=%v", rb.Bounds, rb.Scale)
	}
	rb.Velocity = cp.Vector{X: 10, Y: -4}
	rb.IntegrateX(0.5)
	rb.IntegrateY(0.5)
	if rb.Position != (cp.Vector{X: 6, Y: -1}) {
		t.Fatalf("unexpected integrated position %v", rb.Position)
	}
	rb.CorrectX(0.5)
	rb.CorrectY(0.5)
	if rb.Position != (cp.Vector{X: 1, Y: 1}) {
		t.Fatalf("correction did not undo integration: %v", rb.Position)
	}
}

func TestSpriteSheet(t *testing.T) {
	s := NewSprite("player")
	s.CutSheet(1, 2, 4, 4)
	s.Bind(128, 64)

	if w, h := s.Size(); w != 32 || h != 16 {
		t.Fatalf("expected 32x16 cell, got %dx%d", w, h)
	}
	if s.Index != image.Pt(32, 32) {
		t.Fatalf("expected index (32,32), got %v", s.Index)
	}
	s.AnimSheet(3, 0)
	if got := s.SourceRect(); got != image.Rect(96, 0, 128, 16) {
		t.Fatalf("unexpected source rect %v", got)
	}
	if !s.CheckDirty() || s.CheckDirty() {
		t.Fatalf("CheckDirty should report once")
	}
}

func TestAnimatorUpdate(t *testing.T) {
	cases := []struct {
		name      string
		playing   bool
		state     string
		steps     int
		dt        float64
		wantFrame float64
	}{
		{"stopped", false, "run", 3, 0.1, 0},
		{"unknown_state", true, "fly", 3, 0.1, 0},
		{"advances", true, "run", 2, 0.1, 2},
		{"wraps", true, "run", 5, 0.1, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := NewAnimator()
			a.Insert("run", 4, 1)
			a.SetState(c.state)
			a.Playing = c.playing
			for i := 0; i < c.steps; i++ {
				a.Update(c.dt)
			}
			if diff := a.Frame - c.wantFrame; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("expected frame %v, got %v", c.wantFrame, a.Frame)
			}
		})
	}
}

func TestAnimatorApply(t *testing.T) {
	a := NewAnimator()
	a.Insert("run", 4, 1)
	a.SetState("run")
	a.Frame = 2.7

	s := NewSprite("player")
	s.CutSheet(0, 0, 4, 2)
	s.Bind(64, 32)
	a.Apply(s)
	if s.Index != image.Pt(32, 16) {
		t.Fatalf("expected index (32,16), got %v", s.Index)
	}
}

func TestInternModule(t *testing.T) {
	a := InternModule("player")
	b := InternModule("player")
	c := InternModule("enemy")
	if a != b {
		t.Fatalf("expected stable handle, got %d and %d", a, b)
	}
	if a == c || !c.Valid() {
		t.Fatalf("expected distinct valid handles")
	}
	if a.String() != "player" {
		t.Fatalf("expected name player, got %q", a.String())
	}
	if InternModule("").Valid() {
		t.Fatalf("empty name must not intern")
	}

	bh := NewBehaviour("player")
	if bh.Handle != a || bh.UUID == "" {
		t.Fatalf("behaviour not interned: %+v", bh)
	}
	bh.SetModule("enemy")
	if bh.Handle != c {
		t.Fatalf("SetModule did not re-intern")
	}
}

func TestSfxConsume(t *testing.T) {
	s := NewSfx("jump", "jump.wav")
	if s.Volume != DefaultSfxVolume {
		t.Fatalf("expected default volume")
	}
	if s.Consume() {
		t.Fatalf("nothing to consume yet")
	}
	s.Play()
	if !s.Consume() || s.Consume() {
		t.Fatalf("Consume should report the trigger once")
	}
}

const sceneJSON = `{
	"name": "level1",
	"path": "scenes/level1.json",
	"tile_sheets": [
		{"filename": "tiles.png", "path": "sheets/tiles", "absolute_path": "", "tile_size": [16, 16], "sheet_size": [64, 32]}
	],
	"layers": [
		{"tiles": [[[0, 0], {"sheet": "sheets/tiles", "sheet_id": [1, 0], "position": [0, 0]}]], "visible": true, "collision": false, "tile_sheet": "sheets/tiles", "current_tile_item": 0},
		{"tiles": [
			[[0, 1], {"sheet": "sheets/tiles", "sheet_id": [2, 1], "position": [0, 16]}],
			[[1, 1], {"sheet": "sheets/tiles", "sheet_id": [3, 1], "position": [16, 16]}]
		], "visible": true, "collision": true, "tile_sheet": "sheets/tiles", "current_tile_item": 0}
	],
	"markers": [{"position": [8, 40], "name": "spawn"}]
}`

func TestSceneLoad(t *testing.T) {
	data, err := ParseSceneData([]byte(sceneJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(data.Layers) != 2 || len(data.Layers[1].Tiles) != 2 {
		t.Fatalf("unexpected layers: %+v", data.Layers)
	}
	if data.Layers[1].Tiles[1].Cell != [2]int{1, 1} {
		t.Fatalf("unexpected cell %v", data.Layers[1].Tiles[1].Cell)
	}
	if m, ok := data.Marker("spawn"); !ok || m.Position != [2]float64{8, 40} {
		t.Fatalf("marker not decoded: %+v", m)
	}

	sc := NewScene("level1")
	if err := sc.Load(data, cp.Vector{X: 100, Y: 0}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sc.Tiles) != 3 {
		t.Fatalf("expected 3 tiles, got %d", len(sc.Tiles))
	}
	if len(sc.Bodies) != 2 {
		t.Fatalf("expected 2 static bodies, got %d", len(sc.Bodies))
	}
	if sc.Bodies[1].Position != (cp.Vector{X: 116, Y: 16}) || sc.Bodies[1].Bounds != (cp.Vector{X: 16, Y: 16}) {
		t.Fatalf("unexpected body %+v", sc.Bodies[1])
	}
	tile := sc.Tiles[1].Sprite
	if tile.TextureID != "tiles.png" || tile.Cut != image.Pt(4, 2) || tile.IndexCut != image.Pt(2, 1) || tile.Sort != 1 {
		t.Fatalf("unexpected tile sprite %+v", tile)
	}
	if ids := sc.TextureIDs(); len(ids) != 1 || ids[0] != "tiles.png" {
		t.Fatalf("unexpected texture ids %v", ids)
	}
}

func TestParseSceneDataUnknownSheet(t *testing.T) {
	bad := `{"name":"x","path":"","tile_sheets":[],"layers":[{"tiles":[[[0,0],{"sheet":"missing","sheet_id":[0,0],"position":[0,0]}]],"visible":true,"collision":false,"tile_sheet":"","current_tile_item":0}],"markers":[]}`
	if _, err := ParseSceneData([]byte(bad)); !errors.Is(err, ErrUnknownSheet) {
		t.Fatalf("expected ErrUnknownSheet, got %v", err)
	}
}
