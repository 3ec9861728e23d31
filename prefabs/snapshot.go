package prefabs

import (
	"fmt"
	"sort"

	"github.com/milk9111/lilah/ecs"
	"github.com/milk9111/lilah/ecs/component"
	"gopkg.in/yaml.v3"
)

// World is a list of entities, the format written by Snapshot.
type World struct {
	Entities []EntitySpec `yaml:"entities"`
}

type snapshotWorld struct {
	Entities []snapshotEntity `yaml:"entities"`
}

type snapshotEntity struct {
	Name       string `yaml:"name"`
	UUID       string `yaml:"uuid"`
	Components []any  `yaml:"components"`
}

type typed[T any] struct {
	Type string `yaml:"type"`
	Spec T      `yaml:",inline"`
}

// Snapshot writes every live object in s as YAML. The output can be read
// back with ParseWorld and each entity rebuilt with Build.
func Snapshot(s *ecs.State) ([]byte, error) {
	var w snapshotWorld
	for _, g := range s.GameObjects() {
		e := snapshotEntity{Name: g.ID.Name, UUID: g.ID.UUID}
		for _, c := range g.Components() {
			e.Components = append(e.Components, encodeComponent(c))
		}
		w.Entities = append(w.Entities, e)
	}
	out, err := yaml.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("prefabs: snapshot: %w", err)
	}
	return out, nil
}

// ParseWorld decodes a snapshot.
func ParseWorld(data []byte) (World, error) {
	var w World
	if err := yaml.Unmarshal(data, &w); err != nil {
		return World{}, fmt.Errorf("prefabs: parse world: %w", err)
	}
	return w, nil
}

func encodeComponent(c component.Component) any {
	kind := c.Kind().String()
	switch c := c.(type) {
	case *component.Transform:
		scale := VecOf(c.Scale)
		return typed[TransformSpec]{kind, TransformSpec{
			Position: VecOf(c.Position),
			Pivot:    VecOf(c.Pivot),
			Scale:    &scale,
			Rotation: c.Rotation,
		}}
	case *component.Rigidbody:
		scale, bounds, solid := VecOf(c.Scale), VecOf(c.Bounds), c.Solid
		return typed[RigidbodySpec]{kind, RigidbodySpec{
			Position: VecOf(c.Position),
			Pivot:    VecOf(c.Pivot),
			Scale:    &scale,
			Rotation: c.Rotation,
			Bounds:   &bounds,
			Velocity: VecOf(c.Velocity),
			Solid:    &solid,
		}}
	case *component.Sprite:
		cut := PointOf(c.Cut)
		cell := c.IndexCut
		if c.Bound {
			w, h := c.Size()
			cell.X, cell.Y = c.Index.X/max(w, 1), c.Index.Y/max(h, 1)
		}
		return typed[SpriteSpec]{kind, SpriteSpec{
			Texture: c.TextureID,
			Tint:    ColorOf(c.Tint),
			Sort:    c.Sort,
			Cut:     &cut,
			Cell:    PointOf(cell),
		}}
	case *component.Text:
		order := c.Sort
		return typed[TextSpec]{kind, TextSpec{
			Text:     c.Text,
			Font:     c.Font,
			FontSize: c.FontSize,
			Color:    ColorOf(c.Color),
			Sort:     &order,
		}}
	case *component.Scene:
		return typed[SceneSpec]{kind, SceneSpec{File: c.File}}
	case *component.Animator:
		states := make(map[string]AnimStateSpec, len(c.States))
		for name, st := range c.States {
			states[name] = AnimStateSpec{Frames: st.Frames, Row: st.Row}
		}
		return typed[AnimatorSpec]{kind, AnimatorSpec{
			States:  states,
			State:   c.Current,
			Speed:   c.Speed,
			Playing: c.Playing,
		}}
	case *component.Behaviour:
		return typed[BehaviourSpec]{kind, BehaviourSpec{Module: c.Module}}
	case *component.Sfx:
		vol := c.Volume
		return typed[SfxSpec]{kind, SfxSpec{Name: c.Name, File: c.File, Volume: &vol}}
	default:
		return map[string]string{"type": kind}
	}
}

// EntityNames lists the entity names in a world, sorted.
func (w World) EntityNames() []string {
	out := make([]string, 0, len(w.Entities))
	for _, e := range w.Entities {
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out
}
