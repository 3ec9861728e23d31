package prefabs

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/ecs"
	"github.com/milk9111/lilah/ecs/component"
	"github.com/spf13/cast"
)

var ErrMissingType = errors.New("prefabs: component has no type")

type builder func(raw map[string]any) (component.Component, error)

var builders = map[component.Kind]builder{
	component.KindTransform: buildTransform,
	component.KindRigidbody: buildRigidbody,
	component.KindSprite:    buildSprite,
	component.KindText:      buildText,
	component.KindScene:     buildScene,
	component.KindAnimator:  buildAnimator,
	component.KindBehaviour: buildBehaviour,
	component.KindSfx:       buildSfx,
}

// Build creates a game object from spec. Components are attached in file
// order and duplicate singleton kinds are an error.
func Build(spec EntitySpec) (*ecs.GameObject, error) {
	if spec.Name == "" {
		return nil, errors.New("prefabs: entity has no name")
	}
	g := ecs.NewGameObject(spec.Name)
	if spec.UUID != "" {
		g.ID.UUID = spec.UUID
	}
	for i, raw := range spec.Components {
		c, err := BuildComponent(raw)
		if err != nil {
			return nil, fmt.Errorf("prefabs: %s component %d: %w", spec.Name, i, err)
		}
		g.With(c)
	}
	return g.Build()
}

// BuildFile loads and builds the entity in filename.
func BuildFile(fsys fs.FS, filename string) (*ecs.GameObject, error) {
	spec, err := LoadEntitySpec(fsys, filename)
	if err != nil {
		return nil, err
	}
	g, err := Build(spec)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, filename)
	}
	logger.Debug("built prefab", "file", filename, "entity", g.ID.Name, "components", g.Len())
	return g, nil
}

// BuildComponent decodes one raw component entry by its `type` key.
func BuildComponent(raw map[string]any) (component.Component, error) {
	typ := cast.ToString(raw["type"])
	if typ == "" {
		return nil, ErrMissingType
	}
	kind, err := component.ParseKind(typ)
	if err != nil {
		return nil, err
	}
	rest := maps.Clone(raw)
	delete(rest, "type")
	return builders[kind](rest)
}

func buildTransform(raw map[string]any) (component.Component, error) {
	spec, err := DecodeComponentSpec[TransformSpec](raw)
	if err != nil {
		return nil, err
	}
	t := component.NewTransform(spec.Position.Vector())
	t.Pivot = spec.Pivot.Vector()
	t.Rotation = spec.Rotation
	if spec.Scale != nil {
		t.Scale = spec.Scale.Vector()
	}
	return t, nil
}

func buildRigidbody(raw map[string]any) (component.Component, error) {
	spec, err := DecodeComponentSpec[RigidbodySpec](raw)
	if err != nil {
		return nil, err
	}
	rb := component.NewRigidbodyAt(spec.Position.Vector())
	rb.Pivot = spec.Pivot.Vector()
	rb.Rotation = spec.Rotation
	rb.Velocity = spec.Velocity.Vector()
	if spec.Scale != nil {
		rb.Scale = spec.Scale.Vector()
	}
	if spec.Bounds != nil {
		rb.Bounds = spec.Bounds.Vector()
	}
	if spec.Solid != nil {
		rb.Solid = *spec.Solid
	}
	return rb, nil
}

func buildSprite(raw map[string]any) (component.Component, error) {
	spec, err := DecodeComponentSpec[SpriteSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.Texture == "" {
		return nil, errors.New("sprite has no texture")
	}
	sp := component.NewSprite(spec.Texture)
	if spec.Tint != nil {
		sp.Tint = spec.Tint.RGBA
	}
	sp.SetSort(spec.Sort)
	cut := Point{X: 1, Y: 1}
	if spec.Cut != nil {
		cut = *spec.Cut
	}
	if cut.X < 1 || cut.Y < 1 {
		return nil, fmt.Errorf("sprite cut %dx%d must be positive", cut.X, cut.Y)
	}
	sp.CutSheet(spec.Cell.X, spec.Cell.Y, cut.X, cut.Y)
	return sp, nil
}

func buildText(raw map[string]any) (component.Component, error) {
	spec, err := DecodeComponentSpec[TextSpec](raw)
	if err != nil {
		return nil, err
	}
	t := component.NewText(spec.Text, spec.Font)
	if spec.FontSize > 0 {
		t.FontSize = spec.FontSize
	}
	if spec.Color != nil {
		t.Color = spec.Color.RGBA
	}
	if spec.Sort != nil {
		t.SetSort(*spec.Sort)
	}
	return t, nil
}

func buildScene(raw map[string]any) (component.Component, error) {
	spec, err := DecodeComponentSpec[SceneSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.File == "" {
		return nil, errors.New("scene has no file")
	}
	return component.NewScene(spec.File), nil
}

func buildAnimator(raw map[string]any) (component.Component, error) {
	spec, err := DecodeComponentSpec[AnimatorSpec](raw)
	if err != nil {
		return nil, err
	}
	a := component.NewAnimator()
	for name, st := range spec.States {
		a.Insert(name, st.Frames, st.Row)
	}
	if spec.Speed != 0 {
		a.Speed = spec.Speed
	}
	if spec.State != "" {
		a.SetState(spec.State)
	}
	a.Playing = spec.Playing
	return a, nil
}

func buildBehaviour(raw map[string]any) (component.Component, error) {
	spec, err := DecodeComponentSpec[BehaviourSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.Module == "" {
		return nil, errors.New("behaviour has no module")
	}
	return component.NewBehaviour(spec.Module), nil
}

func buildSfx(raw map[string]any) (component.Component, error) {
	spec, err := DecodeComponentSpec[SfxSpec](raw)
	if err != nil {
		return nil, err
	}
	if spec.Name == "" || spec.File == "" {
		return nil, errors.New("sfx needs a name and a file")
	}
	s := component.NewSfx(spec.Name, spec.File)
	if spec.Volume != nil {
		s.Volume = *spec.Volume
	}
	return s, nil
}

// Place moves an entity's Transform and Rigidbody to pos.
func Place(g *ecs.GameObject, pos cp.Vector) {
	if t, ok := ecs.Wrap[*component.Transform](g); ok {
		t.Position = pos
	}
	if rb, ok := ecs.Wrap[*component.Rigidbody](g); ok {
		rb.Position = pos
	}
}
