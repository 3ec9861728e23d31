// Package prefabs builds game objects from YAML entity files and writes
// world snapshots back out in the same format.
package prefabs

import (
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"strconv"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/logging"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

var logger = logging.New("prefabs")

// EntitySpec is one prefab file. Components keep their raw form so each
// entry can be decoded by its `type`.
type EntitySpec struct {
	Name string `yaml:"name"`
	// UUID is only set in snapshots. Prefab files leave it empty.
	UUID       string           `yaml:"uuid,omitempty"`
	Components []map[string]any `yaml:"components"`
}

// LoadSpec reads and decodes a YAML file from fsys.
func LoadSpec[T any](fsys fs.FS, filename string) (T, error) {
	var zero T
	data, err := Load(fsys, filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

func LoadEntitySpec(fsys fs.FS, filename string) (EntitySpec, error) {
	return LoadSpec[EntitySpec](fsys, filename)
}

// DecodeComponentSpec re-decodes a raw YAML value into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformSpec struct {
	Position Vec     `yaml:"position"`
	Pivot    Vec     `yaml:"pivot"`
	Scale    *Vec    `yaml:"scale,omitempty"`
	Rotation float64 `yaml:"rotation"`
}

type RigidbodySpec struct {
	Position Vec     `yaml:"position"`
	Pivot    Vec     `yaml:"pivot"`
	Scale    *Vec    `yaml:"scale,omitempty"`
	Rotation float64 `yaml:"rotation"`
	Bounds   *Vec    `yaml:"bounds,omitempty"`
	Velocity Vec     `yaml:"velocity"`
	Solid    *bool   `yaml:"solid,omitempty"`
}

type SpriteSpec struct {
	Texture string     `yaml:"texture"`
	Tint    *YAMLColor `yaml:"tint,omitempty"`
	Sort    int        `yaml:"sort"`
	Cut     *Point     `yaml:"cut,omitempty"`
	Cell    Point      `yaml:"cell"`
}

type TextSpec struct {
	Text     string     `yaml:"text"`
	Font     string     `yaml:"font"`
	FontSize int        `yaml:"font_size,omitempty"`
	Color    *YAMLColor `yaml:"color,omitempty"`
	Sort     *int       `yaml:"sort,omitempty"`
}

type SceneSpec struct {
	File string `yaml:"file"`
}

type AnimStateSpec struct {
	Frames int `yaml:"frames"`
	Row    int `yaml:"row"`
}

type AnimatorSpec struct {
	States  map[string]AnimStateSpec `yaml:"states"`
	State   string                   `yaml:"state,omitempty"`
	Speed   float64                  `yaml:"speed,omitempty"`
	Playing bool                     `yaml:"playing"`
}

type BehaviourSpec struct {
	Module string `yaml:"module"`
}

type SfxSpec struct {
	Name   string   `yaml:"name"`
	File   string   `yaml:"file"`
	Volume *float64 `yaml:"volume,omitempty"`
}

// Vec is a cp.Vector written as `[x, y]` or `{x: .., y: ..}`.
type Vec struct {
	X, Y float64
}

func (v Vec) Vector() cp.Vector { return cp.Vector{X: v.X, Y: v.Y} }

func VecOf(p cp.Vector) Vec { return Vec{X: p.X, Y: p.Y} }

func (v *Vec) UnmarshalYAML(value *yaml.Node) error {
	x, y, err := pair(value)
	if err != nil {
		return err
	}
	if v.X, err = cast.ToFloat64E(x); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	if v.Y, err = cast.ToFloat64E(y); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	return nil
}

func (v Vec) MarshalYAML() (any, error) {
	return flowPair("!!float", strconv.FormatFloat(v.X, 'g', -1, 64), strconv.FormatFloat(v.Y, 'g', -1, 64)), nil
}

// Point is an image.Point written like Vec.
type Point struct {
	X, Y int
}

func (p Point) Image() image.Point { return image.Pt(p.X, p.Y) }

func PointOf(p image.Point) Point { return Point{X: p.X, Y: p.Y} }

func (p *Point) UnmarshalYAML(value *yaml.Node) error {
	x, y, err := pair(value)
	if err != nil {
		return err
	}
	if p.X, err = cast.ToIntE(x); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	if p.Y, err = cast.ToIntE(y); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	return nil
}

func (p Point) MarshalYAML() (any, error) {
	return flowPair("!!int", strconv.Itoa(p.X), strconv.Itoa(p.Y)), nil
}

func pair(value *yaml.Node) (string, string, error) {
	switch value.Kind {
	case yaml.SequenceNode:
		if len(value.Content) != 2 {
			return "", "", fmt.Errorf("line %d: expected [x, y]", value.Line)
		}
		return value.Content[0].Value, value.Content[1].Value, nil
	case yaml.MappingNode:
		var x, y string
		for i := 0; i+1 < len(value.Content); i += 2 {
			switch value.Content[i].Value {
			case "x":
				x = value.Content[i+1].Value
			case "y":
				y = value.Content[i+1].Value
			}
		}
		if x == "" {
			x = "0"
		}
		if y == "" {
			y = "0"
		}
		return x, y, nil
	default:
		return "", "", fmt.Errorf("line %d: expected [x, y] or {x, y}", value.Line)
	}
}

func flowPair(tag, x, y string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.SequenceNode,
		Style: yaml.FlowStyle,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: tag, Value: x},
			{Kind: yaml.ScalarNode, Tag: tag, Value: y},
		},
	}
}

// YAMLColor is a color written as "#rrggbb" or "#rrggbbaa".
type YAMLColor struct {
	color.RGBA
}

func ColorOf(c color.RGBA) *YAMLColor { return &YAMLColor{RGBA: c} }

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.RGBA = color.RGBA{R: r, G: g, B: b, A: a}
	return nil
}

func (c YAMLColor) MarshalYAML() (any, error) {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A), nil
}
