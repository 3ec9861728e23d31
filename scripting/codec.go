package scripting

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/ecs"
	"github.com/milk9111/lilah/ecs/component"
	"github.com/spf13/cast"
)

func str(s string) tengo.Object    { return &tengo.String{Value: s} }
func float(f float64) tengo.Object { return &tengo.Float{Value: f} }
func integer(i int) tengo.Object   { return &tengo.Int{Value: int64(i)} }

func boolean(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func newMap(values map[string]tengo.Object) *tengo.Map {
	return &tengo.Map{Value: values}
}

func vecObject(v cp.Vector) *tengo.Map {
	return newMap(map[string]tengo.Object{"x": float(v.X), "y": float(v.Y)})
}

func pointObject(p image.Point) *tengo.Map {
	return newMap(map[string]tengo.Object{"x": integer(p.X), "y": integer(p.Y)})
}

func colorObject(c color.RGBA) *tengo.Map {
	return newMap(map[string]tengo.Object{
		"r": integer(int(c.R)), "g": integer(int(c.G)), "b": integer(int(c.B)), "a": integer(int(c.A)),
	})
}

func idObject(id ecs.ID) *tengo.Map {
	return newMap(map[string]tengo.Object{"name": str(id.Name), "uuid": str(id.UUID)})
}

// encodeGameObject builds the script-side value of g.
func encodeGameObject(g *ecs.GameObject) *tengo.Map {
	comps := make([]tengo.Object, 0, g.Len())
	for _, c := range g.Components() {
		if obj := encodeComponent(c); obj != nil {
			comps = append(comps, obj)
		}
	}
	return newMap(map[string]tengo.Object{
		"id":         idObject(g.ID),
		"index":      integer(g.Index),
		"init":       boolean(g.Init),
		"start":      boolean(g.Start),
		"components": &tengo.Array{Value: comps},
	})
}

func encodeComponent(c component.Component) *tengo.Map {
	v := map[string]tengo.Object{"type": str(c.Kind().String())}
	switch c := c.(type) {
	case *component.Transform:
		v["position"] = vecObject(c.Position)
		v["pivot"] = vecObject(c.Pivot)
		v["scale"] = vecObject(c.Scale)
		v["rotation"] = float(c.Rotation)
	case *component.Rigidbody:
		v["position"] = vecObject(c.Position)
		v["pivot"] = vecObject(c.Pivot)
		v["scale"] = vecObject(c.Scale)
		v["rotation"] = float(c.Rotation)
		v["bounds"] = vecObject(c.Bounds)
		v["velocity"] = vecObject(c.Velocity)
		v["solid"] = boolean(c.Solid)
		v["colliding"] = tengo.UndefinedValue
		if c.Colliding != nil {
			v["colliding"] = idObject(*c.Colliding)
		}
	case *component.Sprite:
		w, h := c.Size()
		cell := image.Point{}
		if w > 0 && h > 0 {
			cell = image.Pt(c.Index.X/w, c.Index.Y/h)
		}
		v["texture"] = str(c.TextureID)
		v["tint"] = colorObject(c.Tint)
		v["sort"] = integer(c.Sort)
		v["cell"] = pointObject(cell)
		v["cut"] = pointObject(c.Cut)
		v["size"] = pointObject(image.Pt(w, h))
	case *component.Text:
		v["text"] = str(c.Text)
		v["font"] = str(c.Font)
		v["font_size"] = integer(c.FontSize)
		v["color"] = colorObject(c.Color)
		v["sort"] = integer(c.Sort)
	case *component.Scene:
		markers := make([]tengo.Object, 0, len(c.Markers))
		for _, mk := range c.Markers {
			markers = append(markers, newMap(map[string]tengo.Object{
				"name":     str(mk.Name),
				"position": vecObject(cp.Vector{X: mk.Position[0], Y: mk.Position[1]}),
			}))
		}
		v["file"] = str(c.File)
		v["markers"] = &tengo.Array{Value: markers}
	case *component.Animator:
		states := make(map[string]tengo.Object, len(c.States))
		for name, st := range c.States {
			states[name] = newMap(map[string]tengo.Object{"frames": integer(st.Frames), "row": integer(st.Row)})
		}
		v["state"] = str(c.Current)
		v["frame"] = float(c.Frame)
		v["speed"] = float(c.Speed)
		v["playing"] = boolean(c.Playing)
		v["states"] = newMap(states)
	case *component.Behaviour:
		v["module"] = str(c.Module)
		v["uuid"] = str(c.UUID)
	case *component.Sfx:
		v["name"] = str(c.Name)
		v["file"] = str(c.File)
		v["volume"] = float(c.Volume)
		v["play"] = boolean(c.PlayState)
	default:
		return nil
	}
	return newMap(v)
}

func field(m *tengo.Map, key string) (tengo.Object, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.Value[key]
	if !ok || v == tengo.UndefinedValue {
		return nil, false
	}
	return v, true
}

func fieldMap(m *tengo.Map, key string) (*tengo.Map, bool) {
	v, ok := field(m, key)
	if !ok {
		return nil, false
	}
	switch v := v.(type) {
	case *tengo.Map:
		return v, true
	case *tengo.ImmutableMap:
		return newMap(v.Value), true
	}
	return nil, false
}

func readString(m *tengo.Map, key, fallback string) string {
	if v, ok := field(m, key); ok {
		return objectAsString(v)
	}
	return fallback
}

func readFloat(m *tengo.Map, key string, fallback float64) float64 {
	if v, ok := field(m, key); ok {
		if f, err := cast.ToFloat64E(objectToAny(v)); err == nil {
			return f
		}
	}
	return fallback
}

func readInt(m *tengo.Map, key string, fallback int) int {
	if v, ok := field(m, key); ok {
		if i, err := cast.ToIntE(objectToAny(v)); err == nil {
			return i
		}
	}
	return fallback
}

func readBool(m *tengo.Map, key string, fallback bool) bool {
	if v, ok := field(m, key); ok {
		return !v.IsFalsy()
	}
	return fallback
}

func readVec(m *tengo.Map, key string, fallback cp.Vector) cp.Vector {
	vm, ok := fieldMap(m, key)
	if !ok {
		return fallback
	}
	return cp.Vector{X: readFloat(vm, "x", fallback.X), Y: readFloat(vm, "y", fallback.Y)}
}

func readPoint(m *tengo.Map, key string, fallback image.Point) image.Point {
	pm, ok := fieldMap(m, key)
	if !ok {
		return fallback
	}
	return image.Pt(readInt(pm, "x", fallback.X), readInt(pm, "y", fallback.Y))
}

func readColor(m *tengo.Map, key string, fallback color.RGBA) color.RGBA {
	cm, ok := fieldMap(m, key)
	if !ok {
		return fallback
	}
	return color.RGBA{
		R: uint8(readInt(cm, "r", int(fallback.R))),
		G: uint8(readInt(cm, "g", int(fallback.G))),
		B: uint8(readInt(cm, "b", int(fallback.B))),
		A: uint8(readInt(cm, "a", int(fallback.A))),
	}
}

func readID(m *tengo.Map, key string) (*ecs.ID, bool) {
	im, ok := fieldMap(m, key)
	if !ok {
		return nil, false
	}
	return &ecs.ID{Name: readString(im, "name", ""), UUID: readString(im, "uuid", "")}, true
}

// decodeGameObject rebuilds a game object from its script value. Components
// are decoded onto clones of the native components at the same position
// when the kinds match, so native-only data survives the round trip. A
// value without a uuid is given one and the uuid is written back.
func decodeGameObject(m *tengo.Map, native *ecs.GameObject) (*ecs.GameObject, error) {
	idm, ok := fieldMap(m, "id")
	if !ok {
		return nil, fmt.Errorf("scripting: decode gameobject: %w", ErrMalformedGameObject)
	}
	id := ecs.ID{Name: readString(idm, "name", ""), UUID: readString(idm, "uuid", "")}
	if id.UUID == "" {
		id.UUID = uuid.NewString()
		idm.Value["uuid"] = str(id.UUID)
		m.Value["id"] = idm
	}

	out := &ecs.GameObject{ID: id}
	var prev []component.Component
	if native != nil {
		out.Index = native.Index
		out.Init = native.Init
		out.Start = native.Start
		prev = native.Components()
	}

	list, ok := field(m, "components")
	if !ok {
		return out, nil
	}
	arr, ok := list.(*tengo.Array)
	if !ok {
		return nil, fmt.Errorf("scripting: decode %s components: %w", id, ErrMalformedGameObject)
	}
	for i, item := range arr.Value {
		cm, ok := item.(*tengo.Map)
		if !ok {
			logger.Warn("skipping non-map component", "object", id.Name, "index", i)
			continue
		}
		kind, err := component.ParseKind(readString(cm, "type", ""))
		if err != nil {
			logger.Warn("skipping component", "object", id.Name, "index", i, "err", err)
			continue
		}
		var c component.Component
		if i < len(prev) && prev[i].Kind() == kind {
			c = prev[i].Clone()
		} else if c, err = component.New(kind); err != nil {
			logger.Warn("skipping component", "object", id.Name, "index", i, "err", err)
			continue
		}
		decodeComponent(cm, c)
		out.Push(c)
	}
	return out, nil
}

func decodeComponent(m *tengo.Map, c component.Component) {
	switch c := c.(type) {
	case *component.Transform:
		c.Position = readVec(m, "position", c.Position)
		c.Pivot = readVec(m, "pivot", c.Pivot)
		c.Scale = readVec(m, "scale", c.Scale)
		c.Rotation = readFloat(m, "rotation", c.Rotation)
	case *component.Rigidbody:
		c.Position = readVec(m, "position", c.Position)
		c.Pivot = readVec(m, "pivot", c.Pivot)
		c.Scale = readVec(m, "scale", c.Scale)
		c.Rotation = readFloat(m, "rotation", c.Rotation)
		c.Bounds = readVec(m, "bounds", c.Bounds)
		c.Velocity = readVec(m, "velocity", c.Velocity)
		c.Solid = readBool(m, "solid", c.Solid)
		c.Colliding = nil
		if id, ok := readID(m, "colliding"); ok {
			c.Colliding = id
		}
	case *component.Sprite:
		c.TextureID = readString(m, "texture", c.TextureID)
		c.Tint = readColor(m, "tint", c.Tint)
		if sort := readInt(m, "sort", c.Sort); sort != c.Sort {
			c.SetSort(sort)
		}
		if cut := readPoint(m, "cut", c.Cut); cut != c.Cut {
			c.Cut = cut
		}
		cell := readPoint(m, "cell", c.IndexCut)
		if c.Bound {
			c.AnimSheet(cell.X, cell.Y)
		} else {
			c.IndexCut = cell
		}
	case *component.Text:
		c.SetText(readString(m, "text", c.Text))
		c.Font = readString(m, "font", c.Font)
		c.FontSize = readInt(m, "font_size", c.FontSize)
		c.Color = readColor(m, "color", c.Color)
		if sort := readInt(m, "sort", c.Sort); sort != c.Sort {
			c.SetSort(sort)
		}
	case *component.Scene:
		if file := readString(m, "file", c.File); file != c.File {
			*c = *component.NewScene(file)
		}
	case *component.Animator:
		if sm, ok := fieldMap(m, "states"); ok {
			for name, v := range sm.Value {
				st, ok := v.(*tengo.Map)
				if !ok {
					continue
				}
				c.Insert(name, readInt(st, "frames", 0), readInt(st, "row", 0))
			}
		}
		c.SetState(readString(m, "state", c.Current))
		c.Frame = readFloat(m, "frame", c.Frame)
		c.Speed = readFloat(m, "speed", c.Speed)
		c.Playing = readBool(m, "playing", c.Playing)
	case *component.Behaviour:
		if module := readString(m, "module", c.Module); module != c.Module {
			c.SetModule(module)
		}
		c.UUID = readString(m, "uuid", c.UUID)
	case *component.Sfx:
		c.Name = readString(m, "name", c.Name)
		c.File = readString(m, "file", c.File)
		c.Volume = readFloat(m, "volume", c.Volume)
		c.PlayState = readBool(m, "play", c.PlayState)
	}
}

// componentOf returns the first component value of the given type name on a
// script-side game object.
func componentOf(g *tengo.Map, typ string) (*tengo.Map, bool) {
	list, ok := field(g, "components")
	if !ok {
		return nil, false
	}
	arr, ok := list.(*tengo.Array)
	if !ok {
		return nil, false
	}
	for _, item := range arr.Value {
		cm, ok := item.(*tengo.Map)
		if ok && strings.EqualFold(readString(cm, "type", ""), typ) {
			return cm, true
		}
	}
	return nil, false
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
