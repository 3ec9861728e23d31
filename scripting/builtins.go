package scripting

import (
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// engineModule builds the attributes of the `engine` import.
func (b *Bridge) engineModule() map[string]tengo.Object {
	fn := func(name string, f tengo.CallableFunc) tengo.Object {
		return &tengo.UserFunction{Name: name, Value: f}
	}
	return map[string]tengo.Object{
		"log":        fn("log", b.fnLog),
		"key":        fn("key", b.fnInput(func(name string) bool { return b.input.Key(name) })),
		"key_down":   fn("key_down", b.fnInput(func(name string) bool { return b.input.KeyDown(name) })),
		"mouse":      fn("mouse", b.fnInput(func(name string) bool { return b.input.Mouse(name) })),
		"mouse_down": fn("mouse_down", b.fnInput(func(name string) bool { return b.input.MouseDown(name) })),
		"mouse_pos":  fn("mouse_pos", b.fnMousePos),
		"axis":       fn("axis", b.fnAxis),
		"axis2":      fn("axis2", b.fnAxis2),
		"find":       fn("find", b.fnFind),
		"spawn":      fn("spawn", b.fnSpawn),
		"destroy":    fn("destroy", b.fnDestroy),
		"component":  fn("component", b.fnComponent),
		"save":       fn("save", b.fnSave),
		"load":       fn("load", b.fnLoad),
		"play_sfx":   fn("play_sfx", b.fnPlaySfx),
		"vec":        fn("vec", fnVec),
		"quit":       fn("quit", b.fnQuit),
	}
}

func (b *Bridge) fnLog(args ...tengo.Object) (tengo.Object, error) {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, objectAsString(a))
	}
	module := ""
	if b.active != nil {
		module = b.active.Name
	}
	logger.Info(strings.Join(parts, " "), "module", module)
	return tengo.UndefinedValue, nil
}

func (b *Bridge) fnInput(query func(name string) bool) tengo.CallableFunc {
	return func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		if b.input == nil {
			return tengo.FalseValue, nil
		}
		return boolean(query(objectAsString(args[0]))), nil
	}
}

func (b *Bridge) fnMousePos(args ...tengo.Object) (tengo.Object, error) {
	if b.input == nil {
		return fnVec()
	}
	return vecObject(b.input.MousePos), nil
}

func (b *Bridge) fnAxis(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 1 {
		return nil, tengo.ErrWrongNumArguments
	}
	if b.input == nil {
		return integer(0), nil
	}
	return integer(b.input.Axis(objectAsString(args[0]))), nil
}

func (b *Bridge) fnAxis2(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	if b.input == nil {
		return fnVec()
	}
	return vecObject(b.input.Axis2(objectAsString(args[0]), objectAsString(args[1]))), nil
}

// fnFind returns the script-side game object with the given uuid, or the
// first one with the given name.
func (b *Bridge) fnFind(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 1 {
		return nil, tengo.ErrWrongNumArguments
	}
	key := objectAsString(args[0])
	var byName tengo.Object
	for _, item := range b.gameObjects().Value {
		m, ok := item.(*tengo.Map)
		if !ok {
			continue
		}
		idm, ok := fieldMap(m, "id")
		if !ok {
			continue
		}
		if readString(idm, "uuid", "") == key {
			return m, nil
		}
		if byName == nil && readString(idm, "name", "") == key {
			byName = m
		}
	}
	if byName != nil {
		return byName, nil
	}
	return tengo.UndefinedValue, nil
}

// fnSpawn appends a new game object to state.gameobjects. It joins the
// world at the next pull.
func (b *Bridge) fnSpawn(args ...tengo.Object) (tengo.Object, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	comps := &tengo.Array{}
	if len(args) == 2 {
		arr, ok := args[1].(*tengo.Array)
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "components", Expected: "array", Found: args[1].TypeName()}
		}
		comps = arr
	}
	obj := newMap(map[string]tengo.Object{
		"id":         newMap(map[string]tengo.Object{"name": str(objectAsString(args[0])), "uuid": str(uuid.NewString())}),
		"index":      integer(-1),
		"init":       tengo.FalseValue,
		"start":      tengo.FalseValue,
		"components": comps,
	})
	arr := b.gameObjects()
	arr.Value = append(arr.Value, obj)
	return obj, nil
}

func (b *Bridge) fnDestroy(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 1 {
		return nil, tengo.ErrWrongNumArguments
	}
	key := destroyKey(args[0])
	if key == "" {
		return tengo.FalseValue, nil
	}
	arr, ok := b.state.Value["destroy"].(*tengo.Array)
	if !ok {
		arr = &tengo.Array{}
		b.state.Value["destroy"] = arr
	}
	arr.Value = append(arr.Value, str(key))
	return tengo.TrueValue, nil
}

func (b *Bridge) fnComponent(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	g, ok := args[0].(*tengo.Map)
	if !ok {
		return tengo.UndefinedValue, nil
	}
	if c, ok := componentOf(g, objectAsString(args[1])); ok {
		return c, nil
	}
	return tengo.UndefinedValue, nil
}

func (b *Bridge) fnSave(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	if b.Storage == nil {
		return tengo.FalseValue, nil
	}
	key := objectAsString(args[0])
	if err := b.Storage.Save(key, objectToAny(args[1])); err != nil {
		logger.Error("save failed", "key", key, "err", err)
		return tengo.FalseValue, nil
	}
	return tengo.TrueValue, nil
}

func (b *Bridge) fnLoad(args ...tengo.Object) (tengo.Object, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	fallback := tengo.Object(tengo.UndefinedValue)
	if len(args) == 2 {
		fallback = args[1]
	}
	if b.Storage == nil {
		return fallback, nil
	}
	key := objectAsString(args[0])
	v, ok, err := b.Storage.Load(key)
	if err != nil {
		logger.Error("load failed", "key", key, "err", err)
		return fallback, nil
	}
	if !ok {
		return fallback, nil
	}
	obj, err := tengo.FromInterface(v)
	if err != nil {
		logger.Error("load failed", "key", key, "err", err)
		return fallback, nil
	}
	return obj, nil
}

// fnPlaySfx sets the play flag of the named Sfx on a game object.
func (b *Bridge) fnPlaySfx(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	g, ok := args[0].(*tengo.Map)
	if !ok {
		return tengo.FalseValue, nil
	}
	name := objectAsString(args[1])
	list, ok := field(g, "components")
	if !ok {
		return tengo.FalseValue, nil
	}
	arr, ok := list.(*tengo.Array)
	if !ok {
		return tengo.FalseValue, nil
	}
	for _, item := range arr.Value {
		cm, ok := item.(*tengo.Map)
		if !ok || !strings.EqualFold(readString(cm, "type", ""), "sfx") {
			continue
		}
		if readString(cm, "name", "") == name {
			cm.Value["play"] = tengo.TrueValue
			return tengo.TrueValue, nil
		}
	}
	return tengo.FalseValue, nil
}

// fnQuit asks the platform to close after the current frame.
func (b *Bridge) fnQuit(args ...tengo.Object) (tengo.Object, error) {
	if b.input != nil {
		b.input.Quit = true
	}
	return tengo.UndefinedValue, nil
}

func fnVec(args ...tengo.Object) (tengo.Object, error) {
	var x, y float64
	if len(args) > 0 {
		x = cast.ToFloat64(objectToAny(args[0]))
	}
	if len(args) > 1 {
		y = cast.ToFloat64(objectToAny(args[1]))
	}
	return newMap(map[string]tengo.Object{"x": float(x), "y": float(y)}), nil
}
