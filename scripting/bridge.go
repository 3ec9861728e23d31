package scripting

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/armon/go-metrics"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/ecs"
	"github.com/milk9111/lilah/ecs/component"
	"github.com/milk9111/lilah/input"
	"github.com/milk9111/lilah/logging"
)

var logger = logging.New("scripting")

var (
	ErrMissingFunction     = errors.New("scripting: missing required function")
	ErrModuleNotLoaded     = errors.New("scripting: module not loaded")
	ErrDuplicateModule     = errors.New("scripting: module already loaded")
	ErrMalformedGameObject = errors.New("scripting: malformed gameobject value")
)

// ModuleExt is the file extension of script modules.
const ModuleExt = ".tengo"

// AudioDevice plays music on behalf of scripts.
type AudioDevice interface {
	Play(music *assets.Audio)
	Pause(fade time.Duration)
	Resume(fade time.Duration)
	Volume() float64
	SetVolume(v float64)
}

// Window is the part of the platform window scripts can see and change.
type Window interface {
	Size() (width, height int)
	Fullscreen() bool
	SetFullscreen(on bool)
}

// Storage persists script values between runs. Load reports ok=false for
// keys that were never saved.
type Storage interface {
	Save(key string, value any) error
	Load(key string) (value any, ok bool, err error)
}

// Timing is the frame clock pushed to scripts.
type Timing struct {
	DeltaTime float64
	FPS       float64
	Time      float64
}

// Bridge owns the script modules and the state map they share, and runs
// the per-frame exchange between the world and the scripts.
type Bridge struct {
	// Storage backs engine.save and engine.load. Nil disables both.
	Storage Storage

	modules []*Module
	byName  map[string]*Module
	state   *tengo.Map
	imports *tengo.ModuleMap

	// input is the state pushed last; active is the module being ticked.
	input  *input.State
	active *Module

	errors int
}

func NewBridge() *Bridge {
	b := &Bridge{
		byName: map[string]*Module{},
		state: newMap(map[string]tengo.Object{
			"gameobjects": &tengo.Array{},
			"destroy":     &tengo.Array{},
			"fullscreen":  tengo.FalseValue,
			"timer":       newMap(map[string]tengo.Object{"delta_time": float(0), "fps": float(0), "time": float(0)}),
			"window":      newMap(map[string]tengo.Object{"width": integer(0), "height": integer(0)}),
			"input":       newMap(map[string]tengo.Object{}),
			"audio":       newAudioMap(),
		}),
	}
	b.imports = stdlib.GetModuleMap(stdlib.AllModuleNames()...)
	b.imports.AddBuiltinModule("engine", b.engineModule())
	return b
}

func newAudioMap() *tengo.Map {
	return newMap(map[string]tengo.Object{
		"dirty":   tengo.FalseValue,
		"command": str(""),
		"music":   str(""),
		"volume":  tengo.UndefinedValue,
		"fade_ms": integer(0),
	})
}

// State is the map shared by every module as the `state` global.
func (b *Bridge) State() *tengo.Map {
	return b.state
}

// Load compiles a module. A parse, compile, or top-level run failure, or a
// missing setup/start/update function, is returned.
func (b *Bridge) Load(name string, src []byte) error {
	if _, ok := b.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, name)
	}
	m, err := b.compile(name, src, newMap(map[string]tengo.Object{"frame": integer(0)}))
	if err != nil {
		return err
	}
	b.modules = append(b.modules, m)
	b.byName[name] = m
	logger.Debug("module loaded", "module", name, "handle", uint32(m.Handle))
	return nil
}

// LoadFS loads modules from dir in fsys. Names are loaded in the given
// order; when names is empty every module file in dir is loaded, sorted.
func (b *Bridge) LoadFS(fsys fs.FS, dir string, names []string) error {
	if len(names) == 0 {
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			return fmt.Errorf("scripting: read %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ModuleExt) {
				names = append(names, strings.TrimSuffix(e.Name(), ModuleExt))
			}
		}
		sort.Strings(names)
	}
	for _, name := range names {
		src, err := fs.ReadFile(fsys, path.Join(dir, name+ModuleExt))
		if err != nil {
			return fmt.Errorf("scripting: read module %s: %w", name, err)
		}
		if err := b.Load(name, src); err != nil {
			return err
		}
	}
	return nil
}

// Reload recompiles a loaded module in place. The module keeps its `self`
// map and frame counter. On failure the previous program stays active.
func (b *Bridge) Reload(name string, src []byte) error {
	old, ok := b.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotLoaded, name)
	}
	m, err := b.compile(name, src, old.self)
	if err != nil {
		b.report(name+".reload", err)
		return err
	}
	*old = *m
	logger.Info("module reloaded", "module", name, "frame", old.Frame())
	return nil
}

// Modules returns the module names in load order.
func (b *Bridge) Modules() []string {
	out := make([]string, 0, len(b.modules))
	for _, m := range b.modules {
		out = append(out, m.Name)
	}
	return out
}

// Module looks up a loaded module.
func (b *Bridge) Module(name string) (*Module, bool) {
	m, ok := b.byName[name]
	return m, ok
}

// Frame returns a module's lifecycle counter, or -1 when it is not loaded.
func (b *Bridge) Frame(name string) int {
	m, ok := b.byName[name]
	if !ok {
		return -1
	}
	return m.Frame()
}

// Errors is the number of failed script calls so far.
func (b *Bridge) Errors() int {
	return b.errors
}

// PushState mirrors the world into the shared state map. It replaces
// state.gameobjects and clears state.destroy.
func (b *Bridge) PushState(s *ecs.State, win Window, in *input.State) {
	b.input = in

	objs := s.GameObjects()
	list := make([]tengo.Object, 0, len(objs))
	for _, g := range objs {
		list = append(list, encodeGameObject(g))
	}
	b.state.Value["gameobjects"] = &tengo.Array{Value: list}
	b.state.Value["destroy"] = &tengo.Array{}

	if win != nil {
		w, h := win.Size()
		b.state.Value["window"] = newMap(map[string]tengo.Object{"width": integer(w), "height": integer(h)})
		b.state.Value["fullscreen"] = boolean(win.Fullscreen())
	}
	if in != nil {
		b.state.Value["input"] = encodeInput(in)
	}
}

func encodeInput(in *input.State) *tengo.Map {
	infos := func(m map[string]input.Info) *tengo.Map {
		out := make(map[string]tengo.Object, len(m))
		for name, info := range m {
			out[name] = newMap(map[string]tengo.Object{
				"pressed":      boolean(info.Pressed),
				"pressed_down": boolean(info.PressedDown),
			})
		}
		return newMap(out)
	}
	axes := map[string]tengo.Object{}
	for _, name := range in.Bindings() {
		axes[name] = integer(in.Axis(name))
	}
	return newMap(map[string]tengo.Object{
		"keys":      infos(in.Keys()),
		"mouse":     infos(in.Buttons()),
		"mouse_pos": vecObject(in.MousePos),
		"axes":      newMap(axes),
	})
}

// Tick runs one frame of the protocol for every module in load order:
// lifecycle call, behaviour dispatch, audio drain, timer push, state pull,
// fullscreen flag, and ui.
func (b *Bridge) Tick(s *ecs.State, t Timing, audio AudioDevice, win Window) {
	b.run(s, t, audio, win, true)
}

// Boot runs the boot frame: every module's setup with the same audio, timer,
// pull, and fullscreen steps as Tick, but no behaviour callbacks. Objects
// see behaviour.start on the first Tick only.
func (b *Bridge) Boot(s *ecs.State, t Timing, audio AudioDevice, win Window) {
	b.run(s, t, audio, win, false)
}

func (b *Bridge) run(s *ecs.State, t Timing, audio AudioDevice, win Window, behaviours bool) {
	defer func() { b.active = nil }()

	for _, m := range b.modules {
		b.active = m
		b.lifecycle(m)
		if behaviours {
			b.dispatch(s, m)
		}
		b.drainAudio(s, audio)
		b.pushTimer(t)
		b.Pull(s)
		b.applyFullscreen(win)
		if m.Declares("ui") {
			b.invoke(m, "ui", tengo.UndefinedValue, tengo.UndefinedValue)
		}
	}
}

func (b *Bridge) lifecycle(m *Module) {
	fn := "update"
	switch m.Frame() {
	case 0:
		fn = "setup"
	case 1:
		fn = "start"
	}
	b.invoke(m, fn, tengo.UndefinedValue, tengo.UndefinedValue)
	m.advance()
}

// dispatch calls the module's behaviour callbacks for every object bound to
// it. Objects naming a module that is not loaded never match.
func (b *Bridge) dispatch(s *ecs.State, m *Module) {
	if !m.Declares("behaviour") {
		return
	}
	wire := b.wireIndex()
	for _, g := range s.GameObjects() {
		bh, ok := ecs.Wrap[*component.Behaviour](g)
		if !ok || bh.Handle != m.Handle || !g.Init {
			continue
		}
		obj, ok := wire[g.ID.UUID]
		if !ok {
			continue
		}
		if g.Start {
			b.invoke(m, "behaviour.update", obj, tengo.UndefinedValue)
		} else {
			b.invoke(m, "behaviour.start", obj, tengo.UndefinedValue)
		}
		if rb, ok := ecs.Wrap[*component.Rigidbody](g); ok && rb.Colliding != nil {
			info := newMap(map[string]tengo.Object{
				"id":   str(rb.Colliding.Name),
				"uuid": str(rb.Colliding.UUID),
			})
			b.invoke(m, "behaviour.on_collision", obj, info)
		}
	}
}

func (b *Bridge) invoke(m *Module, fn string, gameObject, info tengo.Object) {
	if err := m.call(fn, gameObject, info); err != nil {
		b.report(m.Name+"."+fn, err)
	}
}

func (b *Bridge) report(caller string, err error) {
	b.errors++
	metrics.IncrCounter([]string{"script", "errors"}, 1)
	message, location := splitVMError(err)
	logger.Error("script call failed", "caller", caller, "location", location, "message", message)
}

func (b *Bridge) wireIndex() map[string]*tengo.Map {
	arr := b.gameObjects()
	out := make(map[string]*tengo.Map, len(arr.Value))
	for _, item := range arr.Value {
		m, ok := item.(*tengo.Map)
		if !ok {
			continue
		}
		if idm, ok := fieldMap(m, "id"); ok {
			out[readString(idm, "uuid", "")] = m
		}
	}
	return out
}

func (b *Bridge) gameObjects() *tengo.Array {
	if arr, ok := b.state.Value["gameobjects"].(*tengo.Array); ok {
		return arr
	}
	arr := &tengo.Array{}
	b.state.Value["gameobjects"] = arr
	return arr
}

func (b *Bridge) drainAudio(s *ecs.State, audio AudioDevice) {
	am, ok := fieldMap(b.state, "audio")
	if !ok {
		am = newAudioMap()
	}
	b.state.Value["audio"] = am
	if audio == nil {
		return
	}
	if !readBool(am, "dirty", false) {
		am.Value["volume"] = float(audio.Volume())
		return
	}

	am.Value["dirty"] = tengo.FalseValue
	fade := time.Duration(readInt(am, "fade_ms", 0)) * time.Millisecond
	if _, ok := field(am, "volume"); ok {
		audio.SetVolume(readFloat(am, "volume", audio.Volume()))
	}

	switch cmd := readString(am, "command", ""); cmd {
	case "play":
		name := readString(am, "music", "")
		music, ok := s.Music[name]
		if !ok {
			logger.Warn("music not loaded", "music", name)
			return
		}
		audio.Play(music)
	case "pause":
		audio.Pause(0)
	case "pause_fade":
		audio.Pause(fade)
	case "start":
		audio.Resume(0)
	case "start_fade":
		audio.Resume(fade)
	case "":
	default:
		logger.Warn("unknown audio command", "command", cmd)
	}
}

func (b *Bridge) pushTimer(t Timing) {
	b.state.Value["timer"] = newMap(map[string]tengo.Object{
		"delta_time": float(t.DeltaTime),
		"fps":        float(t.FPS),
		"time":       float(t.Time),
	})
}

// Pull copies the script-side game objects back into the world and
// removes everything named in state.destroy. Destroyed objects are also
// dropped from state.gameobjects and the destroy list is cleared.
func (b *Bridge) Pull(s *ecs.State) {
	destroyed := map[string]bool{}
	if arr, ok := b.state.Value["destroy"].(*tengo.Array); ok {
		for _, item := range arr.Value {
			if key := destroyKey(item); key != "" {
				destroyed[key] = true
			}
		}
	}
	b.state.Value["destroy"] = &tengo.Array{}

	arr := b.gameObjects()
	kept := make([]tengo.Object, 0, len(arr.Value))
	for _, item := range arr.Value {
		m, ok := item.(*tengo.Map)
		if !ok {
			logger.Warn("skipping non-map gameobject", "value", item.String())
			continue
		}
		if idm, ok := fieldMap(m, "id"); ok {
			if destroyed[readString(idm, "uuid", "")] || destroyed[readString(idm, "name", "")] {
				continue
			}
		}

		var native *ecs.GameObject
		if idm, ok := fieldMap(m, "id"); ok {
			native, _ = s.ByUUID(readString(idm, "uuid", ""))
		}
		g, err := decodeGameObject(m, native)
		if err != nil {
			logger.Warn("skipping gameobject", "err", err)
			continue
		}
		s.Insert(g)
		m.Value["index"] = integer(g.Index)
		kept = append(kept, m)
	}
	arr.Value = kept

	for key := range destroyed {
		if s.Remove(key) {
			logger.Debug("destroyed", "object", key)
		}
	}
}

func destroyKey(obj tengo.Object) string {
	if m, ok := obj.(*tengo.Map); ok {
		if idm, ok := fieldMap(m, "id"); ok {
			return readString(idm, "uuid", "")
		}
		return readString(m, "uuid", "")
	}
	return objectAsString(obj)
}

func (b *Bridge) applyFullscreen(win Window) {
	if win == nil {
		return
	}
	want := readBool(b.state, "fullscreen", win.Fullscreen())
	if want != win.Fullscreen() {
		win.SetFullscreen(want)
	}
}
