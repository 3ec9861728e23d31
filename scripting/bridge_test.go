package scripting

import (
	"errors"
	"image"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/ecs"
	"github.com/milk9111/lilah/ecs/component"
	"github.com/milk9111/lilah/input"
)

const frameTiming = 1.0 / 60

const recorderModule = `
setup := func() {
	self.log = ["setup"]
}
start := func() {
	self.log = append(self.log, "start")
}
update := func() {
	self.log = append(self.log, "update")
}
behaviour := {
	start: func(obj) {
		self.log = append(self.log, "obj.start:" + obj.id.name)
	},
	update: func(obj) {
		self.log = append(self.log, "obj.update:" + obj.id.name)
	},
	on_collision: func(obj, info) {
		self.log = append(self.log, "hit:" + info.id)
	}
}
`

const failingModule = `
setup := func() {}
start := func() {}
update := func() {
	zero := 0
	self.boom = 10 / zero
}
`

const worldModule = `
engine := import("engine")

setup := func() {}
start := func() {
	engine.spawn("bullet", [{type: "Transform", position: {x: 1, y: 2}}])
}
update := func() {
	p := engine.find("player")
	if p != undefined {
		t := engine.component(p, "Transform")
		t.position.x = 42
	}
	e := engine.find("enemy")
	if e != undefined {
		engine.destroy(e)
	}
}
`

func loadModule(t *testing.T, b *Bridge, name, src string) {
	t.Helper()
	if err := b.Load(name, []byte(src)); err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
}

func moduleLog(t *testing.T, b *Bridge, name string) []string {
	t.Helper()
	m, ok := b.Module(name)
	if !ok {
		t.Fatalf("module %s not loaded", name)
	}
	arr, ok := m.self.Value["log"].(*tengo.Array)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr.Value))
	for _, v := range arr.Value {
		out = append(out, objectAsString(v))
	}
	return out
}

// runFrames boots the world once and then runs n frames the way the engine
// does: tick, native update, push.
func runFrames(b *Bridge, s *ecs.State, n int, audio AudioDevice, win Window) {
	in := input.New()
	b.PushState(s, win, in)
	s.Load(nil)
	b.PushState(s, win, in)
	for i := 0; i < n; i++ {
		b.Tick(s, Timing{DeltaTime: frameTiming, FPS: 60, Time: float64(i) * frameTiming}, audio, win)
		s.Update(frameTiming, nil)
		b.PushState(s, win, in)
	}
}

func TestLifecycleSequencing(t *testing.T) {
	b := NewBridge()
	loadModule(t, b, "recorder", recorderModule)

	s := ecs.NewState()
	s.Insert(ecs.NewGameObject("hero").With(component.NewBehaviour("recorder")))

	runFrames(b, s, 3, nil, nil)

	want := []string{"setup", "obj.start:hero", "start", "obj.update:hero", "update", "obj.update:hero"}
	if got := moduleLog(t, b, "recorder"); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected call order:\n got %v\nwant %v", got, want)
	}
	if f := b.Frame("recorder"); f != 3 {
		t.Fatalf("expected frame 3, got %d", f)
	}
	if b.Errors() != 0 {
		t.Fatalf("unexpected script errors: %d", b.Errors())
	}
}

func TestModuleDispatchIsolation(t *testing.T) {
	b := NewBridge()
	loadModule(t, b, "failing", failingModule)
	loadModule(t, b, "recorder", recorderModule)

	s := ecs.NewState()
	s.Insert(ecs.NewGameObject("a").With(component.NewBehaviour("failing")))
	s.Insert(ecs.NewGameObject("b").With(component.NewBehaviour("recorder")))

	runFrames(b, s, 3, nil, nil)

	got := moduleLog(t, b, "recorder")
	if len(got) == 0 || got[len(got)-2] != "update" {
		t.Fatalf("recorder update did not run after failing module: %v", got)
	}
	if b.Errors() != 1 {
		t.Fatalf("expected exactly one failed call, got %d", b.Errors())
	}
}

func TestLoadRequiresLifecycleFunctions(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing_update", "setup := func() {}\nstart := func() {}\n"},
		{"update_not_callable", "setup := func() {}\nstart := func() {}\nupdate := 5\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := NewBridge().Load("m", []byte(c.src))
			if !errors.Is(err, ErrMissingFunction) {
				t.Fatalf("expected ErrMissingFunction, got %v", err)
			}
		})
	}

	t.Run("compile_error", func(t *testing.T) {
		err := NewBridge().Load("m", []byte("setup := func( {"))
		if err == nil || errors.Is(err, ErrMissingFunction) {
			t.Fatalf("expected a parse error, got %v", err)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		b := NewBridge()
		loadModule(t, b, "m", failingModule)
		if err := b.Load("m", []byte(failingModule)); !errors.Is(err, ErrDuplicateModule) {
			t.Fatalf("expected ErrDuplicateModule, got %v", err)
		}
	})
}

func TestUnloadedModuleIsNoop(t *testing.T) {
	b := NewBridge()
	loadModule(t, b, "recorder", recorderModule)

	s := ecs.NewState()
	s.Insert(ecs.NewGameObject("ghost").With(component.NewBehaviour("missing")))

	runFrames(b, s, 2, nil, nil)

	for _, line := range moduleLog(t, b, "recorder") {
		if strings.Contains(line, "ghost") {
			t.Fatalf("object bound to an unloaded module was dispatched: %v", line)
		}
	}
	if b.Errors() != 0 || s.Len() != 1 {
		t.Fatalf("expected a silent no-op, errors=%d len=%d", b.Errors(), s.Len())
	}
}

func TestOnCollisionReceivesID(t *testing.T) {
	b := NewBridge()
	loadModule(t, b, "recorder", recorderModule)

	s := ecs.NewState()
	rb := component.NewRigidbody()
	rb.SetColliding(ecs.ID{Name: "wall", UUID: "wall-uuid"})
	s.Insert(ecs.NewGameObject("hero").With(rb).With(component.NewBehaviour("recorder")))

	in := input.New()
	b.PushState(s, nil, in)
	s.Load(nil)
	b.Tick(s, Timing{}, nil, nil)

	got := moduleLog(t, b, "recorder")
	if len(got) == 0 || got[len(got)-1] != "hit:wall" {
		t.Fatalf("expected on_collision with the wall id, got %v", got)
	}
}

func TestPullAppliesScriptChanges(t *testing.T) {
	b := NewBridge()
	loadModule(t, b, "world", worldModule)

	s := ecs.NewState()
	s.Textures["hero"] = &assets.Texture{ID: "hero", Width: 64, Height: 16}
	sprite := component.NewSprite("hero")
	sprite.CutSheet(0, 0, 4, 1)
	s.Insert(ecs.NewGameObject("player").
		With(component.NewTransform(cp.Vector{X: 1, Y: 1})).
		With(sprite))
	s.Insert(ecs.NewGameObject("enemy"))

	runFrames(b, s, 3, nil, nil)

	player := s.Get("player")
	if x := ecs.Get[*component.Transform](player).Position.X; x != 42 {
		t.Fatalf("expected script to move the player to x=42, got %v", x)
	}
	if sp := ecs.Get[*component.Sprite](player); sp.BaseSize.X != 64 || !sp.Bound {
		t.Fatalf("native sprite data lost in the round trip: %+v", sp)
	}
	if _, ok := s.Wrap("enemy"); ok {
		t.Fatalf("expected enemy destroyed")
	}
	bullet, ok := s.Wrap("bullet")
	if !ok {
		t.Fatalf("expected spawned bullet in the world")
	}
	if tr := ecs.Get[*component.Transform](bullet); tr.Position != (cp.Vector{X: 1, Y: 2}) {
		t.Fatalf("unexpected bullet position %v", tr.Position)
	}
	if n := len(b.gameObjects().Value); n != s.Len() {
		t.Fatalf("script list has %d objects, world has %d", n, s.Len())
	}
}

type fakeAudio struct {
	played []string
	paused time.Duration
	volume float64
}

func (a *fakeAudio) Play(music *assets.Audio)  { a.played = append(a.played, music.ID) }
func (a *fakeAudio) Pause(fade time.Duration)  { a.paused = fade }
func (a *fakeAudio) Resume(fade time.Duration) {}
func (a *fakeAudio) Volume() float64           { return a.volume }
func (a *fakeAudio) SetVolume(v float64)       { a.volume = v }

type fakeWindow struct{ full bool }

func (w *fakeWindow) Size() (int, int)      { return 320, 240 }
func (w *fakeWindow) Fullscreen() bool      { return w.full }
func (w *fakeWindow) SetFullscreen(on bool) { w.full = on }

const controlModule = `
setup := func() {
	state.audio.dirty = true
	state.audio.command = "play"
	state.audio.music = "theme"
}
start := func() {
	state.audio.dirty = true
	state.audio.command = "pause_fade"
	state.audio.fade_ms = 250
	state.fullscreen = true
}
update := func() {
	self.width = state.window.width
	self.dt = state.timer.delta_time
}
`

func TestAudioWindowAndTimer(t *testing.T) {
	b := NewBridge()
	loadModule(t, b, "control", controlModule)

	s := ecs.NewState()
	s.Music["theme"] = &assets.Audio{ID: "theme"}
	audio := &fakeAudio{volume: 0.5}
	win := &fakeWindow{}

	runFrames(b, s, 3, audio, win)

	if len(audio.played) != 1 || audio.played[0] != "theme" {
		t.Fatalf("expected theme to play once, got %v", audio.played)
	}
	if audio.paused != 250*time.Millisecond {
		t.Fatalf("expected a 250ms pause fade, got %v", audio.paused)
	}
	if audio.volume != 0.5 {
		t.Fatalf("volume changed without a volume command: %v", audio.volume)
	}
	if !win.full {
		t.Fatalf("expected fullscreen to be applied")
	}

	m, _ := b.Module("control")
	if w, _ := tengo.ToInt(m.self.Value["width"]); w != 320 {
		t.Fatalf("expected window width 320 in scripts, got %v", m.self.Value["width"])
	}
	am, _ := fieldMap(b.State(), "audio")
	if v := readFloat(am, "volume", -1); v != 0.5 {
		t.Fatalf("expected device volume pushed back, got %v", v)
	}
}

func TestReloadKeepsFrame(t *testing.T) {
	b := NewBridge()
	loadModule(t, b, "recorder", recorderModule)
	s := ecs.NewState()
	runFrames(b, s, 2, nil, nil)

	if err := b.Reload("recorder", []byte("setup := func( {")); err == nil {
		t.Fatalf("expected reload of broken source to fail")
	}
	if err := b.Reload("recorder", []byte(recorderModule)); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if f := b.Frame("recorder"); f != 2 {
		t.Fatalf("expected frame counter kept at 2, got %d", f)
	}
	runFrames(b, s, 1, nil, nil)
	got := moduleLog(t, b, "recorder")
	if got[len(got)-1] != "update" {
		t.Fatalf("expected update after reload, got %v", got)
	}
	if err := b.Reload("missing", nil); !errors.Is(err, ErrModuleNotLoaded) {
		t.Fatalf("expected ErrModuleNotLoaded, got %v", err)
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"scripts/b.tengo":   {Data: []byte(failingModule)},
		"scripts/a.tengo":   {Data: []byte(recorderModule)},
		"scripts/notes.txt": {Data: []byte("ignored")},
	}
	b := NewBridge()
	if err := b.LoadFS(fsys, "scripts", nil); err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if got := b.Modules(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected modules %v", got)
	}

	b = NewBridge()
	if err := b.LoadFS(fsys, "scripts", []string{"b", "a"}); err != nil {
		t.Fatalf("LoadFS ordered: %v", err)
	}
	if got := b.Modules(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("explicit order not kept: %v", got)
	}
}

func TestSplitVMError(t *testing.T) {
	msg, loc := splitVMError(errors.New("Runtime Error: division by zero\n\tat (main):6:15"))
	if msg != "Runtime Error: division by zero" || loc != "(main):6:15" {
		t.Fatalf("unexpected split %q %q", msg, loc)
	}
	msg, loc = splitVMError(errors.New("plain"))
	if msg != "plain" || loc != "" {
		t.Fatalf("unexpected split %q %q", msg, loc)
	}
}

func TestRuntimePanicIsReported(t *testing.T) {
	b := NewBridge()
	loadModule(t, b, "failing", failingModule)

	s := ecs.NewState()
	runFrames(b, s, 5, nil, nil)

	if b.Errors() != 3 {
		t.Fatalf("expected one error per update frame, got %d", b.Errors())
	}
	if f := b.Frame("failing"); f != 5 {
		t.Fatalf("frame = %d, want 5", f)
	}

	m, _ := b.Module("failing")
	err := m.call("update", tengo.UndefinedValue, tengo.UndefinedValue)
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("call error = %v, want a recovered panic", err)
	}
}

func TestSpriteWireCell(t *testing.T) {
	sp := component.NewSprite("sheet")
	sp.CutSheet(1, 0, 2, 1)
	sp.Bind(32, 16)

	m := encodeComponent(sp)
	if got := readPoint(m, "cell", image.Point{}); got != image.Pt(1, 0) {
		t.Fatalf("cell = %v, want (1,0)", got)
	}
	if got := readPoint(m, "size", image.Point{}); got != image.Pt(16, 16) {
		t.Fatalf("size = %v, want (16,16)", got)
	}
	if got := readPoint(m, "cut", image.Point{}); got != image.Pt(2, 1) {
		t.Fatalf("cut = %v, want (2,1)", got)
	}

	m.Value["cell"] = pointObject(image.Pt(0, 0))
	decodeComponent(m, sp)
	if sp.Index != (image.Point{}) {
		t.Fatalf("index = %v after selecting cell (0,0)", sp.Index)
	}
}
