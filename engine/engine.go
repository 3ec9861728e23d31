// Package engine drives frames: input, camera, scripts, physics, state
// push, and draw, in that order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/armon/go-metrics"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/config"
	"github.com/milk9111/lilah/ecs"
	"github.com/milk9111/lilah/ecs/component"
	"github.com/milk9111/lilah/ecs/system"
	"github.com/milk9111/lilah/input"
	"github.com/milk9111/lilah/logging"
	"github.com/milk9111/lilah/prefabs"
	"github.com/milk9111/lilah/scripting"
)

var logger = logging.New("engine")

var (
	ErrStarted    = errors.New("engine: already started")
	ErrNotStarted = errors.New("engine: not started")
)

// Platform is the frame boundary: it polls input before a frame and
// presents after it.
type Platform interface {
	// PreFrame fills in and reports whether the app should quit.
	PreFrame(in *input.State) (quit bool)
	PresentFrame()
	Window() scripting.Window
}

// AudioDevice plays music for scripts and one-shot effects for Sfx
// components.
type AudioDevice interface {
	scripting.AudioDevice
	ecs.SfxPlayer
}

// Hooks let an embedder run Go code at the same points scripts run.
type Hooks struct {
	Setup  func(e *Engine) error
	Start  func(e *Engine) error
	Update func(e *Engine)
}

type Option func(*Engine)

func WithAudio(a AudioDevice) Option { return func(e *Engine) { e.audio = a } }

func WithWindow(w scripting.Window) Option { return func(e *Engine) { e.window = w } }

func WithHooks(h Hooks) Option { return func(e *Engine) { e.hooks = h } }

// WithWatcher enables hot reload from w.
func WithWatcher(w *prefabs.Watcher) Option { return func(e *Engine) { e.watcher = w } }

// WithClock replaces the wall clock used by the timer.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.Timer.now = now } }

// WithFixedStep makes every frame advance by dt seconds.
func WithFixedStep(dt float64) Option { return func(e *Engine) { e.Timer.Fixed = dt } }

type Engine struct {
	State  *ecs.State
	Bridge *scripting.Bridge
	Input  *input.State
	Camera Camera
	Timer  *Timer
	Debug  bool

	cfg       *config.Config
	loader    *assets.Loader
	collision *system.CollisionSystem
	audio     AudioDevice
	window    scripting.Window
	hooks     Hooks
	watcher   *prefabs.Watcher
	sink      *metrics.InmemSink
	metrics   *metrics.Metrics
	started   bool
	frames    int
}

// New wires an engine around an already loaded state and bridge.
func New(cfg *config.Config, state *ecs.State, bridge *scripting.Bridge, opts ...Option) *Engine {
	e := &Engine{
		State:     state,
		Bridge:    bridge,
		Input:     input.New(),
		Timer:     NewTimer(nil),
		Debug:     cfg.Debug,
		cfg:       cfg,
		loader:    assets.NewLoader(cfg.FS),
		collision: system.NewCollisionSystem(cfg.Policy()),
		Camera:    Camera{Width: float64(cfg.Window.Width), Height: float64(cfg.Window.Height)},
	}
	for name, b := range cfg.Bindings {
		e.Input.Bind(name, b.Negative, b.Positive)
	}
	state.AddSystem(e.collision)

	e.sink = metrics.NewInmemSink(10*time.Second, time.Minute)
	conf := metrics.DefaultConfig("lilah")
	conf.EnableHostname = false
	conf.EnableRuntimeMetrics = false
	m, err := metrics.NewGlobal(conf, e.sink)
	if err != nil {
		logger.Warn("metrics disabled", "err", err)
	}
	e.metrics = m

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open loads the assets and script modules named by cfg and returns an
// engine around them.
func Open(cfg *config.Config, storage scripting.Storage, opts ...Option) (*Engine, error) {
	state := ecs.NewState()
	bundle, err := assets.NewLoader(cfg.FS).Load(cfg.Assets)
	if err != nil {
		return nil, err
	}
	state.AddBundle(bundle)

	bridge := scripting.NewBridge()
	bridge.Storage = storage
	if err := bridge.LoadFS(cfg.FS, cfg.ScriptsDir, cfg.Modules); err != nil {
		return nil, err
	}
	logger.Info("project loaded", "title", cfg.Title, "modules", len(bridge.Modules()), "textures", len(state.Textures))
	return New(cfg, state, bridge, opts...), nil
}

// Config is the project configuration the engine was created with.
func (e *Engine) Config() *config.Config { return e.cfg }

// Collision is the physics system added to the state.
func (e *Engine) Collision() *system.CollisionSystem { return e.collision }

// Frames is the number of completed Steps.
func (e *Engine) Frames() int { return e.frames }

// Metrics is the in-memory sink holding frame timings.
func (e *Engine) Metrics() *metrics.InmemSink { return e.sink }

// SetWindow replaces the window scripts see.
func (e *Engine) SetWindow(w scripting.Window) { e.window = w }

// Start runs the boot sequence: camera and prefabs are inserted, the setup
// hook runs, state is pushed, every object loads, the start hook runs,
// and every module runs setup before the result is pulled and pushed back.
// Behaviour callbacks wait for the first Step.
func (e *Engine) Start() error {
	if e.started {
		return ErrStarted
	}
	e.ensureCamera()
	for _, p := range e.cfg.Prefabs {
		g, err := prefabs.BuildFile(e.cfg.FS, p)
		if err != nil {
			return err
		}
		e.State.Insert(g)
	}

	if e.hooks.Setup != nil {
		if err := e.hooks.Setup(e); err != nil {
			return fmt.Errorf("engine: setup hook: %w", err)
		}
	}
	e.Bridge.PushState(e.State, e.window, e.Input)
	e.State.Load(e.audio)
	if e.hooks.Start != nil {
		if err := e.hooks.Start(e); err != nil {
			return fmt.Errorf("engine: start hook: %w", err)
		}
	}
	e.Timer.Update()
	e.Bridge.Boot(e.State, e.Timer.Timing(), e.audio, e.window)
	e.Bridge.PushState(e.State, e.window, e.Input)

	e.started = true
	logger.Debug("engine started", "objects", e.State.Len())
	return nil
}

func (e *Engine) ensureCamera() {
	if _, ok := e.State.Wrap(CameraName); ok {
		return
	}
	e.State.Insert(ecs.NewGameObject(CameraName).With(component.NewTransform(cp.Vector{})))
}

// Step runs one frame after input has been polled.
func (e *Engine) Step() error {
	if !e.started {
		return ErrNotStarted
	}
	start := time.Now()

	e.updateCamera()

	scriptStart := time.Now()
	e.Bridge.Tick(e.State, e.Timer.Timing(), e.audio, e.window)
	e.measure("frame.script", scriptStart)

	if e.hooks.Update != nil {
		e.hooks.Update(e)
	}

	physicsStart := time.Now()
	e.State.Update(e.Timer.DeltaTime, e.audio)
	e.measure("frame.physics", physicsStart)

	if e.watcher != nil {
		e.ApplyChanges(e.watcher.Drain())
	}

	e.Bridge.PushState(e.State, e.window, e.Input)
	e.Input.EndFrame()
	e.Timer.Update()
	e.frames++

	if e.metrics != nil {
		e.metrics.SetGauge([]string{"entities"}, float32(e.State.Len()))
		if n := len(e.State.Events().Collisions()); n > 0 {
			e.metrics.IncrCounter([]string{"collisions"}, float32(n))
		}
	}
	e.measure("frame", start)
	return nil
}

func (e *Engine) measure(name string, start time.Time) {
	if e.metrics != nil {
		e.metrics.MeasureSince([]string{name}, start)
	}
}

func (e *Engine) updateCamera() {
	if e.window != nil {
		w, h := e.window.Size()
		if w > 0 && h > 0 {
			e.Camera.Width, e.Camera.Height = float64(w), float64(h)
		}
	}
	g, ok := e.State.Wrap(CameraName)
	if !ok {
		return
	}
	if tr, ok := ecs.Wrap[*component.Transform](g); ok {
		e.Camera.Position = tr.Position
	}
	if e.Input != nil {
		e.Input.MousePos = e.Camera.ScreenToWorld(e.Input.ScreenMouse)
	}
}

// Run loops PreFrame, Step, Draw, PresentFrame until the platform or a
// script asks to quit or ctx is done.
func (e *Engine) Run(ctx context.Context, p Platform, r Renderer) error {
	e.window = p.Window()
	if !e.started {
		if err := e.Start(); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if p.PreFrame(e.Input) || e.Input.Quit {
			logger.Debug("quit requested", "frames", e.frames)
			return nil
		}
		if err := e.Step(); err != nil {
			return err
		}
		e.Draw(r)
		p.PresentFrame()
	}
}
