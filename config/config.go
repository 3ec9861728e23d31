// Package config loads the lilah.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	jlconfig "github.com/JeremyLoy/config"
	"github.com/charmbracelet/log"
	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/ecs/system"
	"github.com/milk9111/lilah/input"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// FileName is the project file looked up in the working directory.
const FileName = "lilah.yaml"

// EnvConfig names the environment variable holding a project file path.
const EnvConfig = "LILAH_CONFIG"

var ErrNoConfig = errors.New("config: no project file found")

type Window struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	Resizable  bool `yaml:"resizable"`
}

type Collision struct {
	Policy string `yaml:"policy"`
}

type Config struct {
	Title      string                   `yaml:"title"`
	Window     Window                   `yaml:"window"`
	FPS        int                      `yaml:"fps"`
	LogLevel   string                   `yaml:"log_level"`
	ScriptsDir string                   `yaml:"scripts_dir"`
	Modules    []string                 `yaml:"modules"`
	Assets     assets.Manifest          `yaml:"assets"`
	Prefabs    []string                 `yaml:"prefabs"`
	Bindings   map[string]input.Binding `yaml:"bindings"`
	Collision  Collision                `yaml:"collision"`
	HotReload  bool                     `yaml:"hot_reload"`
	SaveData   string                   `yaml:"savedata"`
	Debug      bool                     `yaml:"debug"`

	// Dir is the project directory on disk. It is empty for an embedded
	// project.
	Dir string `yaml:"-"`
	// FS reads project files relative to the project directory.
	FS fs.FS `yaml:"-"`
}

// Default returns the settings used for fields a project file leaves out.
func Default() *Config {
	return &Config{
		Title:      "lilah",
		Window:     Window{Width: 800, Height: 600},
		FPS:        60,
		LogLevel:   "info",
		ScriptsDir: "scripts",
		Collision:  Collision{Policy: system.ResolveAgainstOther.String()},
		SaveData:   "~/.lilah/save.db",
	}
}

// Parse decodes a project file over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// Load finds and reads the project file. The search order is the explicit
// path, $LILAH_CONFIG, ./lilah.yaml, then lilah.yaml inside fallback.
// Environment overrides are applied and the result is validated.
func Load(explicit string, fallback fs.FS) (*Config, error) {
	cfg, err := find(explicit, fallback)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func find(explicit string, fallback fs.FS) (*Config, error) {
	if explicit != "" {
		return loadFile(explicit)
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return loadFile(p)
	}
	if _, err := os.Stat(FileName); err == nil {
		return loadFile(FileName)
	}
	if fallback == nil {
		return nil, ErrNoConfig
	}
	data, err := fs.ReadFile(fallback, FileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConfig, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.FS = fallback
	log.Debug("using embedded project")
	return cfg, nil
}

func loadFile(p string) (*Config, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", p, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", p, err)
	}
	dir, err := filepath.Abs(filepath.Dir(p))
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", p, err)
	}
	cfg.Dir = dir
	cfg.FS = os.DirFS(dir)
	return cfg, nil
}

// Overrides are read from the environment. Empty values leave the project
// file setting alone.
type Overrides struct {
	Title     string `config:"LILAH_TITLE"`
	FPS       string `config:"LILAH_FPS"`
	LogLevel  string `config:"LILAH_LOG_LEVEL"`
	SaveData  string `config:"LILAH_SAVEDATA"`
	HotReload string `config:"LILAH_HOT_RELOAD"`
	Debug     string `config:"LILAH_DEBUG"`
}

// ApplyEnv applies LILAH_* environment overrides.
func (c *Config) ApplyEnv() error {
	var o Overrides
	if err := jlconfig.FromEnv().To(&o); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return c.Apply(o)
}

func (c *Config) Apply(o Overrides) error {
	if o.Title != "" {
		c.Title = o.Title
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.SaveData != "" {
		c.SaveData = o.SaveData
	}
	if o.FPS != "" {
		fps, err := cast.ToIntE(o.FPS)
		if err != nil {
			return fmt.Errorf("config: LILAH_FPS: %w", err)
		}
		c.FPS = fps
	}
	if o.HotReload != "" {
		v, err := cast.ToBoolE(o.HotReload)
		if err != nil {
			return fmt.Errorf("config: LILAH_HOT_RELOAD: %w", err)
		}
		c.HotReload = v
	}
	if o.Debug != "" {
		v, err := cast.ToBoolE(o.Debug)
		if err != nil {
			return fmt.Errorf("config: LILAH_DEBUG: %w", err)
		}
		c.Debug = v
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("config: window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.FPS < 0 {
		return fmt.Errorf("config: fps %d must not be negative", c.FPS)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if _, err := system.ParseResolvePolicy(c.Collision.Policy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if strings.TrimSpace(c.ScriptsDir) == "" {
		return errors.New("config: scripts_dir must be set")
	}
	for name, b := range c.Bindings {
		if b.Positive == "" && b.Negative == "" {
			return fmt.Errorf("config: binding %s has no keys", name)
		}
	}
	return nil
}

// Policy is the parsed collision policy. Call Validate first.
func (c *Config) Policy() system.ResolvePolicy {
	p, _ := system.ParseResolvePolicy(c.Collision.Policy)
	return p
}

// Level is the parsed log level, or info when it does not parse.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
