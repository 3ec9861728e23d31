package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/milk9111/lilah/ecs/component"
	"github.com/milk9111/lilah/logging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var logger = logging.New("assets")

// Kind names one asset table.
type Kind string

const (
	KindTexture Kind = "texture"
	KindFont    Kind = "font"
	KindMusic   Kind = "music"
	KindSfx     Kind = "sfx"
	KindScene   Kind = "scene"
)

// Manifest maps asset ids to project-relative file paths.
type Manifest struct {
	Textures map[string]string `yaml:"textures"`
	Fonts    map[string]string `yaml:"fonts"`
	Music    map[string]string `yaml:"music"`
	Sfx      map[string]string `yaml:"sfx"`
	Scenes   map[string]string `yaml:"scenes"`
}

func (m Manifest) tables() map[Kind]map[string]string {
	return map[Kind]map[string]string{
		KindTexture: m.Textures,
		KindFont:    m.Fonts,
		KindMusic:   m.Music,
		KindSfx:     m.Sfx,
		KindScene:   m.Scenes,
	}
}

// Lookup finds the entries whose file is p.
func (m Manifest) Lookup(p string) []Ref {
	clean := CleanPath(p)
	var out []Ref
	for kind, table := range m.tables() {
		for id, file := range table {
			if CleanPath(file) == clean {
				out = append(out, Ref{Kind: kind, ID: id, Path: file})
			}
		}
	}
	return out
}

// Ref is one manifest entry.
type Ref struct {
	Kind Kind
	ID   string
	Path string
}

// Bundle is every asset named by a manifest.
type Bundle struct {
	Textures map[string]*Texture
	Fonts    map[string]*Font
	Music    map[string]*Audio
	Sfx      map[string]*Audio
	Scenes   map[string]*component.SceneData
}

// Loader reads assets from a file system rooted at the project directory.
type Loader struct {
	fsys fs.FS
}

func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Load reads every asset in m. The first failure is returned.
func (l *Loader) Load(m Manifest) (*Bundle, error) {
	b := &Bundle{
		Textures: map[string]*Texture{},
		Fonts:    map[string]*Font{},
		Music:    map[string]*Audio{},
		Sfx:      map[string]*Audio{},
		Scenes:   map[string]*component.SceneData{},
	}
	for id, p := range m.Textures {
		t, err := l.Texture(id, p)
		if err != nil {
			return nil, err
		}
		b.Textures[id] = t
	}
	for id, p := range m.Fonts {
		f, err := l.Font(id, p)
		if err != nil {
			return nil, err
		}
		b.Fonts[id] = f
	}
	for id, p := range m.Music {
		a, err := l.Audio(id, p)
		if err != nil {
			return nil, err
		}
		b.Music[id] = a
	}
	for id, p := range m.Sfx {
		a, err := l.Audio(id, p)
		if err != nil {
			return nil, err
		}
		b.Sfx[id] = a
	}
	for id, p := range m.Scenes {
		sd, err := l.Scene(p)
		if err != nil {
			return nil, err
		}
		b.Scenes[id] = sd
	}
	logger.Info("assets loaded",
		"textures", len(b.Textures), "fonts", len(b.Fonts),
		"music", len(b.Music), "sfx", len(b.Sfx), "scenes", len(b.Scenes))
	return b, nil
}

// ReadFile reads a project-relative file.
func (l *Loader) ReadFile(p string) ([]byte, error) {
	return fs.ReadFile(l.fsys, CleanPath(p))
}

// Texture decodes a png, bmp, or webp image.
func (l *Loader) Texture(id, p string) (*Texture, error) {
	b, err := l.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("assets: load texture %s: %w", id, err)
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("assets: decode texture %s: %w", id, err)
	}
	return NewTexture(id, p, img), nil
}

func (l *Loader) Font(id, p string) (*Font, error) {
	b, err := l.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("assets: load font %s: %w", id, err)
	}
	return &Font{ID: id, Path: p, Data: b}, nil
}

// Audio reads an encoded audio file. Decoding is left to the platform.
func (l *Loader) Audio(id, p string) (*Audio, error) {
	b, err := l.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("assets: load audio %s: %w", id, err)
	}
	format := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	return &Audio{ID: id, Path: p, Format: format, Data: b}, nil
}

func (l *Loader) Scene(p string) (*component.SceneData, error) {
	b, err := l.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("assets: load scene %s: %w", p, err)
	}
	sd, err := component.ParseSceneData(b)
	if err != nil {
		return nil, fmt.Errorf("assets: parse scene %s: %w", p, err)
	}
	return sd, nil
}

// CleanPath turns a project path into an fs.FS path.
func CleanPath(p string) string {
	if p == "" {
		return ""
	}
	s := path.Clean(filepath.ToSlash(p))
	s = strings.TrimPrefix(s, "./")
	return strings.TrimPrefix(s, "/")
}
