package prefabs

import (
	"io/fs"
	"path"
	"slices"

	"github.com/milk9111/lilah/assets"
)

// Load reads a prefab file from fsys. Names may use OS separators.
func Load(fsys fs.FS, name string) ([]byte, error) {
	return fs.ReadFile(fsys, assets.CleanPath(name))
}

// Glob lists the YAML files directly under dir in fsys, sorted.
func Glob(fsys fs.FS, dir string) ([]string, error) {
	var out []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := fs.Glob(fsys, path.Join(assets.CleanPath(dir), pattern))
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	slices.Sort(out)
	return out, nil
}
