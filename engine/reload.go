package engine

import (
	"path"
	"strings"

	"github.com/milk9111/lilah/assets"
	"github.com/milk9111/lilah/ecs/component"
	"github.com/milk9111/lilah/prefabs"
	"github.com/milk9111/lilah/scripting"
)

// ApplyChanges reloads changed project files between frames. Scripts are
// recompiled in place, and textures, audio, and scene data replace their
// asset entries.
func (e *Engine) ApplyChanges(changes []prefabs.Change) {
	for _, c := range changes {
		switch c.Kind {
		case prefabs.ChangeScript:
			e.reloadScript(c.Path)
		case prefabs.ChangeTexture, prefabs.ChangeAudio, prefabs.ChangeScene:
			e.reloadAsset(c.Path)
		case prefabs.ChangePrefab:
			logger.Info("prefab changed, restart to apply", "file", c.Path)
		}
	}
}

func (e *Engine) reloadScript(file string) {
	if path.Dir(file) != assets.CleanPath(e.cfg.ScriptsDir) {
		return
	}
	name := strings.TrimSuffix(path.Base(file), scripting.ModuleExt)
	if _, ok := e.Bridge.Module(name); !ok {
		logger.Debug("ignoring change to unloaded module", "module", name)
		return
	}
	src, err := e.loader.ReadFile(file)
	if err != nil {
		logger.Error("script reload failed", "module", name, "err", err)
		return
	}
	// Reload logs compile errors and keeps the previous program.
	_ = e.Bridge.Reload(name, src)
}

func (e *Engine) reloadAsset(file string) {
	refs := e.cfg.Assets.Lookup(file)
	if len(refs) == 0 {
		return
	}
	for _, ref := range refs {
		var err error
		switch ref.Kind {
		case assets.KindTexture:
			var tex *assets.Texture
			if tex, err = e.loader.Texture(ref.ID, ref.Path); err == nil {
				e.State.ReplaceTexture(tex)
			}
		case assets.KindSfx:
			var a *assets.Audio
			if a, err = e.loader.Audio(ref.ID, ref.Path); err == nil {
				e.State.Sfx[ref.ID] = a
			}
		case assets.KindMusic:
			var a *assets.Audio
			if a, err = e.loader.Audio(ref.ID, ref.Path); err == nil {
				e.State.Music[ref.ID] = a
			}
		case assets.KindScene:
			var sd *component.SceneData
			if sd, err = e.loader.Scene(ref.Path); err == nil {
				e.State.ReplaceScene(ref.ID, sd)
			}
		default:
			continue
		}
		if err != nil {
			logger.Error("asset reload failed", "kind", ref.Kind, "id", ref.ID, "err", err)
			continue
		}
		logger.Info("asset reloaded", "kind", ref.Kind, "id", ref.ID)
	}
}
