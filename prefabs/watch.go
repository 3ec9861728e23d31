package prefabs

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies a changed project file by extension.
type ChangeKind int

const (
	ChangeOther ChangeKind = iota
	ChangeScript
	ChangePrefab
	ChangeTexture
	ChangeAudio
	ChangeScene
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeScript:
		return "script"
	case ChangePrefab:
		return "prefab"
	case ChangeTexture:
		return "texture"
	case ChangeAudio:
		return "audio"
	case ChangeScene:
		return "scene"
	default:
		return "other"
	}
}

// Change is a debounced file event. Path is relative to the watched root
// and slash-separated.
type Change struct {
	Path string
	Kind ChangeKind
}

const debounce = 100 * time.Millisecond

type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	Events  chan Change
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches root and every directory below it.
func NewWatcher(root string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		root:    root,
		watcher: w,
		Events:  make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	logger.Debug("watching project", "root", root)
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

// Drain returns every change queued so far without blocking.
func (w *Watcher) Drain() []Change {
	var out []Change
	for {
		select {
		case c, ok := <-w.Events:
			if !ok {
				return out
			}
			out = append(out, c)
		default:
			return out
		}
	}
}

func (w *Watcher) run() {
	defer close(w.done)
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			kind := Classify(event.Name)
			if kind == ChangeOther {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < debounce {
				continue
			}
			last[event.Name] = now
			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				rel = event.Name
			}
			select {
			case w.Events <- Change{Path: filepath.ToSlash(rel), Kind: kind}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				logger.Warn("watcher error dropped", "err", err)
			}
		case <-w.closeCh:
			return
		}
	}
}

// Classify maps a file name to the kind of asset it holds.
func Classify(path string) ChangeKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tengo":
		return ChangeScript
	case ".yaml", ".yml":
		return ChangePrefab
	case ".png", ".bmp", ".webp", ".jpg", ".jpeg":
		return ChangeTexture
	case ".wav", ".mp3", ".ogg":
		return ChangeAudio
	case ".json":
		return ChangeScene
	default:
		return ChangeOther
	}
}
