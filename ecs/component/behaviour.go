package component

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ModuleHandle is an interned script module name. The zero handle names no
// module.
type ModuleHandle uint32

var (
	nextModuleHandle atomic.Uint32
	moduleMu         sync.RWMutex
	moduleHandles    = map[string]ModuleHandle{}
	moduleNames      = map[ModuleHandle]string{}
)

// InternModule returns the handle for name, allocating one on first use.
// Handles are never reused.
func InternModule(name string) ModuleHandle {
	if name == "" {
		return 0
	}
	moduleMu.RLock()
	h, ok := moduleHandles[name]
	moduleMu.RUnlock()
	if ok {
		return h
	}

	moduleMu.Lock()
	defer moduleMu.Unlock()
	if h, ok := moduleHandles[name]; ok {
		return h
	}
	h = ModuleHandle(nextModuleHandle.Add(1))
	moduleHandles[name] = h
	moduleNames[h] = name
	return h
}

func (h ModuleHandle) Valid() bool {
	return h != 0
}

func (h ModuleHandle) String() string {
	moduleMu.RLock()
	defer moduleMu.RUnlock()
	return moduleNames[h]
}

// Behaviour binds its game object to a script module.
type Behaviour struct {
	Module string
	UUID   string
	Handle ModuleHandle
}

func NewBehaviour(module string) *Behaviour {
	return &Behaviour{
		Module: module,
		UUID:   uuid.NewString(),
		Handle: InternModule(module),
	}
}

func (b *Behaviour) Kind() Kind { return KindBehaviour }

func (b *Behaviour) Clone() Component {
	c := *b
	return &c
}

// SetModule rebinds the behaviour to another module.
func (b *Behaviour) SetModule(module string) {
	b.Module = module
	b.Handle = InternModule(module)
}
