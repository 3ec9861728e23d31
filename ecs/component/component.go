package component

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
)

var (
	ErrUnknownKind  = errors.New("component: unknown kind")
	ErrNilComponent = errors.New("component: component is nil")
)

// Kind identifies a concrete component type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindTransform
	KindRigidbody
	KindSprite
	KindText
	KindScene
	KindAnimator
	KindBehaviour
	KindSfx
)

var kindNames = [...]string{
	KindInvalid:   "Invalid",
	KindTransform: "Transform",
	KindRigidbody: "Rigidbody",
	KindSprite:    "Sprite",
	KindText:      "Text",
	KindScene:     "Scene",
	KindAnimator:  "Animator",
	KindBehaviour: "Behaviour",
	KindSfx:       "Sfx",
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindTransform, KindRigidbody, KindSprite, KindText, KindScene, KindAnimator, KindBehaviour, KindSfx}
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Singleton reports whether more than one instance of the kind on an
// entity is a content error.
func (k Kind) Singleton() bool {
	return k != KindSfx
}

// ParseKind resolves a kind by name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(k.String(), strings.TrimSpace(name)) {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Component is a value attached to a game object.
type Component interface {
	Kind() Kind
	Clone() Component
}

// New returns a component of the given kind with its default values.
func New(k Kind) (Component, error) {
	switch k {
	case KindTransform:
		return NewTransform(cp.Vector{}), nil
	case KindRigidbody:
		return NewRigidbody(), nil
	case KindSprite:
		return NewSprite(""), nil
	case KindText:
		return NewText("", ""), nil
	case KindScene:
		return NewScene(""), nil
	case KindAnimator:
		return NewAnimator(), nil
	case KindBehaviour:
		return NewBehaviour(""), nil
	case KindSfx:
		return NewSfx("", ""), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, k)
	}
}

// ID identifies a game object. Equality is by UUID.
type ID struct {
	Name string
	UUID string
}

// Same reports whether both ids refer to the same object.
func (id ID) Same(other ID) bool {
	return id.UUID == other.UUID
}

func (id ID) String() string {
	return fmt.Sprintf("%s(%s)", id.Name, id.UUID)
}
