package scene

import (
	"fmt"

	"github.com/spaghettifunk/frameflight/engine/core"
)

type (
	MaterialID int
	MeshID     int
	ItemID     int
	SubmeshID  int
	TextureID  int
)

// InvalidID marks an unset handle.
const InvalidID = -1

// Registry maps build time names to handles. Nothing looks names up while
// drawing.
type Registry[ID ~int] struct {
	byName map[string]ID
	names  []string
}

func NewRegistry[ID ~int]() *Registry[ID] {
	return &Registry[ID]{byName: make(map[string]ID)}
}

// Register binds name to the next handle.
func (r *Registry[ID]) Register(name string) (ID, error) {
	if _, ok := r.byName[name]; ok {
		return InvalidID, fmt.Errorf("name %q already registered: %w", name, core.ErrInvalidHandle)
	}
	id := ID(len(r.names))
	r.byName[name] = id
	r.names = append(r.names, name)
	return id, nil
}

func (r *Registry[ID]) Lookup(name string) (ID, error) {
	id, ok := r.byName[name]
	if !ok {
		return InvalidID, fmt.Errorf("no handle named %q: %w", name, core.ErrInvalidHandle)
	}
	return id, nil
}

func (r *Registry[ID]) Name(id ID) string {
	if int(id) < 0 || int(id) >= len(r.names) {
		return ""
	}
	return r.names[id]
}

func (r *Registry[ID]) Len() int {
	return len(r.names)
}
