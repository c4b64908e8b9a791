package permission

import (
	"fmt"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/models"
)

// Ref points to a permission either by name or by id.
// Callers pass whichever they hold; it is resolved to an id before any comparison.
type Ref struct {
	name string
	id   uint
}

// ByName references a permission by its unique name.
func ByName(name string) Ref {
	return Ref{name: name}
}

// ByID references a permission by primary key.
func ByID(id uint) Ref {
	return Ref{id: id}
}

// ByEntity references a loaded permission. Its id wins over its name.
func ByEntity(p *models.Permission) Ref {
	if p == nil {
		return Ref{}
	}

	return Ref{name: p.Name, id: p.ID}
}

// Refs converts permission names into refs.
func Refs(names ...string) []Ref {
	out := make([]Ref, 0, len(names))
	for _, n := range names {
		out = append(out, ByName(n))
	}

	return out
}

// Name returns the referenced name, if the ref was built from one.
func (r Ref) Name() string {
	return r.name
}

// ID returns the referenced id, if known.
func (r Ref) ID() uint {
	return r.id
}

// IsZero reports whether the ref points at nothing.
func (r Ref) IsZero() bool {
	return r.name == "" && r.id == 0
}

func (r Ref) String() string {
	if r.name != "" {
		return r.name
	}

	return fmt.Sprintf("#%d", r.id)
}
