package schema

import (
	"fmt"

	"github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

// Registry holds descriptors in registration order. That order is the
// default order collections are processed and emitted in.
type Registry struct {
	order  []*Descriptor
	byPath map[string]*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{byPath: make(map[string]*Descriptor)}
}

// Register validates and adds d. Paths are normalized.
func (r *Registry) Register(d Descriptor) error {
	d.Path = routeros.NormalizePath(d.Path)
	if err := d.Validate(); err != nil {
		return err
	}
	if _, dup := r.byPath[d.Path]; dup {
		return nxerrors.New(nxerrors.KindValidation, fmt.Errorf("descriptor %s registered twice", d.Path))
	}
	stored := d
	r.order = append(r.order, &stored)
	r.byPath[d.Path] = &stored
	return nil
}

// MustRegister registers every descriptor and panics on the first error. It
// is meant for package-level tables.
func (r *Registry) MustRegister(ds ...Descriptor) *Registry {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Lookup finds the descriptor for path.
func (r *Registry) Lookup(path string) (*Descriptor, bool) {
	d, ok := r.byPath[routeros.NormalizePath(path)]
	return d, ok
}

// Paths lists registered paths in registration order.
func (r *Registry) Paths() []string {
	out := make([]string, len(r.order))
	for i, d := range r.order {
		out[i] = d.Path
	}
	return out
}

// Descriptors lists registered descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	return append([]*Descriptor(nil), r.order...)
}

func (r *Registry) Len() int { return len(r.order) }
