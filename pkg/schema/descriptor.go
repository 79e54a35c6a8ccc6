// Package schema describes RouterOS collections as data and provides one
// generic entity type, Record, that implements every resource contract by
// interpreting those descriptors.
package schema

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/resource"
	"github.com/honeybbq/rosreconcile/pkg/value"
)

// Direction says whether a field defines a reference value or points at one.
type Direction uint8

const (
	Provides Direction = iota + 1
	Consumes
)

// Reference marks a field as one end of a cross-entity reference.
type Reference struct {
	Kind      resource.ReferenceKind
	Direction Direction
}

// Provide declares a field whose value other entities may reference.
func Provide(kind resource.ReferenceKind) *Reference {
	return &Reference{Kind: kind, Direction: Provides}
}

// Consume declares a field that points at a provided value.
func Consume(kind resource.ReferenceKind) *Reference {
	return &Reference{Kind: kind, Direction: Consumes}
}

// Field describes one attribute of a collection.
type Field struct {
	Name  string
	Codec value.Field
	// Key fields identify the record when matching target against current.
	Key bool
	// Required fields must be present when a record is built.
	Required bool
	// ReadOnly fields are status: parsed and observable, never diffed or
	// written.
	ReadOnly bool
	// KeepIfNone leaves the device value alone when the target has none.
	KeepIfNone bool
	Ref        *Reference
	// MinVersion is the first device version that knows the field.
	MinVersion string
}

func (f *Field) consumes() bool { return f.Ref != nil && f.Ref.Direction == Consumes }

// Descriptor describes one collection, identified by its menu path.
type Descriptor struct {
	Path   string
	Fields []Field
	// Singleton collections hold exactly one record that always exists.
	Singleton bool
	// Addable collections accept add statements.
	Addable bool
	// Optional collections may be missing on a device, e.g. when the owning
	// package is not installed.
	Optional bool
	// IdentityField names a field that is stable across renames and is used
	// to detect them between target snapshots.
	IdentityField string
}

// Field returns the field named name.
func (d *Descriptor) Field(name string) (*Field, bool) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// KeyFields returns the key fields in declaration order.
func (d *Descriptor) KeyFields() []*Field {
	var out []*Field
	for i := range d.Fields {
		if d.Fields[i].Key {
			out = append(out, &d.Fields[i])
		}
	}
	return out
}

// KeyName is the comma joined list of key field names.
func (d *Descriptor) KeyName() string {
	keys := d.KeyFields()
	names := make([]string, len(keys))
	for i, f := range keys {
		names[i] = f.Name
	}
	return strings.Join(names, ",")
}

// Validate checks the descriptor is usable by Record.
func (d *Descriptor) Validate() error {
	if !strings.HasPrefix(d.Path, "/") {
		return d.invalid("path must start with /")
	}
	seen := make(map[string]struct{}, len(d.Fields))
	keys := 0
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.Name == "" {
			return d.invalid(fmt.Sprintf("field %d has no name", i))
		}
		if _, dup := seen[f.Name]; dup {
			return d.invalid(fmt.Sprintf("duplicate field %q", f.Name))
		}
		seen[f.Name] = struct{}{}
		if f.Codec == nil {
			return d.invalid(fmt.Sprintf("field %q has no codec", f.Name))
		}
		if f.Key {
			keys++
		}
		if f.Ref != nil && (f.Ref.Kind == "" || (f.Ref.Direction != Provides && f.Ref.Direction != Consumes)) {
			return d.invalid(fmt.Sprintf("field %q has an incomplete reference", f.Name))
		}
		if f.MinVersion != "" {
			if _, err := semver.NewVersion(f.MinVersion); err != nil {
				return d.invalid(fmt.Sprintf("field %q: min version %q: %v", f.Name, f.MinVersion, err))
			}
		}
	}
	switch {
	case d.Singleton && keys > 0:
		return d.invalid("singleton cannot have key fields")
	case !d.Singleton && keys == 0:
		return d.invalid("at least one key field is required")
	case keys > MaxKeyFields:
		return d.invalid(fmt.Sprintf("at most %d key fields are supported", MaxKeyFields))
	}
	if d.IdentityField != "" {
		if _, ok := seen[d.IdentityField]; !ok {
			return d.invalid(fmt.Sprintf("identity field %q is not declared", d.IdentityField))
		}
	}
	return nil
}

func (d *Descriptor) invalid(reason string) error {
	return nxerrors.New(nxerrors.KindValidation, fmt.Errorf("descriptor %s: %s", d.Path, reason))
}

// Supports reports whether the device version knows the field. A nil
// version accepts every field.
func (f *Field) Supports(v *semver.Version) bool {
	if v == nil || f.MinVersion == "" {
		return true
	}
	since, err := semver.NewVersion(f.MinVersion)
	if err != nil {
		return false
	}
	return !v.LessThan(since)
}
