package schema

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/resource"
	"github.com/honeybbq/rosreconcile/pkg/value"
)

// Record is one entity of a described collection. Values are stored in the
// concrete type produced by each field's codec; absent fields have no entry.
type Record struct {
	desc   *Descriptor
	values map[string]any
}

// NewRecord returns an empty record of d.
func NewRecord(d *Descriptor) *Record {
	return &Record{desc: d, values: make(map[string]any)}
}

func (r *Record) Descriptor() *Descriptor { return r.desc }

// Get returns the typed value of field name.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Text returns the encoded value of field name.
func (r *Record) Text(name string) (string, bool) {
	f, ok := r.desc.Field(name)
	if !ok {
		return "", false
	}
	v, ok := r.values[name]
	if !ok {
		return "", false
	}
	return f.Codec.EncodeAny(v), true
}

// Set parses text with the field codec. Empty text clears the field.
func (r *Record) Set(name, text string) error {
	f, ok := r.desc.Field(name)
	if !ok {
		return nxerrors.New(nxerrors.KindValidation, fmt.Errorf("%s: unknown field %q", r.desc.Path, name))
	}
	res := f.Codec.ParseAny(text)
	switch res.Outcome {
	case value.Valid:
		r.values[name] = res.Value
	case value.Absent:
		delete(r.values, name)
	default:
		return fmt.Errorf("%s: field %q: %w", r.desc.Path, name, res.Err)
	}
	return nil
}

// Unset removes field name.
func (r *Record) Unset(name string) {
	delete(r.values, name)
}

// Clone returns an independent copy. Values are immutable once parsed, so
// a shallow map copy is enough.
func (r *Record) Clone() *Record {
	out := NewRecord(r.desc)
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

func (r *Record) String() string {
	if r.desc.Singleton {
		return r.desc.Path
	}
	return r.desc.Path + "[" + r.KeyValue().String() + "]"
}

// Path implements resource.Resource.
func (r *Record) Path() string { return r.desc.Path }

// ProvidesReferences implements resource.Resource.
func (r *Record) ProvidesReferences() []resource.Reference {
	return r.references(Provides)
}

// ConsumesReferences implements resource.Resource.
func (r *Record) ConsumesReferences() []resource.Reference {
	return r.references(Consumes)
}

func (r *Record) references(dir Direction) []resource.Reference {
	var out []resource.Reference
	for i := range r.desc.Fields {
		f := &r.desc.Fields[i]
		if f.Ref == nil || f.Ref.Direction != dir {
			continue
		}
		v, ok := r.values[f.Name]
		if !ok || special(v) {
			continue
		}
		if m, ok := f.Codec.(value.Multi); ok {
			for _, e := range m.ElementsAny(v) {
				out = append(out, resource.Reference{Kind: f.Ref.Kind, Value: e})
			}
			continue
		}
		out = append(out, resource.Reference{Kind: f.Ref.Kind, Value: f.Codec.EncodeAny(v)})
	}
	return out
}

func special(v any) bool {
	s, ok := v.(interface{ IsSpecial() bool })
	return ok && s.IsSpecial()
}

// KeyName implements resource.Keyed.
func (r *Record) KeyName() string { return r.desc.KeyName() }

// KeyValue implements resource.Keyed.
func (r *Record) KeyValue() Key {
	keys := r.desc.KeyFields()
	parts := make([]string, len(keys))
	for i, f := range keys {
		parts[i], _ = r.Text(f.Name)
	}
	return NewKey(parts...)
}

// Singleton implements resource.Locatable.
func (r *Record) Singleton() bool { return r.desc.Singleton }

// Selector implements resource.Locatable.
func (r *Record) Selector() []resource.KeyValuePair {
	var out []resource.KeyValuePair
	for _, f := range r.desc.KeyFields() {
		if v, ok := r.Text(f.Name); ok {
			out = append(out, resource.KeyValuePair{Key: f.Name, Value: v})
		}
	}
	return out
}

// ChangedValues implements resource.Cfg. A field the target lacks but the
// device has is cleared with an empty value, unless it is KeepIfNone.
func (r *Record) ChangedValues(before *Record) []resource.KeyValuePair {
	var out []resource.KeyValuePair
	for i := range r.desc.Fields {
		f := &r.desc.Fields[i]
		if f.ReadOnly {
			continue
		}
		next, has := r.values[f.Name]
		prev, had := before.values[f.Name]
		switch {
		case !has && (!had || f.KeepIfNone):
			continue
		case !has:
			out = append(out, resource.KeyValuePair{Key: f.Name, Value: ""})
		case had && f.Codec.EqualAny(next, prev):
			continue
		default:
			out = append(out, resource.KeyValuePair{Key: f.Name, Value: f.Codec.EncodeAny(next)})
		}
	}
	return out
}

// Fields implements resource.Cfg.
func (r *Record) Fields() []resource.KeyValuePair {
	var out []resource.KeyValuePair
	for i := range r.desc.Fields {
		f := &r.desc.Fields[i]
		if f.ReadOnly {
			continue
		}
		if v, ok := r.values[f.Name]; ok {
			out = append(out, resource.KeyValuePair{Key: f.Name, Value: f.Codec.EncodeAny(v)})
		}
	}
	return out
}

// CalculateUpdate implements resource.Updatable.
func (r *Record) CalculateUpdate(from *Record) (resource.ResourceMutation, error) {
	if from == nil || from.desc.Path != r.desc.Path {
		return resource.ResourceMutation{}, nxerrors.New(nxerrors.KindInternal,
			fmt.Errorf("%s: update against a record of another collection", r))
	}
	return resource.Update(r, from)
}

// CalculateCreate implements resource.Creatable.
func (r *Record) CalculateCreate() (resource.ResourceMutation, error) {
	if !r.desc.Addable && !r.desc.Singleton {
		return resource.ResourceMutation{}, nxerrors.New(nxerrors.KindMutation,
			fmt.Errorf("%s: collection does not accept add", r))
	}
	return resource.Create(r)
}

// UpdateReference implements resource.FieldUpdateHandler for every field
// consuming kind.
func (r *Record) UpdateReference(kind resource.ReferenceKind, old, next string) bool {
	changed := false
	for i := range r.desc.Fields {
		f := &r.desc.Fields[i]
		if !f.consumes() || f.Ref.Kind != kind {
			continue
		}
		v, ok := r.values[f.Name]
		if !ok {
			continue
		}
		if m, ok := f.Codec.(value.Multi); ok {
			if replaced, hit := m.ReplaceAny(v, old, next); hit {
				r.values[f.Name] = replaced
				changed = true
			}
			continue
		}
		if special(v) || f.Codec.EncodeAny(v) != old {
			continue
		}
		res := f.Codec.ParseAny(next)
		if res.Outcome != value.Valid {
			continue
		}
		r.values[f.Name] = res.Value
		changed = true
	}
	return changed
}

// CheckReferences implements resource.ReferenceChecker: required consuming
// fields must point somewhere.
func (r *Record) CheckReferences() error {
	var missing []string
	for i := range r.desc.Fields {
		f := &r.desc.Fields[i]
		if !f.consumes() || !f.Required {
			continue
		}
		if txt, ok := r.Text(f.Name); !ok || txt == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nxerrors.New(nxerrors.KindMutation,
			fmt.Errorf("%s: empty reference in %s", r, strings.Join(missing, ",")))
	}
	return nil
}

// Identity returns the value of the descriptor's identity field.
func (r *Record) Identity() (string, bool) {
	if r.desc.IdentityField == "" {
		return "", false
	}
	v, ok := r.Text(r.desc.IdentityField)
	return v, ok && v != ""
}

// DefaultFromIdentity fills absent providing fields with the identity
// value, which is the name the device gives a record nobody renamed. It
// reports whether anything was set.
func (r *Record) DefaultFromIdentity() bool {
	id, ok := r.Identity()
	if !ok {
		return false
	}
	changed := false
	for i := range r.desc.Fields {
		f := &r.desc.Fields[i]
		if f.Key || f.Ref == nil || f.Ref.Direction != Provides {
			continue
		}
		if _, has := r.values[f.Name]; has {
			continue
		}
		res := f.Codec.ParseAny(id)
		if res.Outcome != value.Valid {
			continue
		}
		r.values[f.Name] = res.Value
		changed = true
	}
	return changed
}

// Restrict drops the fields the device version does not know and returns
// their names.
func (r *Record) Restrict(v *semver.Version) []string {
	if v == nil {
		return nil
	}
	var dropped []string
	for i := range r.desc.Fields {
		f := &r.desc.Fields[i]
		if _, ok := r.values[f.Name]; !ok || f.Supports(v) {
			continue
		}
		delete(r.values, f.Name)
		dropped = append(dropped, f.Name)
	}
	return dropped
}
