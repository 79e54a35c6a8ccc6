package schema

import (
	"fmt"
	"sort"

	"github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/resource"
	"github.com/honeybbq/rosreconcile/pkg/value"
)

type recordBuilder struct {
	rec *Record
}

// NewBuilder returns a resource.Builder producing records of d.
func NewBuilder(d *Descriptor) resource.Builder[*Record] {
	return &recordBuilder{rec: NewRecord(d)}
}

func (b *recordBuilder) AppendField(key, text string) resource.AppendResult {
	f, ok := b.rec.desc.Field(key)
	if !ok {
		return resource.AppendResult{Status: resource.UnknownField, Field: key}
	}
	res := f.Codec.ParseAny(text)
	switch res.Outcome {
	case value.Valid:
		b.rec.values[key] = res.Value
	case value.Invalid:
		return resource.AppendResult{
			Status: resource.InvalidValue,
			Field:  key,
			Err:    fmt.Errorf("%s: field %q: %w", b.rec.desc.Path, key, res.Err),
		}
	}
	return resource.AppendResult{Status: resource.Appended, Field: key}
}

func (b *recordBuilder) Build() (*Record, error) {
	d := b.rec.desc
	for i := range d.Fields {
		f := &d.Fields[i]
		if !f.Required && !f.Key {
			continue
		}
		if _, ok := b.rec.values[f.Name]; ok {
			continue
		}
		return nil, nxerrors.New(nxerrors.KindMissingField, &resource.MissingFieldError{Path: d.Path, Field: f.Name})
	}
	return b.rec, nil
}

// FromEntry decodes one AST entry. Unknown attributes are returned as
// warnings.
func FromEntry(d *Descriptor, e *routeros.Entry) (*Record, []string, error) {
	if e == nil {
		return nil, nil, nxerrors.New(nxerrors.KindInternal, fmt.Errorf("%s: nil entry", d.Path))
	}
	return resource.Decode(NewBuilder(d), e.Row())
}

// FromSection decodes every entry of a section, stopping at the first error.
func FromSection(d *Descriptor, s *routeros.Section) ([]*Record, []string, error) {
	if s == nil {
		return nil, nil, nil
	}
	out := make([]*Record, 0, len(s.Entries))
	var warnings []string
	for i, e := range s.Entries {
		rec, w, err := FromEntry(d, e)
		for _, msg := range w {
			warnings = append(warnings, fmt.Sprintf("%s #%d: %s", d.Path, i, msg))
		}
		if err != nil {
			return nil, warnings, fmt.Errorf("%s #%d: %w", d.Path, i, err)
		}
		out = append(out, rec)
	}
	return out, warnings, nil
}

// Entry encodes the record back into an AST entry. Multi-valued fields go
// to Lists; read-only fields are included so the entry round-trips.
func (r *Record) Entry() *routeros.Entry {
	e := routeros.NewEntry()
	names := make([]string, 0, len(r.values))
	for k := range r.values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		f, ok := r.desc.Field(name)
		if !ok {
			continue
		}
		v := r.values[name]
		if m, ok := f.Codec.(value.Multi); ok {
			e.Append(name, m.ElementsAny(v)...)
			continue
		}
		e.Set(name, f.Codec.EncodeAny(v))
	}
	return e
}
