package value

import (
	"fmt"
	"slices"
)

// Field is a type-erased codec used by descriptor-driven entities. Values
// travel as any but are always of the concrete type the codec produces.
type Field interface {
	ParseAny(text string) Result[any]
	EncodeAny(v any) string
	EqualAny(a, b any) bool
}

// Multi is implemented by set-valued fields.
type Multi interface {
	Field
	// ElementsAny returns the encoded elements of v.
	ElementsAny(v any) []string
	// ReplaceAny removes every element encoding to old and inserts next.
	// The second result reports whether old was present.
	ReplaceAny(v any, old, next string) (any, bool)
}

type erased[T comparable] struct {
	c Codec[T]
}

// Erase adapts a codec of a comparable type.
func Erase[T comparable](c Codec[T]) Field {
	return erased[T]{c: c}
}

func (f erased[T]) ParseAny(text string) Result[any] {
	return toAny(f.c.Parse(text))
}

func (f erased[T]) EncodeAny(v any) string {
	t, ok := v.(T)
	if !ok {
		return fmt.Sprint(v)
	}
	return f.c.Encode(t)
}

func (f erased[T]) EqualAny(a, b any) bool {
	ta, okA := a.(T)
	tb, okB := b.(T)
	return okA && okB && ta == tb
}

type erasedList[T comparable] struct {
	base Codec[T]
	list Codec[[]T]
}

// ListField erases a comma separated list of T. Equality ignores order and
// duplicates.
func ListField[T comparable](base Codec[T]) Multi {
	return erasedList[T]{base: base, list: List(base)}
}

func (f erasedList[T]) ParseAny(text string) Result[any] {
	r := f.list.Parse(text)
	if r.Outcome == Valid {
		r.Value = dedupe(r.Value)
	}
	return toAny(r)
}

func (f erasedList[T]) EncodeAny(v any) string {
	t, ok := v.([]T)
	if !ok {
		return fmt.Sprint(v)
	}
	return f.list.Encode(t)
}

func (f erasedList[T]) EqualAny(a, b any) bool {
	ta, okA := a.([]T)
	tb, okB := b.([]T)
	if !okA || !okB {
		return false
	}
	for _, e := range ta {
		if !slices.Contains(tb, e) {
			return false
		}
	}
	for _, e := range tb {
		if !slices.Contains(ta, e) {
			return false
		}
	}
	return true
}

func (f erasedList[T]) ElementsAny(v any) []string {
	t, ok := v.([]T)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(t))
	for _, e := range t {
		out = append(out, f.base.Encode(e))
	}
	return out
}

func (f erasedList[T]) ReplaceAny(v any, old, next string) (any, bool) {
	t, ok := v.([]T)
	if !ok {
		return v, false
	}
	replacement := f.base.Parse(next)
	out := make([]T, 0, len(t))
	found := false
	for _, e := range t {
		if f.base.Encode(e) == old {
			found = true
			continue
		}
		out = append(out, e)
	}
	if !found {
		return v, false
	}
	if replacement.Outcome == Valid && !slices.Contains(out, replacement.Value) {
		out = append(out, replacement.Value)
	}
	return out, true
}

func dedupe[T comparable](in []T) []T {
	out := in[:0:0]
	for _, e := range in {
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}

func toAny[T any](r Result[T]) Result[any] {
	out := Result[any]{Outcome: r.Outcome, Err: r.Err}
	if r.Outcome == Valid {
		out.Value = r.Value
	}
	return out
}
