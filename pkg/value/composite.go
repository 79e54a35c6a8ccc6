package value

import (
	"errors"
	"strconv"
	"strings"
)

// Hex parses 0x-prefixed hexadecimal numbers, as used for bridge and port
// priorities.
func Hex() Codec[uint64] {
	return New(
		func(s string) (uint64, error) {
			digits, ok := strings.CutPrefix(strings.ToLower(s), "0x")
			if !ok || digits == "" {
				return 0, errors.New("expected 0x prefix")
			}
			return strconv.ParseUint(digits, 16, 64)
		},
		func(v uint64) string { return "0x" + strconv.FormatUint(v, 16) },
	)
}

// Range is an inclusive span. A single value is a range with Start == End.
type Range[T comparable] struct {
	Start T
	End   T
}

type rangeCodec[T comparable] struct {
	base Codec[T]
}

// RangeOf parses "a-b" or a single "a".
func RangeOf[T comparable](base Codec[T]) Codec[Range[T]] {
	return rangeCodec[T]{base: base}
}

func (c rangeCodec[T]) Parse(text string) Result[Range[T]] {
	if text == "" {
		return AbsentResult[Range[T]]()
	}
	lo, hi, found := strings.Cut(text, "-")
	start := c.base.Parse(lo)
	if start.Outcome != Valid {
		return InvalidResult[Range[T]](text, "bad range start")
	}
	if !found {
		return ValidResult(Range[T]{Start: start.Value, End: start.Value})
	}
	end := c.base.Parse(hi)
	if end.Outcome != Valid {
		return InvalidResult[Range[T]](text, "bad range end")
	}
	return ValidResult(Range[T]{Start: start.Value, End: end.Value})
}

func (c rangeCodec[T]) Encode(v Range[T]) string {
	if v.Start == v.End {
		return c.base.Encode(v.Start)
	}
	return c.base.Encode(v.Start) + "-" + c.base.Encode(v.End)
}

// Pair holds two values written as "a/b", e.g. rx/tx limits.
type Pair[A, B any] struct {
	First  A
	Second B
}

type pairCodec[A, B any] struct {
	first  Codec[A]
	second Codec[B]
}

// PairOf parses "a/b" with independent codecs for each half.
func PairOf[A, B any](first Codec[A], second Codec[B]) Codec[Pair[A, B]] {
	return pairCodec[A, B]{first: first, second: second}
}

func (c pairCodec[A, B]) Parse(text string) Result[Pair[A, B]] {
	if text == "" {
		return AbsentResult[Pair[A, B]]()
	}
	a, b, ok := strings.Cut(text, "/")
	if !ok {
		return InvalidResult[Pair[A, B]](text, "expected a/b")
	}
	first := c.first.Parse(a)
	second := c.second.Parse(b)
	if first.Outcome != Valid || second.Outcome != Valid {
		return InvalidResult[Pair[A, B]](text, "bad pair element")
	}
	return ValidResult(Pair[A, B]{First: first.Value, Second: second.Value})
}

func (c pairCodec[A, B]) Encode(v Pair[A, B]) string {
	return c.first.Encode(v.First) + "/" + c.second.Encode(v.Second)
}

type listCodec[T any] struct {
	base Codec[T]
}

// List parses comma separated values. An empty element makes the whole
// token invalid.
func List[T any](base Codec[T]) Codec[[]T] {
	return listCodec[T]{base: base}
}

func (c listCodec[T]) Parse(text string) Result[[]T] {
	if text == "" {
		return AbsentResult[[]T]()
	}
	parts := strings.Split(text, ",")
	out := make([]T, 0, len(parts))
	for _, p := range parts {
		r := c.base.Parse(p)
		if r.Outcome != Valid {
			return InvalidResult[[]T](text, "bad list element "+strconv.Quote(p))
		}
		out = append(out, r.Value)
	}
	return ValidResult(out)
}

func (c listCodec[T]) Encode(v []T) string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = c.base.Encode(e)
	}
	return strings.Join(parts, ",")
}
