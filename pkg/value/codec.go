// Package value parses and encodes scalar field values to and from the
// device's textual wire tokens.
//
// Every codec distinguishes three outcomes: the token was absent (a
// legitimate default), the token parsed, or the token was present but
// could not be parsed. The last case is a schema or firmware mismatch and
// must be surfaced to the caller; it is never turned into a default.
//
// Sentinel wrappers (Auto, None, Unlimited, Disabled) and the Hex, Range,
// Pair and List combinators layer extra accepted tokens around a base codec.
package value

import (
	"fmt"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

// Outcome classifies the result of parsing one wire token.
type Outcome uint8

const (
	// Absent means the token was missing or empty.
	Absent Outcome = iota
	// Valid means the token parsed into a value.
	Valid
	// Invalid means the token was present but unparsable.
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Absent:
		return "absent"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Result is the outcome of Codec.Parse.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Err     error
}

// Get returns the parsed value and whether the result is Valid.
func (r Result[T]) Get() (T, bool) {
	return r.Value, r.Outcome == Valid
}

// AbsentResult reports a missing token.
func AbsentResult[T any]() Result[T] {
	return Result[T]{Outcome: Absent}
}

// ValidResult wraps a parsed value.
func ValidResult[T any](v T) Result[T] {
	return Result[T]{Outcome: Valid, Value: v}
}

// InvalidResult reports an unparsable token.
func InvalidResult[T any](token, reason string) Result[T] {
	return Result[T]{
		Outcome: Invalid,
		Err:     nxerrors.New(nxerrors.KindValueInvalid, &InvalidValueError{Token: token, Reason: reason}),
	}
}

// InvalidValueError describes a present but unparsable token.
type InvalidValueError struct {
	Token  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid token %q: %s", e.Token, e.Reason)
}

// Codec converts between a typed value and its wire token.
type Codec[T any] interface {
	Parse(text string) Result[T]
	Encode(v T) string
}

type funcCodec[T any] struct {
	parse  func(string) (T, error)
	encode func(T) string
}

// New builds a codec from a parse and an encode function. Empty text is
// always Absent; a parse error makes the result Invalid.
func New[T any](parse func(string) (T, error), encode func(T) string) Codec[T] {
	return funcCodec[T]{parse: parse, encode: encode}
}

func (c funcCodec[T]) Parse(text string) Result[T] {
	if text == "" {
		return AbsentResult[T]()
	}
	v, err := c.parse(text)
	if err != nil {
		return InvalidResult[T](text, err.Error())
	}
	return ValidResult(v)
}

func (c funcCodec[T]) Encode(v T) string {
	return c.encode(v)
}

// MustParse parses text and panics unless the result is Valid. Intended for
// tests and static tables.
func MustParse[T any](c Codec[T], text string) T {
	r := c.Parse(text)
	if r.Outcome != Valid {
		panic(fmt.Sprintf("value: parse %q: %s %v", text, r.Outcome, r.Err))
	}
	return r.Value
}
