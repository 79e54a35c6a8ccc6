package resource

import (
	"fmt"
	"sort"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

// AppendStatus is the outcome of feeding one wire field to a Builder.
type AppendStatus uint8

const (
	// Appended means the field was accepted.
	Appended AppendStatus = iota
	// UnknownField means the builder has no such attribute.
	UnknownField
	// InvalidValue means the attribute exists but the token did not parse.
	InvalidValue
)

// AppendResult reports the outcome for one field.
type AppendResult struct {
	Status AppendStatus
	Field  string
	Err    error
}

// Builder accumulates wire fields into an entity.
type Builder[T any] interface {
	AppendField(key, value string) AppendResult
	Build() (T, error)
}

// MissingFieldError reports a required field absent at Build time.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Path, e.Field)
}

// Decode feeds one row to b in sorted attribute order and builds the
// entity. Unknown attributes become warnings; an invalid value aborts the
// row with a value-invalid error.
func Decode[T any](b Builder[T], row map[string]string) (T, []string, error) {
	var zero T
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var warnings []string
	for _, k := range keys {
		res := b.AppendField(k, row[k])
		switch res.Status {
		case UnknownField:
			warnings = append(warnings, fmt.Sprintf("unknown field %q", k))
		case InvalidValue:
			err := res.Err
			if err == nil {
				err = fmt.Errorf("field %q: invalid value %q", res.Field, row[k])
			}
			if nxerrors.KindOf(err) == "" {
				err = nxerrors.New(nxerrors.KindValueInvalid, err)
			}
			return zero, warnings, err
		}
	}
	v, err := b.Build()
	if err != nil {
		return zero, warnings, err
	}
	return v, warnings, nil
}
