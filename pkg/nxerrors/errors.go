package nxerrors

import (
	"errors"
	"fmt"
)

// Kind identifies the high level class of an error surfaced by rosreconcile.
type Kind string

const (
	// KindValidation indicates user supplied target data or a descriptor failed validation.
	KindValidation Kind = "validation"
	// KindParse indicates exported script text could not be parsed.
	KindParse Kind = "parse"
	// KindValueInvalid 表示线上 token 存在但无法解析，绝不能静默回退为默认值。
	KindValueInvalid Kind = "value-invalid"
	// KindMissingField indicates an entity could not be built because a required field is absent.
	KindMissingField Kind = "missing-field"
	// KindMutation indicates a mutation could not be computed for one entity.
	KindMutation Kind = "mutation"
	// KindDependency indicates the scheduler could not order the batch (cycle or missing provider).
	KindDependency Kind = "dependency"
	// KindTransport wraps device errors and traps passed through opaquely.
	KindTransport Kind = "transport"
	// KindRender indicates script emission failed.
	KindRender Kind = "render"
	// KindUnsupported 表示暂不支持的功能。
	KindUnsupported Kind = "unsupported"
	// KindInternal 表示未知或内部错误。
	KindInternal Kind = "internal"
)

// Error 包装底层错误并附加 Kind，方便调用方根据类型处理。
type Error struct {
	Kind Kind
	Err  error
}

// Error 实现 error 接口。
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap 允许 errors.Is/As 访问底层错误。
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New 创建指定 Kind 的错误。
func New(kind Kind, err error) error {
	if err == nil {
		err = errors.New(string(kind))
	}
	return &Error{Kind: kind, Err: err}
}

// Errorf is New with a formatted cause.
func Errorf(kind Kind, format string, args ...any) error {
	return New(kind, fmt.Errorf(format, args...))
}

// KindOf returns the kind of the outermost *Error in the chain, or "" when
// err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether any *Error in the chain has the given kind. Joined
// errors are searched too.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok && e.Kind == kind {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			if Is(inner, kind) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return Is(x.Unwrap(), kind)
	}
	return false
}

var (
	// ErrNotImplemented 统一指示功能尚未实现。
	ErrNotImplemented = errors.New("rosreconcile: not implemented")
)
