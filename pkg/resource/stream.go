package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

// TrapMissingItem is the trap category the device reports when a menu or
// item does not exist, e.g. a feature package that is not installed.
const TrapMissingItem = "missing item or command"

// Row is one parsed record from the transport.
type Row[T any] struct {
	Value    T
	Warnings []string
}

// StreamError is a device-side error for the whole request.
type StreamError struct {
	Errors   []string
	Warnings []string
}

// Trap is an out-of-band device condition.
type Trap struct {
	Category string
	Message  string
}

// Event is one element of a transport stream. Exactly one field is set.
type Event[T any] struct {
	Row   *Row[T]
	Error *StreamError
	Trap  *Trap
}

// RowEvent wraps a parsed record.
func RowEvent[T any](v T, warnings ...string) Event[T] {
	return Event[T]{Row: &Row[T]{Value: v, Warnings: warnings}}
}

// ErrorEvent wraps a request error.
func ErrorEvent[T any](errs []string, warnings ...string) Event[T] {
	return Event[T]{Error: &StreamError{Errors: errs, Warnings: warnings}}
}

// TrapEvent wraps a trap.
func TrapEvent[T any](category, message string) Event[T] {
	return Event[T]{Trap: &Trap{Category: category, Message: message}}
}

// CollectOptions tunes Collect.
type CollectOptions struct {
	// Optional marks a collection that may not exist on the device. A
	// missing-item trap then yields an empty collection.
	Optional bool
}

// Collection is the drained content of one stream.
type Collection[T any] struct {
	Items    []T
	Warnings []string
	// Missing is set when an optional collection was reported absent.
	Missing bool
}

// Collect drains events until the channel closes or ctx is done. Device
// errors and traps are returned as transport errors, except the
// missing-item trap on an optional collection.
func Collect[T any](ctx context.Context, events <-chan Event[T], opts CollectOptions) (Collection[T], error) {
	var out Collection[T]
	for {
		select {
		case <-ctx.Done():
			return Collection[T]{}, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if out.Missing {
					out.Items = nil
				}
				return out, nil
			}
			switch {
			case ev.Row != nil:
				out.Warnings = append(out.Warnings, ev.Row.Warnings...)
				if !out.Missing {
					out.Items = append(out.Items, ev.Row.Value)
				}
			case ev.Error != nil:
				out.Warnings = append(out.Warnings, ev.Error.Warnings...)
				return out, nxerrors.New(nxerrors.KindTransport,
					fmt.Errorf("device error: %s", strings.Join(ev.Error.Errors, "; ")))
			case ev.Trap != nil:
				if opts.Optional && ev.Trap.Category == TrapMissingItem {
					out.Missing = true
					out.Items = nil
					continue
				}
				return out, nxerrors.New(nxerrors.KindTransport,
					fmt.Errorf("trap %s: %s", ev.Trap.Category, ev.Trap.Message))
			}
		}
	}
}
