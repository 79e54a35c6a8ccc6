// Package resource defines the contracts every reconcilable entity type
// implements, and the mutation descriptor they produce.
package resource

import (
	"fmt"
	"strings"
)

// KeyValuePair is one attribute name and its encoded wire value.
type KeyValuePair struct {
	Key   string
	Value string
}

func (p KeyValuePair) String() string {
	return p.Key + "=" + p.Value
}

// ReferenceKind names a relation shared across entity types, e.g.
// "interface" or "ip-pool".
type ReferenceKind string

// Reference is one (kind, value) edge endpoint.
type Reference struct {
	Kind  ReferenceKind
	Value string
}

func (r Reference) String() string {
	return string(r.Kind) + ":" + r.Value
}

// References is an insertion-ordered set of references.
type References []Reference

// Add appends r unless its value is empty or it is already present.
func (rs References) Add(r Reference) References {
	if r.Value == "" {
		return rs
	}
	for _, existing := range rs {
		if existing == r {
			return rs
		}
	}
	return append(rs, r)
}

// Contains reports whether r is in the set.
func (rs References) Contains(r Reference) bool {
	for _, existing := range rs {
		if existing == r {
			return true
		}
	}
	return false
}

// NonEmpty returns the deduplicated references with empty values dropped.
func NonEmpty(refs []Reference) References {
	var out References
	for _, r := range refs {
		out = out.Add(r)
	}
	return out
}

// OperationKind selects the statement a mutation renders to.
type OperationKind uint8

const (
	// Add creates a new record.
	Add OperationKind = iota
	// UpdateSingle sets fields on a process-wide singleton.
	UpdateSingle
	// UpdateByKey sets fields on the record found by its current key.
	UpdateByKey
	// RemoveByKey deletes the record found by its current key.
	RemoveByKey
)

func (k OperationKind) String() string {
	switch k {
	case Add:
		return "add"
	case UpdateSingle:
		return "set"
	case UpdateByKey:
		return "set-by-key"
	case RemoveByKey:
		return "remove"
	default:
		return fmt.Sprintf("operation(%d)", uint8(k))
	}
}

// Operation is the statement kind plus, for keyed operations, the selector
// used to locate the existing record.
type Operation struct {
	Kind     OperationKind
	Selector []KeyValuePair
}

func (o Operation) String() string {
	if len(o.Selector) == 0 {
		return o.Kind.String()
	}
	parts := make([]string, len(o.Selector))
	for i, p := range o.Selector {
		parts[i] = p.String()
	}
	return o.Kind.String() + "[" + strings.Join(parts, " ") + "]"
}

// ResourceMutation describes one add/update/remove with its field diff and
// dependency metadata.
type ResourceMutation struct {
	Path      string
	Operation Operation
	Fields    []KeyValuePair
	Depends   References
	Provides  References
}

// Empty reports whether the mutation writes nothing. Removals are never
// empty.
func (m ResourceMutation) Empty() bool {
	return m.Operation.Kind != RemoveByKey && len(m.Fields) == 0
}

func (m ResourceMutation) String() string {
	return m.Path + " " + m.Operation.String()
}
