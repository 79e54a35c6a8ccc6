package reconcile

import (
	"github.com/honeybbq/rosreconcile/pkg/resource"
)

// Rename records that a provided reference value changed.
type Rename struct {
	Kind resource.ReferenceKind
	Old  string
	New  string
}

// RewriteReferences applies every rename, in order, to every entity and
// returns how many entities changed. It must run over the whole target
// graph before diffs are computed, otherwise mutations would point at a
// name that no longer exists.
func RewriteReferences[T resource.FieldUpdateHandler](entities []T, renames []Rename) int {
	changed := 0
	for _, e := range entities {
		touched := false
		for _, r := range renames {
			if r.Old == "" || r.Old == r.New {
				continue
			}
			if e.UpdateReference(r.Kind, r.Old, r.New) {
				touched = true
			}
		}
		if touched {
			changed++
		}
	}
	return changed
}

// DetectRenames compares two snapshots of the same target and reports every
// provided reference whose value changed for an entity with a stable
// identity. Entities without identity are skipped.
func DetectRenames[T resource.Resource, I comparable](before, after []T, identity func(T) (I, bool)) []Rename {
	prior := make(map[I]T, len(before))
	for _, b := range before {
		if id, ok := identity(b); ok {
			prior[id] = b
		}
	}

	var out []Rename
	seen := make(map[Rename]struct{})
	for _, a := range after {
		id, ok := identity(a)
		if !ok {
			continue
		}
		b, ok := prior[id]
		if !ok {
			continue
		}
		oldByKind := groupByKind(b.ProvidesReferences())
		newByKind := groupByKind(a.ProvidesReferences())
		for _, ref := range a.ProvidesReferences() {
			olds, news := oldByKind[ref.Kind], newByKind[ref.Kind]
			for i := range min(len(olds), len(news)) {
				if olds[i] == "" || news[i] == "" || olds[i] == news[i] {
					continue
				}
				r := Rename{Kind: ref.Kind, Old: olds[i], New: news[i]}
				if _, dup := seen[r]; dup {
					continue
				}
				seen[r] = struct{}{}
				out = append(out, r)
			}
		}
	}
	return out
}

func groupByKind(refs []resource.Reference) map[resource.ReferenceKind][]string {
	out := make(map[resource.ReferenceKind][]string, len(refs))
	for _, r := range refs {
		out[r.Kind] = append(out[r.Kind], r.Value)
	}
	return out
}
