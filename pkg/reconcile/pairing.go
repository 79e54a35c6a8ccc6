// Package reconcile matches target collections against current ones and
// turns the matches into mutations.
package reconcile

import (
	"errors"
	"fmt"
	"iter"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/resource"
)

// Pair is one current entity and the target entity sharing its key.
type Pair[T any] struct {
	Current T
	Target  T
}

// Pairing partitions one collection. Every target entity is either matched
// or new; every current entity is either matched or orphaned.
type Pairing[T any] struct {
	Matched    []Pair[T]
	NewEntries []T
	Orphaned   []T
}

// MatchUpdatesByKey pairs target against current by key. Orphans keep the
// order they had in current. If current holds a key twice, the first entry
// is matchable and the rest are orphans.
func MatchUpdatesByKey[K comparable, T resource.Keyed[K]](current []T, target iter.Seq[T]) Pairing[T] {
	pending := make(map[K]int, len(current))
	for i, c := range current {
		k := c.KeyValue()
		if _, dup := pending[k]; dup {
			continue
		}
		pending[k] = i
	}
	consumed := make(map[int]struct{}, len(pending))

	var out Pairing[T]
	for t := range target {
		idx, ok := pending[t.KeyValue()]
		if !ok {
			out.NewEntries = append(out.NewEntries, t)
			continue
		}
		delete(pending, t.KeyValue())
		consumed[idx] = struct{}{}
		out.Matched = append(out.Matched, Pair[T]{Current: current[idx], Target: t})
	}
	for i, c := range current {
		if _, ok := consumed[i]; ok {
			continue
		}
		out.Orphaned = append(out.Orphaned, c)
	}
	return out
}

// GenerateUpdates maps matched pairs through CalculateUpdate and new
// entries through CalculateCreate. Unchanged pairs still yield an empty
// mutation so their provided references reach the scheduler. Failures are
// reported per item and do not stop the rest of the batch.
func GenerateUpdates[T resource.Updatable[T]](p Pairing[T]) ([]resource.ResourceMutation, []error) {
	muts := make([]resource.ResourceMutation, 0, len(p.Matched)+len(p.NewEntries))
	var errs []error
	for _, pair := range p.Matched {
		m, err := pair.Target.CalculateUpdate(pair.Current)
		if err != nil {
			errs = append(errs, fmt.Errorf("update %s: %w", describe(pair.Target), err))
			continue
		}
		muts = append(muts, m)
	}
	for _, t := range p.NewEntries {
		c, ok := any(t).(resource.Creatable)
		if !ok {
			errs = append(errs, nxerrors.New(nxerrors.KindMutation,
				fmt.Errorf("create %s: collection does not support creation", describe(t))))
			continue
		}
		m, err := c.CalculateCreate()
		if err != nil {
			errs = append(errs, fmt.Errorf("create %s: %w", describe(t), err))
			continue
		}
		muts = append(muts, m)
	}
	return muts, errs
}

// GenerateUpdatesOrError is GenerateUpdates with the failures joined.
func GenerateUpdatesOrError[T resource.Updatable[T]](p Pairing[T]) ([]resource.ResourceMutation, error) {
	muts, errs := GenerateUpdates(p)
	return muts, errors.Join(errs...)
}

// OrphanPolicy decides what happens to current entities absent from the
// target. Removal is never the default.
type OrphanPolicy uint8

const (
	// OrphanIgnore leaves orphans on the device.
	OrphanIgnore OrphanPolicy = iota
	// OrphanRemove deletes orphans.
	OrphanRemove
)

func (p OrphanPolicy) String() string {
	if p == OrphanRemove {
		return "remove"
	}
	return "ignore"
}

// ParseOrphanPolicy accepts "ignore", "remove" and "".
func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch s {
	case "", "ignore":
		return OrphanIgnore, nil
	case "remove":
		return OrphanRemove, nil
	}
	return OrphanIgnore, nxerrors.Errorf(nxerrors.KindValidation, "unknown orphan policy %q", s)
}

// RemoveOrphans builds RemoveByKey mutations for every orphan. Callers opt
// into this explicitly.
func RemoveOrphans[T resource.Describable](p Pairing[T]) ([]resource.ResourceMutation, []error) {
	var (
		muts []resource.ResourceMutation
		errs []error
	)
	for _, o := range p.Orphaned {
		m, err := resource.Remove(o)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		muts = append(muts, m)
	}
	return muts, errs
}

func describe(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	if r, ok := v.(resource.Resource); ok {
		return r.Path()
	}
	return fmt.Sprintf("%T", v)
}
