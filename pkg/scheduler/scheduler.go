// Package scheduler orders a batch of mutations so that every mutation runs
// after the mutations providing the references it depends on.
package scheduler

import (
	"fmt"
	"strings"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/resource"
)

// Blocked is a mutation the scheduler could not place.
type Blocked struct {
	Index    int
	Mutation resource.ResourceMutation
	// Missing lists the dependencies still unsatisfied when progress stopped.
	Missing []resource.Reference
}

// DependencyError reports a batch that cannot be fully ordered, either
// because of a cycle or because some reference has no provider.
type DependencyError struct {
	Blocked []Blocked
	// Unprovided lists missing references no mutation in the batch provides.
	// Empty means every blocked mutation waits on another blocked one.
	Unprovided []resource.Reference
}

func (e *DependencyError) Error() string {
	parts := make([]string, len(e.Blocked))
	for i, b := range e.Blocked {
		missing := make([]string, len(b.Missing))
		for j, r := range b.Missing {
			missing[j] = r.String()
		}
		parts[i] = fmt.Sprintf("#%d %s waits on %s", b.Index, b.Mutation.String(), strings.Join(missing, ","))
	}
	reason := "dependency cycle detected"
	if len(e.Unprovided) > 0 {
		refs := make([]string, len(e.Unprovided))
		for i, r := range e.Unprovided {
			refs[i] = r.String()
		}
		reason = "no provider for " + strings.Join(refs, ",")
	}
	return reason + ": " + strings.Join(parts, "; ")
}

// SortMutations orders muts assuming nothing is provided up front.
func SortMutations(muts []resource.ResourceMutation) ([]resource.ResourceMutation, error) {
	return SortMutationsFrom(nil, muts)
}

// SortMutationsFrom orders muts in rounds. A round takes every pending
// mutation whose dependencies are all in the satisfied set as it stood when
// the round began, emits them in input order, and then adds what they
// provide. satisfied seeds references that already exist on the device.
// The output is all of muts or an error, never a prefix.
func SortMutationsFrom(satisfied []resource.Reference, muts []resource.ResourceMutation) ([]resource.ResourceMutation, error) {
	idx, err := order(satisfied, muts)
	if err != nil {
		return nil, err
	}
	out := make([]resource.ResourceMutation, len(idx))
	for i, j := range idx {
		out[i] = muts[j]
	}
	return out, nil
}

func order(seed []resource.Reference, muts []resource.ResourceMutation) ([]int, error) {
	have := make(map[resource.Reference]struct{}, len(seed))
	for _, r := range seed {
		have[r] = struct{}{}
	}

	pending := make([]int, len(muts))
	for i := range muts {
		pending[i] = i
	}
	out := make([]int, 0, len(muts))

	for len(pending) > 0 {
		var ready, waiting []int
		for _, idx := range pending {
			if satisfiedBy(have, muts[idx].Depends) {
				ready = append(ready, idx)
			} else {
				waiting = append(waiting, idx)
			}
		}
		if len(ready) == 0 {
			return nil, nxerrors.New(nxerrors.KindDependency, blockedError(have, muts, waiting))
		}
		for _, idx := range ready {
			out = append(out, idx)
			for _, r := range muts[idx].Provides {
				have[r] = struct{}{}
			}
		}
		pending = waiting
	}
	return out, nil
}

func satisfiedBy(have map[resource.Reference]struct{}, deps []resource.Reference) bool {
	for _, d := range deps {
		if d.Value == "" {
			continue
		}
		if _, ok := have[d]; !ok {
			return false
		}
	}
	return true
}

func blockedError(have map[resource.Reference]struct{}, muts []resource.ResourceMutation, waiting []int) *DependencyError {
	provided := make(map[resource.Reference]struct{})
	for _, idx := range waiting {
		for _, r := range muts[idx].Provides {
			provided[r] = struct{}{}
		}
	}

	e := &DependencyError{}
	var unprovided resource.References
	for _, idx := range waiting {
		b := Blocked{Index: idx, Mutation: muts[idx]}
		for _, d := range muts[idx].Depends {
			if _, ok := have[d]; ok || d.Value == "" {
				continue
			}
			b.Missing = append(b.Missing, d)
			if _, ok := provided[d]; !ok {
				unprovided = unprovided.Add(d)
			}
		}
		e.Blocked = append(e.Blocked, b)
	}
	e.Unprovided = unprovided
	return e
}
