package resource

import (
	"fmt"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

// Resource is the identity contract: where the entity lives and which
// reference values it defines or points at. Implementations may return
// empty values; helpers in this package filter them.
type Resource interface {
	Path() string
	ProvidesReferences() []Reference
	ConsumesReferences() []Reference
}

// Keyed extracts the key used to match target against current.
type Keyed[K comparable] interface {
	KeyName() string
	KeyValue() K
}

// Cfg computes field-level diffs between two versions of one entity type.
type Cfg[T any] interface {
	// ChangedValues returns the fields whose value differs from before.
	// An empty result means the update is a no-op.
	ChangedValues(before T) []KeyValuePair
	// Fields returns every configurable attribute that has a value.
	Fields() []KeyValuePair
}

// Locatable tells the mutation builders how the device finds a record.
type Locatable interface {
	Singleton() bool
	// Selector returns the key attributes of this entity's present identity.
	Selector() []KeyValuePair
}

// Updatable turns a diff against the current entity into a mutation.
type Updatable[T any] interface {
	CalculateUpdate(from T) (ResourceMutation, error)
}

// Creatable builds an Add mutation for an entity with no current
// counterpart. Types that cannot be created do not implement it, or return
// a mutation error.
type Creatable interface {
	CalculateCreate() (ResourceMutation, error)
}

// FieldUpdateHandler rewrites consumed references after a referenced key
// changed. It returns whether anything changed.
type FieldUpdateHandler interface {
	UpdateReference(kind ReferenceKind, old, next string) bool
}

// ReferenceChecker is optionally implemented by entities with consumed
// references that must not be empty.
type ReferenceChecker interface {
	CheckReferences() error
}

// Diffable is what Update needs from an entity type.
type Diffable[T any] interface {
	Resource
	Cfg[T]
	Locatable
}

// Describable is what Create and Remove need.
type Describable interface {
	Resource
	Locatable
	Fields() []KeyValuePair
}

// Update implements Updatable for any Diffable type. The selector is taken
// from the current entity, because the device locates the record by its
// present key even when the mutation renames it.
func Update[T Diffable[T]](self, from T) (ResourceMutation, error) {
	if err := checkReferences(self); err != nil {
		return ResourceMutation{}, err
	}
	op := Operation{Kind: UpdateSingle}
	if !self.Singleton() {
		op = Operation{Kind: UpdateByKey, Selector: from.Selector()}
	}
	return ResourceMutation{
		Path:      self.Path(),
		Operation: op,
		Fields:    self.ChangedValues(from),
		Depends:   NonEmpty(self.ConsumesReferences()),
		Provides:  NonEmpty(self.ProvidesReferences()),
	}, nil
}

// Create implements Creatable. With no baseline every configurable field is
// written. Singletons always exist on the device, so they get a set.
func Create(self Describable) (ResourceMutation, error) {
	if err := checkReferences(self); err != nil {
		return ResourceMutation{}, err
	}
	op := Operation{Kind: Add}
	if self.Singleton() {
		op = Operation{Kind: UpdateSingle}
	}
	return ResourceMutation{
		Path:      self.Path(),
		Operation: op,
		Fields:    self.Fields(),
		Depends:   NonEmpty(self.ConsumesReferences()),
		Provides:  NonEmpty(self.ProvidesReferences()),
	}, nil
}

// Remove builds a RemoveByKey mutation for a current entity.
func Remove(self Describable) (ResourceMutation, error) {
	if self.Singleton() {
		return ResourceMutation{}, nxerrors.New(nxerrors.KindMutation,
			fmt.Errorf("%s: singleton cannot be removed", self.Path()))
	}
	return ResourceMutation{
		Path:      self.Path(),
		Operation: Operation{Kind: RemoveByKey, Selector: self.Selector()},
	}, nil
}

func checkReferences(v any) error {
	if c, ok := v.(ReferenceChecker); ok {
		return c.CheckReferences()
	}
	return nil
}

// CombinedByCfg pairs a configurable entity with its device-reported status,
// keyed by the Cfg side.
type CombinedByCfg[K comparable, C Keyed[K], S any] struct {
	Cfg    C
	Status S
}

func (c CombinedByCfg[K, C, S]) KeyName() string { return c.Cfg.KeyName() }
func (c CombinedByCfg[K, C, S]) KeyValue() K     { return c.Cfg.KeyValue() }

// CombinedByStatus is keyed by the Status side, for entities whose
// identifying field is read-only.
type CombinedByStatus[K comparable, C any, S Keyed[K]] struct {
	Cfg    C
	Status S
}

func (c CombinedByStatus[K, C, S]) KeyName() string { return c.Status.KeyName() }
func (c CombinedByStatus[K, C, S]) KeyValue() K     { return c.Status.KeyValue() }
