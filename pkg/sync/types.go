package sync

import (
	"time"

	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/reconcile"
	"github.com/honeybbq/rosreconcile/pkg/resource"
	"github.com/honeybbq/rosreconcile/pkg/rosconfig"
	"github.com/honeybbq/rosreconcile/pkg/scheduler"
)

// VersionedConfig 记录配置版本元数据。
type VersionedConfig struct {
	VersionID string
	Checksum  string
	Timestamp time.Time
	Document  *ast.Document
}

// Summary counts what a plan does to the device.
type Summary struct {
	Added     int
	Updated   int
	Unchanged int
	Removed   int
	// Orphaned counts current records absent from the target that stay on
	// the device.
	Orphaned int
}

func (s *Summary) add(o Summary) {
	s.Added += o.Added
	s.Updated += o.Updated
	s.Unchanged += o.Unchanged
	s.Removed += o.Removed
	s.Orphaned += o.Orphaned
}

// CollectionSummary is the Summary of one menu path.
type CollectionSummary struct {
	Path string
	Summary
}

// ChangeSet 描述一次对账的结果。
type ChangeSet struct {
	Base   *VersionedConfig
	Target *VersionedConfig

	// Mutations are in execution order, including the empty ones that only
	// carry references.
	Mutations []resource.ResourceMutation
	// Seed holds references already live on the device before the plan
	// runs.
	Seed []resource.Reference

	Bundle *rosconfig.Bundle
	Script []byte
	// Checksum identifies Script.
	Checksum string

	Summary     Summary
	Collections []CollectionSummary
	Renames     []reconcile.Rename

	Warnings []string
	// Errors are per-item failures. The affected records are left out of
	// Mutations; everything else is still planned.
	Errors []error
}

// Empty reports whether applying the plan would change nothing.
func (cs *ChangeSet) Empty() bool {
	for _, m := range cs.Mutations {
		if !m.Empty() {
			return false
		}
	}
	return true
}

// Graph returns the dependency graph of the planned mutations.
func (cs *ChangeSet) Graph() (scheduler.Graph, error) {
	return scheduler.BuildGraph(cs.Seed, cs.Mutations)
}
