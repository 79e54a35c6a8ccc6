package sync

import (
	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/reconcile"
	"github.com/honeybbq/rosreconcile/pkg/resource"
)

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Planner) { p.log = log }
}

// WithOrphanPolicy decides whether orphans are removed.
func WithOrphanPolicy(policy reconcile.OrphanPolicy) Option {
	return func(p *Planner) { p.orphans = policy }
}

// WithRenames adds explicit renames applied to the target before diffing.
func WithRenames(renames ...reconcile.Rename) Option {
	return func(p *Planner) { p.renames = append(p.renames, renames...) }
}

// WithPreviousTarget enables rename detection against the target the
// device was last reconciled to.
func WithPreviousTarget(doc *ast.Document) Option {
	return func(p *Planner) { p.previous = doc }
}

// WithDeviceVersion drops target fields the device version does not know.
func WithDeviceVersion(v *semver.Version) Option {
	return func(p *Planner) { p.version = v }
}

// WithStrict makes Plan fail when any single record fails.
func WithStrict(strict bool) Option {
	return func(p *Planner) { p.strict = strict }
}

// WithGenerationTag sets the comment written at the top of the script.
func WithGenerationTag(tag string) Option {
	return func(p *Planner) { p.tag = tag }
}

// WithAssumed declares references that exist on the device even though the
// current document does not show them, e.g. ethernet ports never renamed
// and therefore missing from an export.
func WithAssumed(refs ...resource.Reference) Option {
	return func(p *Planner) {
		for _, r := range refs {
			p.assumed = p.assumed.Add(r)
		}
	}
}

// WithConcurrency bounds the number of collections diffed at once.
func WithConcurrency(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.workers = n
		}
	}
}
