// Package sync plans the reconciliation of a device towards a target
// document: it decodes both sides through the descriptor registry, diffs
// every collection, orders the resulting mutations and renders the script.
package sync

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tiendc/go-deepcopy"
	"golang.org/x/sync/errgroup"

	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/reconcile"
	"github.com/honeybbq/rosreconcile/pkg/renderer"
	"github.com/honeybbq/rosreconcile/pkg/renderer/script"
	"github.com/honeybbq/rosreconcile/pkg/resource"
	"github.com/honeybbq/rosreconcile/pkg/rosconfig"
	"github.com/honeybbq/rosreconcile/pkg/scheduler"
	"github.com/honeybbq/rosreconcile/pkg/schema"
)

// Planner turns a current and a target document into a ChangeSet.
type Planner struct {
	registry *schema.Registry
	log      zerolog.Logger
	orphans  reconcile.OrphanPolicy
	renames  []reconcile.Rename
	previous *ast.Document
	version  *semver.Version
	strict   bool
	tag      string
	assumed  resource.References
	workers  int
	renderer renderer.Renderer[[]resource.ResourceMutation]
}

// NewPlanner 创建 Planner。
func NewPlanner(registry *schema.Registry, opts ...Option) *Planner {
	p := &Planner{
		registry: registry,
		log:      zerolog.Nop(),
		workers:  runtime.GOMAXPROCS(0),
		renderer: script.NewPlainTextRenderer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// records holds the decoded collections of one document, by path.
type records map[string][]*schema.Record

func (r records) all() []*schema.Record {
	var out []*schema.Record
	for _, recs := range r {
		out = append(out, recs...)
	}
	return out
}

// outcome is the result of diffing one collection.
type outcome struct {
	muts    []resource.ResourceMutation
	errs    []error
	current []*schema.Record
	kept    []*schema.Record
	removed []*schema.Record
	summary Summary
}

// Plan computes the mutations that take current to target. A nil current
// document stands for an empty device.
//
// Per-record failures are collected in ChangeSet.Errors and the rest of the
// batch is still planned, unless the planner is strict. A batch that cannot
// be ordered fails as a whole.
func (p *Planner) Plan(ctx context.Context, current, target *ast.Document) (*ChangeSet, error) {
	if p.registry == nil {
		return nil, nxerrors.New(nxerrors.KindInternal, errors.New("planner has no registry"))
	}
	if target == nil {
		return nil, nxerrors.New(nxerrors.KindValidation, errors.New("target document is nil"))
	}
	if current == nil {
		current = &ast.Document{}
	}

	// The change set keeps its own copy of the target.
	snapshot := ast.Document{Files: target.Files}
	if err := deepcopy.Copy(&snapshot.Sections, target.Sections); err != nil {
		return nil, nxerrors.New(nxerrors.KindInternal, fmt.Errorf("clone target: %w", err))
	}

	cs := &ChangeSet{
		Base:   versioned(current),
		Target: versioned(&snapshot),
	}

	tgt, warnings, err := p.decode(&snapshot, true)
	cs.Warnings = append(cs.Warnings, warnings...)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	cur, warnings, err := p.decode(current, false)
	cs.Warnings = append(cs.Warnings, warnings...)
	if err != nil {
		return nil, fmt.Errorf("current: %w", err)
	}

	if p.version != nil {
		for _, rec := range tgt.all() {
			for _, field := range rec.Restrict(p.version) {
				cs.Warnings = append(cs.Warnings, fmt.Sprintf("%s: %s dropped, needs a newer RouterOS than %s", rec, field, p.version.Original()))
			}
		}
	}

	// Device owned records exist whether or not the export shows them; they
	// need to be present before renames are looked for.
	for _, d := range p.registry.Descriptors() {
		if !d.Addable && !d.Singleton && len(tgt[d.Path]) > 0 {
			cur[d.Path] = withDeviceDefaults(d, cur[d.Path], tgt[d.Path])
		}
	}

	renames, err := p.detectRenames(cur, tgt)
	if err != nil {
		return nil, err
	}
	if len(renames) > 0 {
		// The device follows a rename everywhere on its own, so the current
		// side is rewritten too and keys holding the old name still match.
		n := reconcile.RewriteReferences(tgt.all(), renames)
		m := reconcile.RewriteReferences(cur.all(), renames)
		p.log.Debug().Int("renames", len(renames)).Int("target", n).Int("current", m).Msg("references rewritten")
	}
	cs.Renames = renames

	descs := p.registry.Descriptors()
	results := make([]outcome, len(descs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, d := range descs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.reconcile(d, cur[d.Path], tgt[d.Path])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var muts []resource.ResourceMutation
	for i, res := range results {
		muts = append(muts, res.muts...)
		cs.Errors = append(cs.Errors, res.errs...)
		cs.Summary.add(res.summary)
		if res.summary != (Summary{}) {
			cs.Collections = append(cs.Collections, CollectionSummary{Path: descs[i].Path, Summary: res.summary})
		}
		p.log.Debug().
			Str("path", descs[i].Path).
			Int("added", res.summary.Added).
			Int("updated", res.summary.Updated).
			Int("removed", res.summary.Removed).
			Int("errors", len(res.errs)).
			Msg("collection diffed")
	}
	seed := p.seed(results, muts)

	if p.strict && len(cs.Errors) > 0 {
		return nil, fmt.Errorf("%d record(s) failed: %w", len(cs.Errors), errors.Join(cs.Errors...))
	}

	ordered, err := scheduler.SortMutationsFrom(seed, muts)
	if err != nil {
		return nil, err
	}
	cs.Mutations = ordered
	cs.Seed = seed

	opts := rosconfig.RenderOptions{GenerationTag: p.tag}
	if p.version != nil {
		opts.DeviceVersion = p.version.Original()
	}
	bundle, err := p.renderer.Render(ctx, ordered, opts)
	if err != nil {
		return nil, err
	}
	if err := script.AttachFiles(bundle, snapshot.Files); err != nil {
		return nil, err
	}
	cs.Bundle = bundle
	if pkg, ok := bundle.Package(script.PackageName); ok {
		cs.Script = pkg.Content
	}
	cs.Checksum = checksum(cs.Script)
	bundle.Metadata.Custom["checksum"] = cs.Checksum

	for _, w := range cs.Warnings {
		p.log.Warn().Msg(w)
	}
	for _, e := range cs.Errors {
		p.log.Error().Err(e).Msg("record skipped")
	}
	p.log.Info().
		Int("added", cs.Summary.Added).
		Int("updated", cs.Summary.Updated).
		Int("unchanged", cs.Summary.Unchanged).
		Int("removed", cs.Summary.Removed).
		Int("orphaned", cs.Summary.Orphaned).
		Str("checksum", cs.Checksum).
		Msg("plan ready")
	return cs, nil
}

// seed computes the references live on the device before the batch runs:
// assumed ones, those current records consume (the device only holds
// resolvable references) and those provided by orphans left in place.
// Anything a changing mutation provides or a removal takes away is left
// out, so consumers wait for it.
func (p *Planner) seed(results []outcome, muts []resource.ResourceMutation) []resource.Reference {
	live := slices.Clone(p.assumed)
	var gone resource.References
	for _, res := range results {
		for _, rec := range res.current {
			for _, ref := range rec.ConsumesReferences() {
				live = live.Add(ref)
			}
		}
		for _, rec := range res.kept {
			for _, ref := range rec.ProvidesReferences() {
				live = live.Add(ref)
			}
		}
		for _, rec := range res.removed {
			for _, ref := range rec.ProvidesReferences() {
				gone = gone.Add(ref)
			}
		}
	}
	for _, m := range muts {
		if m.Empty() {
			continue
		}
		for _, ref := range m.Provides {
			gone = gone.Add(ref)
		}
	}
	return slices.DeleteFunc(live, gone.Contains)
}

func versioned(doc *ast.Document) *VersionedConfig {
	return &VersionedConfig{
		VersionID: uuid.NewString(),
		Checksum:  documentChecksum(doc),
		Timestamp: time.Now().UTC(),
		Document:  doc,
	}
}

// decode runs every section through its descriptor. Unknown paths fail a
// target but are skipped on the device side, where exports carry far more
// menus than the registry manages.
func (p *Planner) decode(doc *ast.Document, strictPaths bool) (records, []string, error) {
	out := make(records)
	var warnings []string
	for _, s := range doc.Sections {
		if s == nil {
			continue
		}
		d, ok := p.registry.Lookup(s.Path)
		if !ok {
			if strictPaths {
				return nil, warnings, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("unknown menu path %s", s.Path))
			}
			p.log.Debug().Str("path", s.Path).Msg("unmanaged path skipped")
			continue
		}
		recs, w, err := schema.FromSection(d, s)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, err
		}
		if d.IdentityField != "" {
			for _, rec := range recs {
				rec.DefaultFromIdentity()
			}
		}
		out[d.Path] = append(out[d.Path], recs...)
	}
	return out, warnings, nil
}

// detectRenames gathers explicit renames plus those visible through
// identity fields, against the previous target and against the device.
func (p *Planner) detectRenames(cur, tgt records) ([]reconcile.Rename, error) {
	renames := slices.Clone(p.renames)
	var prev records
	if p.previous != nil {
		var err error
		if prev, _, err = p.decode(p.previous, true); err != nil {
			return nil, fmt.Errorf("previous target: %w", err)
		}
	}
	identity := (*schema.Record).Identity
	for _, d := range p.registry.Descriptors() {
		if d.IdentityField == "" {
			continue
		}
		if prev != nil {
			renames = appendRenames(renames, reconcile.DetectRenames(prev[d.Path], tgt[d.Path], identity))
		}
		renames = appendRenames(renames, reconcile.DetectRenames(cur[d.Path], tgt[d.Path], identity))
	}
	return renames, nil
}

func appendRenames(dst, src []reconcile.Rename) []reconcile.Rename {
	for _, r := range src {
		if !slices.Contains(dst, r) {
			dst = append(dst, r)
		}
	}
	return dst
}

// reconcile diffs one collection.
func (p *Planner) reconcile(d *schema.Descriptor, current, target []*schema.Record) outcome {
	var out outcome
	out.current = current

	pairing := reconcile.MatchUpdatesByKey[schema.Key](current, slices.Values(target))
	muts, errs := reconcile.GenerateUpdates(pairing)
	out.errs = errs
	for i, m := range muts {
		switch {
		case m.Operation.Kind == resource.Add:
			out.summary.Added++
		case m.Empty():
			// Already on the device as it should be, so it waits on
			// nothing and only announces what it provides.
			muts[i].Depends = nil
			out.summary.Unchanged++
		default:
			out.summary.Updated++
		}
	}
	out.muts = muts

	if len(pairing.Orphaned) == 0 {
		return out
	}
	if p.orphans != reconcile.OrphanRemove || !d.Addable {
		out.kept = pairing.Orphaned
		out.summary.Orphaned = len(pairing.Orphaned)
		return out
	}
	removals, errs := reconcile.RemoveOrphans(pairing)
	out.removed = pairing.Orphaned
	out.muts = append(out.muts, removals...)
	out.errs = append(out.errs, errs...)
	out.summary.Removed = len(removals)
	return out
}

// withDeviceDefaults adds a current record for every target record of a
// device owned collection the current side does not show. It carries the
// key and the default name. Such records always exist, so they are updated
// in place instead of added.
func withDeviceDefaults(d *schema.Descriptor, current, target []*schema.Record) []*schema.Record {
	have := make(map[schema.Key]struct{}, len(current))
	for _, c := range current {
		have[c.KeyValue()] = struct{}{}
	}
	out := slices.Clone(current)
	for _, t := range target {
		k := t.KeyValue()
		if _, ok := have[k]; ok {
			continue
		}
		rec := schema.NewRecord(d)
		ok := true
		for _, f := range d.KeyFields() {
			text, _ := t.Text(f.Name)
			if err := rec.Set(f.Name, text); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		rec.DefaultFromIdentity()
		have[k] = struct{}{}
		out = append(out, rec)
	}
	return out
}
