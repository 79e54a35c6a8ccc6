package reconcile

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/resource"
)

const (
	kindInterface resource.ReferenceKind = "interface"
)

// iface is keyed by its default name and renamed through name.
type iface struct {
	defaultName string
	name        string
	comment     string
}

func (i *iface) Path() string { return "/interface/ethernet" }
func (i *iface) ProvidesReferences() []resource.Reference {
	return []resource.Reference{{Kind: kindInterface, Value: i.name}}
}
func (i *iface) ConsumesReferences() []resource.Reference { return nil }
func (i *iface) KeyName() string                          { return "default-name" }
func (i *iface) KeyValue() string                         { return i.defaultName }
func (i *iface) Singleton() bool                          { return false }
func (i *iface) Selector() []resource.KeyValuePair {
	return []resource.KeyValuePair{{Key: "default-name", Value: i.defaultName}}
}

func (i *iface) ChangedValues(before *iface) []resource.KeyValuePair {
	var out []resource.KeyValuePair
	if i.name != before.name {
		out = append(out, resource.KeyValuePair{Key: "name", Value: i.name})
	}
	if i.comment != before.comment {
		out = append(out, resource.KeyValuePair{Key: "comment", Value: i.comment})
	}
	return out
}

func (i *iface) Fields() []resource.KeyValuePair {
	return []resource.KeyValuePair{{Key: "name", Value: i.name}, {Key: "comment", Value: i.comment}}
}

func (i *iface) CalculateUpdate(from *iface) (resource.ResourceMutation, error) {
	return resource.Update(i, from)
}

// member consumes an interface name; it is creatable.
type member struct {
	list string
	name string
}

func (m *member) Path() string                           { return "/interface/list/member" }
func (m *member) ProvidesReferences() []resource.Reference { return nil }
func (m *member) ConsumesReferences() []resource.Reference {
	return []resource.Reference{{Kind: kindInterface, Value: m.name}}
}
func (m *member) KeyName() string  { return "list,interface" }
func (m *member) KeyValue() string { return m.list + "|" + m.name }
func (m *member) Singleton() bool  { return false }
func (m *member) Selector() []resource.KeyValuePair {
	return []resource.KeyValuePair{{Key: "list", Value: m.list}, {Key: "interface", Value: m.name}}
}
func (m *member) ChangedValues(*member) []resource.KeyValuePair { return nil }
func (m *member) Fields() []resource.KeyValuePair {
	return []resource.KeyValuePair{{Key: "list", Value: m.list}, {Key: "interface", Value: m.name}}
}
func (m *member) CalculateUpdate(from *member) (resource.ResourceMutation, error) {
	return resource.Update(m, from)
}
func (m *member) CalculateCreate() (resource.ResourceMutation, error) { return resource.Create(m) }

func (m *member) UpdateReference(kind resource.ReferenceKind, old, next string) bool {
	if kind != kindInterface || m.name != old {
		return false
	}
	m.name = next
	return true
}

func TestMatchPartition(t *testing.T) {
	current := []*iface{
		{defaultName: "ether1", name: "ether1"},
		{defaultName: "ether2", name: "ether2"},
		{defaultName: "ether3", name: "ether3"},
	}
	target := []*iface{
		{defaultName: "ether3", name: "lan"},
		{defaultName: "ether9", name: "ether9"},
		{defaultName: "ether1", name: "wan"},
	}

	p := MatchUpdatesByKey[string](current, slices.Values(target))
	require.Len(t, p.Matched, 2)
	assert.Equal(t, "lan", p.Matched[0].Target.name)
	assert.Equal(t, "ether3", p.Matched[0].Current.name)
	assert.Equal(t, "wan", p.Matched[1].Target.name)
	require.Len(t, p.NewEntries, 1)
	assert.Equal(t, "ether9", p.NewEntries[0].defaultName)
	require.Len(t, p.Orphaned, 1)
	assert.Equal(t, "ether2", p.Orphaned[0].defaultName)

	assert.Equal(t, len(target), len(p.Matched)+len(p.NewEntries))
	assert.Equal(t, len(current), len(p.Matched)+len(p.Orphaned))
}

func TestMatchDuplicateCurrentKey(t *testing.T) {
	current := []*iface{
		{defaultName: "ether1", name: "a"},
		{defaultName: "ether1", name: "b"},
	}
	p := MatchUpdatesByKey[string](current, slices.Values([]*iface{{defaultName: "ether1", name: "a"}}))
	require.Len(t, p.Matched, 1)
	assert.Equal(t, "a", p.Matched[0].Current.name)
	require.Len(t, p.Orphaned, 1)
	assert.Equal(t, "b", p.Orphaned[0].name)
}

func TestGenerateUpdatesIdempotent(t *testing.T) {
	current := []*iface{{defaultName: "ether1", name: "ether1", comment: "uplink"}}
	target := []*iface{{defaultName: "ether1", name: "ether1", comment: "uplink"}}

	muts, err := GenerateUpdatesOrError(MatchUpdatesByKey[string](current, slices.Values(target)))
	require.NoError(t, err)
	require.Len(t, muts, 1)
	assert.True(t, muts[0].Empty())
	assert.Equal(t, resource.References{{Kind: kindInterface, Value: "ether1"}}, muts[0].Provides)
}

func TestGenerateUpdatesCreateUnsupported(t *testing.T) {
	p := MatchUpdatesByKey[string](nil, slices.Values([]*iface{{defaultName: "ether5", name: "ether5"}}))
	muts, errs := GenerateUpdates(p)
	assert.Empty(t, muts)
	require.Len(t, errs, 1)
	assert.True(t, nxerrors.Is(errs[0], nxerrors.KindMutation))
}

// Renaming ether1 to ether2 must carry the list member along, and the update
// must still locate the record by its current name.
func TestRenameRewritesConsumers(t *testing.T) {
	current := []*iface{{defaultName: "ether1", name: "ether1"}}
	target := []*iface{{defaultName: "ether1", name: "ether2"}}
	members := []*member{{list: "LAN", name: "ether1"}}

	renames := DetectRenames(
		[]*iface{{defaultName: "ether1", name: "ether1"}},
		target,
		func(i *iface) (string, bool) { return i.defaultName, i.defaultName != "" },
	)
	require.Equal(t, []Rename{{Kind: kindInterface, Old: "ether1", New: "ether2"}}, renames)

	assert.Equal(t, 1, RewriteReferences(members, renames))
	assert.Equal(t, "ether2", members[0].name)

	muts, err := GenerateUpdatesOrError(MatchUpdatesByKey[string](current, slices.Values(target)))
	require.NoError(t, err)
	require.Len(t, muts, 1)
	assert.Equal(t, "set-by-key[default-name=ether1]", muts[0].Operation.String())
	assert.Equal(t, []resource.KeyValuePair{{Key: "name", Value: "ether2"}}, muts[0].Fields)

	created, err := GenerateUpdatesOrError(MatchUpdatesByKey[string](nil, slices.Values(members)))
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, resource.References{{Kind: kindInterface, Value: "ether2"}}, created[0].Depends)
}

func TestRewriteReferencesSkipsNoop(t *testing.T) {
	members := []*member{{list: "LAN", name: "ether1"}, {list: "WAN", name: "ether3"}}
	n := RewriteReferences(members, []Rename{
		{Kind: kindInterface, Old: "ether1", New: "ether1"},
		{Kind: kindInterface, Old: "ether3", New: "sfp1"},
		{Kind: "bridge", Old: "ether1", New: "br0"},
	})
	assert.Equal(t, 1, n)
	assert.Equal(t, "ether1", members[0].name)
	assert.Equal(t, "sfp1", members[1].name)
}

func TestRemoveOrphans(t *testing.T) {
	p := MatchUpdatesByKey[string](
		[]*member{{list: "LAN", name: "ether1"}, {list: "LAN", name: "ether2"}},
		slices.Values([]*member{{list: "LAN", name: "ether1"}}),
	)
	muts, errs := RemoveOrphans(p)
	require.Empty(t, errs)
	require.Len(t, muts, 1)
	assert.Equal(t, resource.RemoveByKey, muts[0].Operation.Kind)
	assert.True(t, strings.HasSuffix(muts[0].String(), "[list=LAN interface=ether2]"))
	assert.Empty(t, muts[0].Depends)
}

func TestParseOrphanPolicy(t *testing.T) {
	p, err := ParseOrphanPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OrphanIgnore, p)

	p, err = ParseOrphanPolicy("remove")
	require.NoError(t, err)
	assert.Equal(t, "remove", p.String())

	_, err = ParseOrphanPolicy("purge")
	assert.True(t, nxerrors.Is(err, nxerrors.KindValidation))
}
