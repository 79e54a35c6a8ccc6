package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeybbq/rosreconcile/domain/routeros"
	"github.com/honeybbq/rosreconcile/internal/config"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/resource"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadTargetNativeLayers(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "/interface/bridge:\n  - name: br0\n    mtu: 1500\n/system/identity:\n  name: core\n")
	site := writeFile(t, dir, "site.yaml", "/interface/bridge:\n  - name: br0\n    mtu: 9000\n  - name: br1\n")

	doc, err := loadTarget(context.Background(), config.FormatNative, []string{base, site}, "")
	require.NoError(t, err)

	bridges, ok := doc.Lookup(routeros.PathBridge)
	require.True(t, ok)
	require.Len(t, bridges.Entries, 2)
	assert.Equal(t, "9000", bridges.Entries[0].Options["mtu"])
	assert.Equal(t, "br1", bridges.Entries[1].Options["name"])

	identity, ok := doc.Lookup(routeros.PathIdentity)
	require.True(t, ok)
	assert.Equal(t, "core", identity.Entries[0].Options["name"])
}

func TestLoadTargetNetJSON(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", `{"general": {"hostname": "edge"}, "interfaces": [{"name": "lan", "type": "bridge", "bridge_members": ["ether2"]}]}`)
	site := writeFile(t, dir, "site.json", `{"general": {"hostname": "edge-2"}}`)

	doc, err := loadTarget(context.Background(), config.FormatNetJSONOpenWrt, []string{base, site}, "7.15")
	require.NoError(t, err)

	identity, ok := doc.Lookup(routeros.PathIdentity)
	require.True(t, ok)
	assert.Equal(t, "edge-2", identity.Entries[0].Options["name"])
	ports, ok := doc.Lookup(routeros.PathBridgePort)
	require.True(t, ok)
	assert.Len(t, ports.Entries, 1)

	_, err = loadTarget(context.Background(), "netjson-unknown", []string{base}, "")
	assert.Error(t, err)

	vpn := writeFile(t, dir, "vpn.json", `{"openvpn": [{"name": "bare"}]}`)
	_, err = loadTarget(context.Background(), config.FormatNetJSONOpenVPN, []string{vpn}, "")
	assert.True(t, nxerrors.Is(err, nxerrors.KindUnsupported))
	_, err = loadTarget(context.Background(), config.FormatNative, nil, "")
	assert.Error(t, err)
}

func TestLoadCurrent(t *testing.T) {
	doc, err := loadCurrent(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, doc)

	p := writeFile(t, t.TempDir(), "export.rsc", "/interface bridge\nadd name=br0\n/system script\nrun foo\n")
	doc, err = loadCurrent(context.Background(), p)
	require.NoError(t, err)
	bridges, ok := doc.Lookup(routeros.PathBridge)
	require.True(t, ok)
	assert.Len(t, bridges.Entries, 1)
}

func TestParseAssumed(t *testing.T) {
	refs, err := parseAssumed([]string{"interface:ether1", "ip-pool:dhcp"})
	require.NoError(t, err)
	assert.Equal(t, []resource.Reference{
		{Kind: routeros.KindInterface, Value: "ether1"},
		{Kind: routeros.KindIPPool, Value: "dhcp"},
	}, refs)

	_, err = parseAssumed([]string{"ether1"})
	assert.Error(t, err)
}

func TestRenames(t *testing.T) {
	out := renames([]config.Rename{{Kind: "interface", Old: "wan", New: "uplink"}})
	require.Len(t, out, 1)
	assert.Equal(t, routeros.KindInterface, out[0].Kind)
	assert.Equal(t, "uplink", out[0].New)
}
