package routeros

import (
	"testing"

	openwrtv1 "github.com/honeybbq/netjson/gen/go/netjson/openwrt/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"

	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/resource"
	"github.com/honeybbq/rosreconcile/pkg/schema"
)

func TestRegistry(t *testing.T) {
	reg := Registry()
	assert.Equal(t, 21, reg.Len())
	for _, path := range []string{PathIdentity, PathBridgeVLAN, PathWireguardPeers, PathQueueSimple} {
		_, ok := reg.Lookup(path)
		assert.True(t, ok, path)
	}
	paths := reg.Paths()
	assert.Equal(t, PathIdentity, paths[0])
	assert.Equal(t, PathQueueSimple, paths[len(paths)-1])
}

// decodeAll runs every section through its descriptor.
func decodeAll(t *testing.T, doc *ast.Document) map[string][]*schema.Record {
	t.Helper()
	reg := Registry()
	out := make(map[string][]*schema.Record)
	for _, s := range doc.Sections {
		d, ok := reg.Lookup(s.Path)
		require.True(t, ok, s.Path)
		recs, warnings, err := schema.FromSection(d, s)
		require.NoError(t, err, s.Path)
		assert.Empty(t, warnings, s.Path)
		out[s.Path] = recs
	}
	return out
}

const openwrtJSON = `{
	"general": {"hostname": "core", "timezone": "UTC"},
	"ntp": {"enabled": true, "servers": ["pool.ntp.org"]},
	"dns_servers": ["1.1.1.1", "9.9.9.9"],
	"interfaces": [
		{
			"name": "wan",
			"type": "ethernet",
			"device": "ether1",
			"mtu": 1500,
			"addresses": [
				{"family": "ipv4", "proto": "static", "address": "203.0.113.2", "mask": 30, "gateway": "203.0.113.1"}
			]
		},
		{
			"name": "lan",
			"type": "bridge",
			"bridge_members": ["ether2", "ether3"],
			"vlan_filtering": [
				{"vlan": 10, "ports": [
					{"ifname": "ether2", "tagging": "u", "primary_vid": true},
					{"ifname": "ether3", "tagging": "t"}
				]}
			],
			"addresses": [
				{"family": "ipv4", "address": "192.168.88.1", "mask": 24},
				{"address": "fd00::1", "mask": 64}
			]
		},
		{
			"name": "wg0",
			"type": "wireguard",
			"wireguard": {"private_key": "secret", "listen_port": 51820}
		}
	],
	"routes": [
		{"destination": "10.0.0.0/8", "next": "192.168.88.254", "cost": 5},
		{"destination": "fd10::/64", "next": "fd00::2"}
	]
}`

func TestFromOpenWrt(t *testing.T) {
	var msg openwrtv1.OpenWrtConfig
	require.NoError(t, protojson.Unmarshal([]byte(openwrtJSON), &msg))

	doc, err := FromOpenWrt(&msg)
	require.NoError(t, err)

	recs := decodeAll(t, doc)

	identity := recs[PathIdentity]
	require.Len(t, identity, 1)
	name, _ := identity[0].Text("name")
	assert.Equal(t, "core", name)

	ntp, _ := recs[PathNTPClient][0].Text("enabled")
	assert.Equal(t, "yes", ntp)

	dns, _ := recs[PathDNS][0].Text("servers")
	assert.Equal(t, "1.1.1.1,9.9.9.9", dns)

	eth := recs[PathEthernet]
	require.Len(t, eth, 1)
	assert.Equal(t, schema.NewKey("ether1"), eth[0].KeyValue())
	assert.Contains(t, eth[0].ProvidesReferences(), resource.Reference{Kind: KindInterface, Value: "wan"})

	bridge := recs[PathBridge]
	require.Len(t, bridge, 1)
	vf, _ := bridge[0].Text("vlan-filtering")
	assert.Equal(t, "yes", vf)

	ports := recs[PathBridgePort]
	require.Len(t, ports, 2)
	pvid, _ := ports[0].Text("pvid")
	assert.Equal(t, "10", pvid)
	_, ok := ports[1].Text("pvid")
	assert.False(t, ok)

	vlans := recs[PathBridgeVLAN]
	require.Len(t, vlans, 1)
	tagged, _ := vlans[0].Text("tagged")
	assert.Equal(t, "lan,ether3", tagged)
	untagged, _ := vlans[0].Text("untagged")
	assert.Equal(t, "ether2", untagged)

	vif := recs[PathVLAN]
	require.Len(t, vif, 1)
	assert.Equal(t, schema.NewKey("lan.10"), vif[0].KeyValue())
	assert.Equal(t, []resource.Reference{{Kind: KindInterface, Value: "lan"}}, vif[0].ConsumesReferences())

	wg := recs[PathWireguard]
	require.Len(t, wg, 1)
	port, _ := wg[0].Text("listen-port")
	assert.Equal(t, "51820", port)

	assert.Len(t, recs[PathIPAddress], 2)
	assert.Len(t, recs[PathIPv6Address], 1)

	routes := recs[PathRoute]
	require.Len(t, routes, 2, "default route from the wan gateway plus one static route")
	assert.Equal(t, schema.NewKey("0.0.0.0/0", "203.0.113.1"), routes[0].KeyValue())
	distance, _ := routes[1].Text("distance")
	assert.Equal(t, "5", distance)
}

func TestFromOpenWrtErrors(t *testing.T) {
	_, err := FromOpenWrt(nil)
	assert.True(t, nxerrors.Is(err, nxerrors.KindValidation))

	_, err = FromOpenWrt(&openwrtv1.OpenWrtConfig{})
	assert.True(t, nxerrors.Is(err, nxerrors.KindRender))
}

const nativeYAML = `
/system identity:
  name: edge
/interface/bridge:
  - name: br-lan
    vlan-filtering: true
    comment: LAN bridge
/interface/bridge/port:
  - bridge: br-lan
    interface: ether2
  - bridge: br-lan
    interface: ether3
    pvid: 20
/interface/bridge/vlan:
  - bridge: br-lan
    vlan-ids: 20
    tagged: [br-lan, ether4]
/ip/pool:
  - name: lan
    ranges: [192.168.88.10-192.168.88.254]
/ip/dhcp-server:
  - name: lan
    interface: br-lan
    address-pool: lan
    lease-time: 1h
/queue/simple:
`

func TestLoadNative(t *testing.T) {
	doc, err := LoadNative([]byte(nativeYAML))
	require.NoError(t, err)

	paths := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		paths[i] = s.Path
	}
	assert.Equal(t, []string{
		PathIdentity, PathBridge, PathBridgePort, PathBridgeVLAN, PathIPPool, PathDHCPServer, PathQueueSimple,
	}, paths)

	recs := decodeAll(t, doc)
	vf, _ := recs[PathBridge][0].Text("vlan-filtering")
	assert.Equal(t, "yes", vf)
	assert.Len(t, recs[PathBridgePort], 2)
	assert.Empty(t, recs[PathQueueSimple])

	dhcp := recs[PathDHCPServer][0]
	assert.ElementsMatch(t, []resource.Reference{
		{Kind: KindInterface, Value: "br-lan"},
		{Kind: KindIPPool, Value: "lan"},
	}, dhcp.ConsumesReferences())

	tagged := recs[PathBridgeVLAN][0].ConsumesReferences()
	assert.Contains(t, tagged, resource.Reference{Kind: KindInterface, Value: "ether4"})
}

func TestLoadNativeErrors(t *testing.T) {
	for name, in := range map[string]string{
		"not a mapping": "- a\n- b\n",
		"scalar body":   "/ip/pool: nope\n",
		"nested":        "/ip/pool:\n  - name: x\n    ranges: {a: b}\n",
		"bad yaml":      "/ip/pool: [\n",
	} {
		_, err := LoadNative([]byte(in))
		assert.True(t, nxerrors.Is(err, nxerrors.KindValidation), name)
	}

	doc, err := LoadNative(nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Sections)
}
