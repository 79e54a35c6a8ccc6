package rosconfig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDeepMerge_SimpleValues(t *testing.T) {
	base := map[string]any{"name": "default", "time-zone-name": "UTC"}
	override := map[string]any{"name": "Router1"}

	result := deepMerge(base, override, DefaultIdentifiers)
	assert.Equal(t, "Router1", result["name"])
	assert.Equal(t, "UTC", result["time-zone-name"])
}

func TestDeepMerge_NestedDict(t *testing.T) {
	base := map[string]any{"/ip/dns": map[string]any{"servers": "1.1.1.1", "allow-remote-requests": true}}
	override := map[string]any{"/ip/dns": map[string]any{"servers": "9.9.9.9"}}

	result := deepMerge(base, override, DefaultIdentifiers)
	dns := result["/ip/dns"].(map[string]any)
	assert.Equal(t, "9.9.9.9", dns["servers"])
	assert.Equal(t, true, dns["allow-remote-requests"])
}

func TestMergeSlices_ByDefaultName(t *testing.T) {
	base := []any{map[string]any{"default-name": "ether1", "mtu": 1500, "comment": "uplink"}}
	override := []any{map[string]any{"default-name": "ether1", "mtu": 9000}}

	result := mergeSlices(base, override, DefaultIdentifiers)
	require.Len(t, result, 1)
	eth := result[0].(map[string]any)
	assert.Equal(t, 9000, eth["mtu"])
	assert.Equal(t, "uplink", eth["comment"])
}

func TestMergeSlices_DifferentNamesAndDuplicates(t *testing.T) {
	base := []any{map[string]any{"list": "LAN", "interface": "ether2"}}
	override := []any{
		map[string]any{"list": "LAN", "interface": "ether2"},
		map[string]any{"list": "LAN", "interface": "ether3"},
	}
	result := mergeSlices(base, override, DefaultIdentifiers)
	assert.Len(t, result, 2)
}

func TestMergeMapsDoesNotAlias(t *testing.T) {
	layer := map[string]any{"/interface/bridge": []any{map[string]any{"name": "br0"}}}
	merged, err := MergeMaps([]map[string]any{layer, {"/interface/bridge": []any{map[string]any{"name": "br0", "mtu": 1500}}}}, nil)
	require.NoError(t, err)

	bridges := merged["/interface/bridge"].([]any)
	require.Len(t, bridges, 1)
	assert.Equal(t, 1500, bridges[0].(map[string]any)["mtu"])

	orig := layer["/interface/bridge"].([]any)[0].(map[string]any)
	_, touched := orig["mtu"]
	assert.False(t, touched, "input layers must stay untouched")
}

func TestMergeJSON_Layers(t *testing.T) {
	global := []byte(`{"/interface/bridge": [{"name": "br0", "mtu": 1500, "comment": "base"}]}`)
	region := []byte(`{"/interface/bridge": [{"name": "br0", "comment": "eu"}], "/system/identity": {"name": "x"}}`)
	device := []byte(`{"/interface/bridge": [{"name": "br0", "mtu": 9000}, {"name": "br1"}]}`)

	merged, err := MergeJSON([][]byte{global, region, device}, DefaultIdentifiers)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(merged, &result))
	bridges := result["/interface/bridge"].([]any)
	require.Len(t, bridges, 2)
	br0 := bridges[0].(map[string]any)
	assert.Equal(t, float64(9000), br0["mtu"])
	assert.Equal(t, "eu", br0["comment"])
	assert.NotNil(t, result["/system/identity"])

	_, err = MergeJSON(nil, nil)
	assert.Error(t, err)
	_, err = MergeJSON([][]byte{[]byte("{")}, nil)
	assert.Error(t, err)
}

func TestMergeYAML(t *testing.T) {
	base := []byte("/ip/pool:\n  - name: dhcp\n    ranges: 192.168.88.10-192.168.88.254\n")
	site := []byte("/ip/pool:\n  - name: dhcp\n    ranges: 10.0.0.10-10.0.0.200\n  - name: guest\n")

	merged, err := MergeYAML([][]byte{base, site}, nil)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, yaml.Unmarshal(merged, &result))
	pools := result["/ip/pool"].([]any)
	require.Len(t, pools, 2)
	assert.Equal(t, "10.0.0.10-10.0.0.200", pools[0].(map[string]any)["ranges"])
}

func TestExtractIdentifier(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]any
		want any
	}{
		{name: "has name", m: map[string]any{"name": "wg0", "type": "wireguard"}, want: "wg0"},
		{name: "has default-name", m: map[string]any{"default-name": "ether1"}, want: "ether1"},
		{name: "has id", m: map[string]any{"id": float64(3)}, want: float64(3)},
		{name: "no identifier", m: map[string]any{"type": "something"}, want: nil},
		{name: "empty value", m: map[string]any{"name": ""}, want: nil},
		{name: "unhashable", m: map[string]any{"name": map[string]any{"x": 1}}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractIdentifier(tt.m, DefaultIdentifiers))
		})
	}
}
