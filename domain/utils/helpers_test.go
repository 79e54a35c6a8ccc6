package common

import (
	"testing"

	openwrtv1 "github.com/honeybbq/netjson/gen/go/netjson/openwrt/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"

	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
)

func TestSetters(t *testing.T) {
	e := ast.NewEntry()
	mtu := uint32(1500)
	on := false
	name := "wan"

	SetString(e, "comment", "")
	SetString(e, "comment", "uplink")
	SetStringPtr(e, "name", &name)
	SetStringPtr(e, "skip", nil)
	SetUint32Ptr(e, "mtu", &mtu)
	SetUint32Value(e, "zero", 0)
	SetUint32Value(e, "l2mtu", 1598)
	SetBool(e, "disabled", &on)
	SetBoolValue(e, "arp", true)

	assert.Equal(t, map[string]string{
		"comment":  "uplink",
		"name":     "wan",
		"mtu":      "1500",
		"l2mtu":    "1598",
		"disabled": "no",
		"arp":      "yes",
	}, e.Options)
	assert.True(t, OptionExists(e, "mtu"))
	assert.False(t, OptionExists(e, "zero"))
	assert.False(t, OptionExists(nil, "mtu"))
}

func TestLists(t *testing.T) {
	e := ast.NewEntry()
	SetList(e, "servers", []string{"", ""})
	assert.False(t, OptionExists(e, "servers"))

	SetList(e, "servers", []string{"1.1.1.1", "", "9.9.9.9"})
	AppendList(e, "servers", "8.8.8.8")
	AppendList(e, "servers", "")
	assert.Equal(t, []string{"1.1.1.1", "9.9.9.9", "8.8.8.8"}, e.Lists["servers"])
	assert.True(t, OptionExists(e, "servers"))
}

func TestProtoMessageToMap(t *testing.T) {
	var msg openwrtv1.OpenWrtConfig
	require.NoError(t, protojson.Unmarshal([]byte(`{
		"general": {"hostname": "core", "timezone": "UTC"},
		"dns_servers": ["1.1.1.1"]
	}`), &msg))

	values := ProtoMessageToMap(msg.GetGeneral())
	assert.Equal(t, "core", values["hostname"])
	assert.Nil(t, ProtoMessageToMap(nil))

	e := ast.NewEntry()
	ApplyOptionsFromMap(e, values, map[string]string{"hostname": "name"})
	assert.Equal(t, map[string]string{"name": "core"}, e.Options)

	all := ProtoMessageToMap(&msg)
	e = ast.NewEntry()
	ApplyOptionsFromMap(e, all, map[string]string{"dns_servers": "servers"})
	assert.Equal(t, []string{"1.1.1.1"}, e.Lists["servers"])
}
