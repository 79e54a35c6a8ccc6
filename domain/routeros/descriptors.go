package routeros

import (
	"github.com/honeybbq/rosreconcile/pkg/schema"
	"github.com/honeybbq/rosreconcile/pkg/value"
)

var (
	text     = value.Erase(value.String())
	number   = value.Erase(value.Uint())
	flag     = value.Erase(value.Bool())
	duration = value.Erase(value.Duration())
	prefix   = value.Erase(value.Prefix())
	names    = value.ListField(value.String())

	ovpnMode     = value.Erase(value.Enum("ip", "ethernet"))
	ovpnProtocol = value.Erase(value.Enum("tcp", "udp"))
	ovpnCiphers  = []string{"null", "blowfish128", "aes128-cbc", "aes192-cbc", "aes256-cbc", "aes128-gcm", "aes192-gcm", "aes256-gcm"}
	ovpnAuths    = []string{"null", "md5", "sha1", "sha256", "sha512"}
)

// 公共字段
func commentField() schema.Field {
	return schema.Field{Name: "comment", Codec: text, KeepIfNone: true}
}

func disabledField() schema.Field {
	return schema.Field{Name: "disabled", Codec: flag}
}

func runningField() schema.Field {
	return schema.Field{Name: "running", Codec: flag, ReadOnly: true}
}

// Descriptors returns the RouterOS collections in dependency friendly
// order: providers come before the collections that consume them.
func Descriptors() []schema.Descriptor {
	return []schema.Descriptor{
		{
			Path:      PathIdentity,
			Singleton: true,
			Fields:    []schema.Field{{Name: "name", Codec: text}},
		},
		{
			Path:      PathNTPClient,
			Singleton: true,
			Fields: []schema.Field{
				{Name: "enabled", Codec: flag},
				{Name: "mode", Codec: value.Erase(value.Enum("broadcast", "manycast", "multicast", "unicast"))},
				{Name: "servers", Codec: names, MinVersion: "7.0.0"},
				{Name: "status", Codec: text, ReadOnly: true},
			},
		},
		{
			Path:      PathDNS,
			Singleton: true,
			Fields: []schema.Field{
				{Name: "servers", Codec: value.ListField(value.Addr())},
				{Name: "allow-remote-requests", Codec: flag},
				{Name: "cache-size", Codec: number},
				{Name: "cache-max-ttl", Codec: duration},
			},
		},
		{
			Path: PathEthernet,
			Fields: []schema.Field{
				{Name: "default-name", Codec: text, Key: true},
				{Name: "name", Codec: text, Ref: schema.Provide(KindInterface)},
				{Name: "mtu", Codec: number},
				{Name: "l2mtu", Codec: number},
				{Name: "mac-address", Codec: value.Erase(value.MAC())},
				{Name: "arp", Codec: value.Erase(value.Enum("disabled", "enabled", "local-proxy-arp", "proxy-arp", "reply-only"))},
				commentField(),
				disabledField(),
				runningField(),
			},
			IdentityField: "default-name",
		},
		{
			Path:    PathBridge,
			Addable: true,
			Fields: []schema.Field{
				{Name: "name", Codec: text, Key: true, Ref: schema.Provide(KindInterface)},
				{Name: "mtu", Codec: value.Erase(value.Auto(value.Uint()))},
				{Name: "protocol-mode", Codec: value.Erase(value.Enum("none", "rstp", "stp", "mstp"))},
				{Name: "vlan-filtering", Codec: flag},
				{Name: "pvid", Codec: number},
				{Name: "igmp-snooping", Codec: flag},
				{Name: "ageing-time", Codec: duration},
				commentField(),
				disabledField(),
				runningField(),
			},
		},
		{
			Path:    PathVLAN,
			Addable: true,
			Fields: []schema.Field{
				{Name: "name", Codec: text, Key: true, Ref: schema.Provide(KindInterface)},
				{Name: "interface", Codec: text, Required: true, Ref: schema.Consume(KindInterface)},
				{Name: "vlan-id", Codec: number, Required: true},
				{Name: "mtu", Codec: number},
				commentField(),
				disabledField(),
				runningField(),
			},
		},
		{
			Path:     PathVXLAN,
			Addable:  true,
			Optional: true,
			Fields: []schema.Field{
				{Name: "name", Codec: text, Key: true, Ref: schema.Provide(KindInterface)},
				{Name: "vni", Codec: number, Required: true},
				{Name: "port", Codec: number},
				{Name: "mtu", Codec: number},
				{Name: "interface", Codec: value.Erase(value.None(value.String())), Ref: schema.Consume(KindInterface)},
				{Name: "learning", Codec: flag, MinVersion: "7.11.0"},
				{Name: "vteps-ip-version", Codec: value.Erase(value.Enum("ipv4", "ipv6")), MinVersion: "7.18.0"},
				commentField(),
				disabledField(),
			},
		},
		{
			Path:    PathWireguard,
			Addable: true,
			Fields: []schema.Field{
				{Name: "name", Codec: text, Key: true, Ref: schema.Provide(KindInterface)},
				{Name: "listen-port", Codec: number},
				{Name: "private-key", Codec: text},
				{Name: "mtu", Codec: number},
				{Name: "public-key", Codec: text, ReadOnly: true},
				commentField(),
				disabledField(),
			},
		},
		{
			Path:    PathWireguardPeers,
			Addable: true,
			Fields: []schema.Field{
				{Name: "interface", Codec: text, Key: true, Required: true, Ref: schema.Consume(KindInterface)},
				{Name: "public-key", Codec: text, Key: true, Required: true},
				{Name: "allowed-address", Codec: value.ListField(value.Prefix())},
				{Name: "endpoint-address", Codec: text},
				{Name: "endpoint-port", Codec: number},
				{Name: "preshared-key", Codec: text},
				{Name: "persistent-keepalive", Codec: duration},
				{Name: "name", Codec: text, MinVersion: "7.15.0"},
				{Name: "last-handshake", Codec: duration, ReadOnly: true},
				commentField(),
				disabledField(),
			},
		},
		{
			Path:    PathOVPNClient,
			Addable: true,
			Fields: []schema.Field{
				{Name: "name", Codec: text, Key: true, Ref: schema.Provide(KindInterface)},
				{Name: "connect-to", Codec: text, Required: true},
				{Name: "port", Codec: number},
				{Name: "mode", Codec: ovpnMode},
				{Name: "protocol", Codec: ovpnProtocol},
				{Name: "user", Codec: text},
				{Name: "password", Codec: text},
				{Name: "cipher", Codec: value.Erase(value.Enum(ovpnCiphers...))},
				{Name: "auth", Codec: value.Erase(value.Enum(ovpnAuths...))},
				{Name: "certificate", Codec: value.Erase(value.None(value.String()))},
				{Name: "verify-server-certificate", Codec: flag},
				{Name: "add-default-route", Codec: flag},
				commentField(),
				disabledField(),
				runningField(),
			},
		},
		{
			Path:      PathOVPNServer,
			Singleton: true,
			Fields: []schema.Field{
				{Name: "enabled", Codec: flag},
				{Name: "port", Codec: number},
				{Name: "mode", Codec: ovpnMode},
				{Name: "protocol", Codec: ovpnProtocol},
				{Name: "cipher", Codec: value.ListField(value.Enum(ovpnCiphers...))},
				{Name: "auth", Codec: value.ListField(value.Enum(ovpnAuths...))},
				{Name: "certificate", Codec: value.Erase(value.None(value.String()))},
				{Name: "require-client-certificate", Codec: flag},
				{Name: "default-profile", Codec: text},
			},
		},
		{
			Path:    PathInterfaceList,
			Addable: true,
			Fields: []schema.Field{
				{Name: "name", Codec: text, Key: true, Ref: schema.Provide(KindInterfaceList)},
				{Name: "include", Codec: names, Ref: schema.Consume(KindInterfaceList)},
				{Name: "exclude", Codec: names, Ref: schema.Consume(KindInterfaceList)},
				commentField(),
			},
		},
		{
			Path:    PathListMember,
			Addable: true,
			Fields: []schema.Field{
				{Name: "list", Codec: text, Key: true, Required: true, Ref: schema.Consume(KindInterfaceList)},
				{Name: "interface", Codec: text, Key: true, Required: true, Ref: schema.Consume(KindInterface)},
				commentField(),
				disabledField(),
			},
		},
		{
			Path:    PathBridgePort,
			Addable: true,
			Fields: []schema.Field{
				{Name: "interface", Codec: text, Key: true, Required: true, Ref: schema.Consume(KindInterface)},
				{Name: "bridge", Codec: text, Required: true, Ref: schema.Consume(KindInterface)},
				{Name: "pvid", Codec: number},
				{Name: "frame-types", Codec: value.Erase(value.Enum("admit-all", "admit-only-untagged-and-priority-tagged", "admit-only-vlan-tagged"))},
				{Name: "hw", Codec: flag},
				commentField(),
				disabledField(),
			},
		},
		{
			Path:    PathBridgeVLAN,
			Addable: true,
			Fields: []schema.Field{
				{Name: "bridge", Codec: text, Key: true, Required: true, Ref: schema.Consume(KindInterface)},
				{Name: "vlan-ids", Codec: value.Erase(value.RangeOf(value.Uint())), Key: true, Required: true},
				{Name: "tagged", Codec: names, Ref: schema.Consume(KindInterface)},
				{Name: "untagged", Codec: names, Ref: schema.Consume(KindInterface)},
				commentField(),
				disabledField(),
			},
		},
		{
			Path:    PathIPPool,
			Addable: true,
			Fields: []schema.Field{
				{Name: "name", Codec: text, Key: true, Ref: schema.Provide(KindIPPool)},
				{Name: "ranges", Codec: value.ListField(value.RangeOf(value.Addr())), Required: true},
				{Name: "next-pool", Codec: value.Erase(value.None(value.String())), Ref: schema.Consume(KindIPPool)},
				commentField(),
			},
		},
		{
			Path:    PathIPAddress,
			Addable: true,
			Fields: []schema.Field{
				{Name: "address", Codec: prefix, Key: true},
				{Name: "interface", Codec: text, Required: true, Ref: schema.Consume(KindInterface)},
				{Name: "network", Codec: value.Erase(value.Addr()), ReadOnly: true},
				commentField(),
				disabledField(),
			},
		},
		{
			Path:    PathIPv6Address,
			Addable: true,
			Fields: []schema.Field{
				{Name: "address", Codec: prefix, Key: true},
				{Name: "interface", Codec: text, Required: true, Ref: schema.Consume(KindInterface)},
				{Name: "advertise", Codec: flag},
				{Name: "eui-64", Codec: flag},
				commentField(),
				disabledField(),
			},
		},
		{
			Path:    PathDHCPServer,
			Addable: true,
			Fields: []schema.Field{
				{Name: "name", Codec: text, Key: true},
				{Name: "interface", Codec: text, Required: true, Ref: schema.Consume(KindInterface)},
				{Name: "address-pool", Codec: value.Erase(value.WithToken(value.String(), "static-only")), Ref: schema.Consume(KindIPPool)},
				{Name: "lease-time", Codec: duration},
				commentField(),
				disabledField(),
			},
		},
		{
			Path:    PathRoute,
			Addable: true,
			Fields: []schema.Field{
				{Name: "dst-address", Codec: prefix, Key: true},
				{Name: "gateway", Codec: text, Key: true},
				{Name: "routing-table", Codec: text},
				{Name: "distance", Codec: number},
				{Name: "scope", Codec: number},
				{Name: "active", Codec: flag, ReadOnly: true},
				commentField(),
				disabledField(),
			},
		},
		{
			Path:    PathQueueSimple,
			Addable: true,
			Fields: []schema.Field{
				{Name: "name", Codec: text, Key: true, Ref: schema.Provide(KindQueue)},
				{Name: "target", Codec: names, Required: true},
				{Name: "max-limit", Codec: value.Erase(value.PairOf(value.Rate(), value.Rate()))},
				{Name: "limit-at", Codec: value.Erase(value.PairOf(value.Rate(), value.Rate()))},
				{Name: "burst-time", Codec: value.Erase(value.PairOf(value.Duration(), value.Duration()))},
				{Name: "parent", Codec: value.Erase(value.None(value.String())), Ref: schema.Consume(KindQueue)},
				{Name: "priority", Codec: value.Erase(value.PairOf(value.Uint(), value.Uint()))},
				commentField(),
				disabledField(),
			},
		},
	}
}

// Registry returns a registry holding every known collection.
func Registry() *schema.Registry {
	return schema.NewRegistry().MustRegister(Descriptors()...)
}
