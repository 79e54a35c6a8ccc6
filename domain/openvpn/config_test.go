package openvpn

import (
	"testing"

	openvpnv1 "github.com/honeybbq/netjson/gen/go/netjson/openvpn/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeybbq/rosreconcile/domain/routeros"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

func build(t *testing.T, instances map[string]map[string]any, order ...string) (*ast.Document, error) {
	t.Helper()
	b := &builder{doc: &ast.Document{}}
	for _, name := range order {
		if err := b.instance(name, instances[name]); err != nil {
			return nil, err
		}
	}
	return b.doc, nil
}

func TestClientInstance(t *testing.T) {
	doc, err := build(t, map[string]map[string]any{
		"office": {
			"remote": []any{
				map[string]any{"host": ""},
				map[string]any{"host": "vpn.example.com", "port": float64(1194), "proto": "tcp-client"},
			},
			"dev_type": "tap",
			"cipher":   "AES-256-GCM",
			"auth":     "SHA256",
			"cert":     "/etc/openvpn/office.crt",
		},
	}, "office")
	require.NoError(t, err)

	s, ok := doc.Lookup(routeros.PathOVPNClient)
	require.True(t, ok)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, map[string]string{
		"name":        "office",
		"connect-to":  "vpn.example.com",
		"port":        "1194",
		"mode":        "ethernet",
		"protocol":    "tcp",
		"cipher":      "aes256-gcm",
		"auth":        "sha256",
		"certificate": "office",
	}, s.Entries[0].Row())
}

func TestClientFallsBackToInstanceFields(t *testing.T) {
	doc, err := build(t, map[string]map[string]any{
		"home": {
			"remote":   []any{map[string]any{"host": "198.51.100.1", "proto": "auto"}},
			"port":     float64(1195),
			"proto":    "udp",
			"dev_type": "tun",
			"disabled": true,
			"data_ciphers": []any{
				map[string]any{"cipher": "CHACHA20-POLY1305", "optional": true},
				map[string]any{"cipher": "BF-CBC"},
			},
		},
	}, "home")
	require.NoError(t, err)

	s, _ := doc.Lookup(routeros.PathOVPNClient)
	row := s.Entries[0].Row()
	assert.Equal(t, "1195", row["port"])
	assert.Equal(t, "udp", row["protocol"])
	assert.Equal(t, "ip", row["mode"])
	assert.Equal(t, "blowfish128", row["cipher"])
	assert.Equal(t, "yes", row["disabled"])
}

func TestServerInstance(t *testing.T) {
	doc, err := build(t, map[string]map[string]any{
		"hub": {
			"mode":   "server",
			"server": "10.8.0.0 255.255.255.0",
			"port":   float64(1194),
			"proto":  "tcp-server",
			"cipher": "none",
			"auth":   "none",
			"data_ciphers": []any{
				map[string]any{"cipher": "AES-128-CBC"},
				map[string]any{"cipher": "none"},
			},
		},
	}, "hub")
	require.NoError(t, err)

	s, ok := doc.Lookup(routeros.PathOVPNServer)
	require.True(t, ok)
	e := s.Entries[0]
	assert.Equal(t, []string{"null", "aes128-cbc"}, e.Lists["cipher"])
	assert.Equal(t, []string{"null"}, e.Lists["auth"])
	assert.Equal(t, "yes", e.Options["enabled"])
	assert.Equal(t, "tcp", e.Options["protocol"])
	assert.Equal(t, "1194", e.Options["port"])
}

func TestUnsupportedInstances(t *testing.T) {
	server := map[string]any{"server_bridge": ""}
	cases := map[string]map[string]map[string]any{
		"second server": {"a": server, "b": server},
		"no remote":     {"a": {"dev": "tun0"}, "b": {"dev": "tun1"}},
		"bad cipher":    {"a": {"remote": []any{map[string]any{"host": "h"}}, "cipher": "CAMELLIA-128-CBC"}, "b": {}},
		"bad auth":      {"a": {"remote": []any{map[string]any{"host": "h"}}, "auth": "SHA384"}, "b": {}},
		"data cipher":   {"a": {"server": "x", "data_ciphers": []any{map[string]any{"cipher": "AES-512-GCM"}}}, "b": {}},
	}
	for name, instances := range cases {
		_, err := build(t, instances, "a", "b")
		require.Error(t, err, name)
		assert.True(t, nxerrors.Is(err, nxerrors.KindUnsupported), name)
	}

	_, err := build(t, map[string]map[string]any{"c": {"remote": []any{map[string]any{"port": float64(1)}}}}, "c")
	assert.True(t, nxerrors.Is(err, nxerrors.KindValidation))
}

func TestToTarget(t *testing.T) {
	_, err := FromProto(nil)
	assert.True(t, nxerrors.Is(err, nxerrors.KindValidation))

	cfg, err := FromProto(&openvpnv1.OpenVpnConfig{
		Openvpn: []*openvpnv1.OpenVpnInstance{nil, {Name: ""}},
	})
	require.NoError(t, err)
	doc, err := cfg.ToTarget()
	require.NoError(t, err)
	assert.Empty(t, doc.Sections)

	cfg, _ = FromProto(&openvpnv1.OpenVpnConfig{
		Openvpn: []*openvpnv1.OpenVpnInstance{{Name: "bare"}},
	})
	_, err = cfg.ToTarget()
	assert.True(t, nxerrors.Is(err, nxerrors.KindUnsupported))
}

func TestCipherName(t *testing.T) {
	for in, want := range map[string]string{
		"AES-256-GCM":  "aes256-gcm",
		"aes-192-cbc":  "aes192-cbc",
		"?AES-128-GCM": "aes128-gcm",
		"BF-CBC":       "blowfish128",
		"none":         "null",
	} {
		got, ok := cipherName(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"AES-256-CFB", "AES-512-GCM", "CHACHA20-POLY1305"} {
		_, ok := cipherName(in)
		assert.False(t, ok, in)
	}
}
