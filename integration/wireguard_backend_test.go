package integration

import (
	"testing"

	wireguardv1 "github.com/honeybbq/netjson/gen/go/netjson/wireguard/v1"

	wireguardbackend "github.com/honeybbq/rosreconcile/backend/wireguard"
)

func TestWireguardRenderBasic(t *testing.T) {
	t.Parallel()

	var cfg wireguardv1.WireguardConfig
	loadMessage(t, &cfg, "wireguard", "basic.json")

	cs := plan(t, nil, toTarget(t, wireguardbackend.New(), &cfg))
	assertScript(t, cs, "wireguard", "basic.rsc")

	bundle := cs.Bundle
	if len(bundle.Files) != len(cfg.GetFiles()) {
		t.Fatalf("expected %d additional files, got %d", len(cfg.GetFiles()), len(bundle.Files))
	}
	file := bundle.Files[0]
	if file.Path != "/etc/wireguard/wg.key" {
		t.Fatalf("unexpected file path: %s", file.Path)
	}
	if string(file.Content) != "WGKEY" {
		t.Fatalf("unexpected file contents: %q", string(file.Content))
	}
	if file.Mode != 0o600 {
		t.Fatalf("unexpected file mode: %o", file.Mode)
	}
}

func TestWireguardPeerChange(t *testing.T) {
	t.Parallel()

	var cfg wireguardv1.WireguardConfig
	loadMessage(t, &cfg, "wireguard", "basic.json")

	current := parseExport(t, []byte(`/interface wireguard
add listen-port=51820 mtu=1420 name=wg0 private-key="QEJc7iUOC0LgqWOB4Bqjnl3fqDWUfnPnCx6l3mVkqVA="
/interface wireguard peers
add allowed-address=10.0.0.2/32 endpoint-address=198.51.100.7 endpoint-port=51820 interface=wg0 \
    public-key="94a+MnZSdzHCzOy5y2K+0+Xe7lQzaa4v7lEiBZ7elVE="
/ip address
add address=10.0.0.1/24 interface=wg0 network=10.0.0.0
/ipv6 address
add address=fd00::1/64 interface=wg0
`))
	cs := plan(t, current, toTarget(t, wireguardbackend.New(), &cfg))

	want := `/interface/wireguard/peers
set [find interface=wg0 public-key="94a+MnZSdzHCzOy5y2K+0+Xe7lQzaa4v7lEiBZ7elVE="] allowed-address="10.0.0.2/32,192.168.10.0/24"`
	got := bundleToText(cs.Bundle)
	if !compareConfigs(got, want) {
		t.Fatalf("%s", formatConfigDiff(got, want))
	}
}
