package integration

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	vxlanv1 "github.com/honeybbq/netjson/gen/go/netjson/vxlan/v1"

	vxlanbackend "github.com/honeybbq/rosreconcile/backend/vxlan"
	"github.com/honeybbq/rosreconcile/pkg/sync"
)

func TestVxlanWireguardRender(t *testing.T) {
	t.Parallel()

	var cfg vxlanv1.VxlanConfig
	loadMessage(t, &cfg, "vxlan", "basic.json")

	cs := plan(t, nil, toTarget(t, vxlanbackend.New(), &cfg), sync.WithDeviceVersion(semver.MustParse("7.16")))
	assertScript(t, cs, "vxlan", "basic.rsc")

	bundle := cs.Bundle
	if bundle.Metadata.Version != "7.16" {
		t.Fatalf("unexpected device version: %q", bundle.Metadata.Version)
	}
	if len(bundle.Files) != len(cfg.GetFiles()) {
		t.Fatalf("expected %d additional files, got %d", len(cfg.GetFiles()), len(bundle.Files))
	}
	file := bundle.Files[0]
	if file.Path != "/etc/vxlan/wg.key" {
		t.Fatalf("unexpected file path: %s", file.Path)
	}
	if string(file.Content) != "WGKEY-VXLAN" {
		t.Fatalf("unexpected file contents: %q", string(file.Content))
	}
	if file.Mode != 0o644 {
		t.Fatalf("unexpected file mode: %o", file.Mode)
	}
}
