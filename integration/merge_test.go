package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/protobuf/encoding/protojson"

	openwrtv1 "github.com/honeybbq/netjson/gen/go/netjson/openwrt/v1"

	openwrtbackend "github.com/honeybbq/rosreconcile/backend/openwrt"
	"github.com/honeybbq/rosreconcile/domain/routeros"
	"github.com/honeybbq/rosreconcile/pkg/rosconfig"
)

func TestMergeConfigs_WireguardTemplate(t *testing.T) {
	t.Parallel()

	// 基础层与 WireGuard 模板分别写入临时文件
	tmpDir := t.TempDir()

	// 基础层只提供主机名与时区
	baseConfig := `{
		"general": {
			"hostname": "hq-gw",
			"timezone": "Europe/Berlin"
		}
	}`
	baseFile := filepath.Join(tmpDir, "base.json")
	if err := os.WriteFile(baseFile, []byte(baseConfig), 0644); err != nil {
		t.Fatal(err)
	}

	// WireGuard 模板
	wgTemplate := `{
		"interfaces": [
			{
				"name": "wg-hq",
				"type": "wireguard",
				"wireguard": {
					"private_key": "hq-key",
					"listen_port": 13231
				},
				"addresses": [
					{
						"proto": "static",
						"family": "ipv4",
						"address": "10.99.0.1",
						"mask": 24
					}
				]
			}
		]
	}`
	wgFile := filepath.Join(tmpDir, "wireguard.json")
	if err := os.WriteFile(wgFile, []byte(wgTemplate), 0644); err != nil {
		t.Fatal(err)
	}

	// 合并配置
	var configs [][]byte
	for _, p := range []string{baseFile, wgFile} {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		configs = append(configs, data)
	}

	merged, err := rosconfig.MergeJSON(configs, rosconfig.DefaultIdentifiers)
	if err != nil {
		t.Fatalf("MergeJSON failed: %v", err)
	}

	// 解析为 Proto
	var msg openwrtv1.OpenWrtConfig
	if err := protojson.Unmarshal(merged, &msg); err != nil {
		t.Fatalf("unmarshal proto: %v", err)
	}

	// 两层都应保留在合并结果中
	if msg.GetGeneral().GetHostname() != "hq-gw" {
		t.Errorf("hostname mismatch: got %s", msg.GetGeneral().GetHostname())
	}
	if msg.GetGeneral().GetTimezone() != "Europe/Berlin" {
		t.Errorf("timezone mismatch: got %s", msg.GetGeneral().GetTimezone())
	}
	if len(msg.GetInterfaces()) != 1 {
		t.Fatalf("expected 1 interface, got %d", len(msg.GetInterfaces()))
	}

	cs := plan(t, nil, toTarget(t, openwrtbackend.New(), &msg))
	want := `/system/identity
set name=hq-gw
/interface/wireguard
add name=wg-hq listen-port=13231 private-key=hq-key
/ip/address
add address="10.99.0.1/24" interface=wg-hq`
	got := bundleToText(cs.Bundle)
	if !compareConfigs(got, want) {
		t.Fatalf("%s", formatConfigDiff(got, want))
	}
}

func TestMergeConfigs_OverrideInterface(t *testing.T) {
	t.Parallel()

	// 模板层：默认端口与密钥
	template := []byte(`{
		"interfaces": [
			{
				"name": "wg-hq",
				"type": "wireguard",
				"wireguard": {
					"private_key": "default-key",
					"listen_port": 13231
				}
			}
		]
	}`)

	// 设备层：轮换密钥并换端口
	config := []byte(`{
		"interfaces": [
			{
				"name": "wg-hq",
				"wireguard": {
					"listen_port": 13232,
					"private_key": "rotated-key"
				}
			}
		]
	}`)

	merged, err := rosconfig.MergeJSON([][]byte{template, config}, rosconfig.DefaultIdentifiers)
	if err != nil {
		t.Fatalf("MergeJSON failed: %v", err)
	}

	var msg openwrtv1.OpenWrtConfig
	if err := protojson.Unmarshal(merged, &msg); err != nil {
		t.Fatalf("unmarshal proto: %v", err)
	}

	// 设备上仍是模板中的端口和密钥
	current := parseExport(t, []byte("/interface wireguard\nadd listen-port=13231 name=wg-hq private-key=default-key\n"))
	cs := plan(t, current, toTarget(t, openwrtbackend.New(), &msg))

	want := `/interface/wireguard
set [find name=wg-hq] listen-port=13232 private-key=rotated-key`
	got := bundleToText(cs.Bundle)
	if !compareConfigs(got, want) {
		t.Fatalf("%s", formatConfigDiff(got, want))
	}
}

func TestMergeConfigs_Render(t *testing.T) {
	t.Parallel()

	// 全局层提供 DNS 与 NTP，设备层提供接口
	global := []byte(`{
		"dns_servers": ["9.9.9.9", "149.112.112.112"],
		"ntp": {
			"enabled": true,
			"servers": ["time.cloudflare.com"]
		}
	}`)

	device := []byte(`{
		"general": {"hostname": "branch-7"},
		"interfaces": [
			{
				"name": "br-lan",
				"type": "bridge",
				"bridge_members": ["ether2"],
				"proto": "static",
				"addresses": [
					{
						"family": "ipv4",
						"address": "192.168.88.1",
						"mask": 24
					}
				]
			}
		]
	}`)

	merged, err := rosconfig.MergeJSON([][]byte{global, device}, rosconfig.DefaultIdentifiers)
	if err != nil {
		t.Fatalf("MergeJSON failed: %v", err)
	}

	var msg openwrtv1.OpenWrtConfig
	if err := protojson.Unmarshal(merged, &msg); err != nil {
		t.Fatalf("unmarshal proto: %v", err)
	}

	cs := plan(t, nil, toTarget(t, openwrtbackend.New(), &msg), ports("ether2"))
	text := bundleToText(cs.Bundle)

	// 应该包含 hostname
	if !strings.Contains(text, "set name=branch-7") {
		t.Error("missing hostname from device config")
	}

	// 应该包含 DNS
	if !strings.Contains(text, `set servers="9.9.9.9,149.112.112.112"`) {
		t.Error("missing dns_servers from global config")
	}

	// 应该包含 NTP
	if !strings.Contains(text, `set enabled=yes servers="time.cloudflare.com"`) {
		t.Error("missing ntp from global config")
	}

	// 应该包含 lan 接口
	if !strings.Contains(text, "add name=br-lan") {
		t.Error("missing lan interface")
	}
	if !strings.Contains(text, "add interface=ether2 bridge=br-lan") {
		t.Error("missing lan port")
	}
	if n := len(cs.Mutations); n != 6 {
		t.Errorf("expected 6 mutations, got %d", n)
	}

	// 顺序：桥先于端口与地址
	bridge := strings.Index(text, routeros.PathBridge+"\n")
	port := strings.Index(text, routeros.PathBridgePort+"\n")
	addr := strings.Index(text, routeros.PathIPAddress+"\n")
	if bridge < 0 || port < bridge || addr < bridge {
		t.Errorf("unexpected order:\n%s", text)
	}
}
