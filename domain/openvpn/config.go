package openvpn

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	openvpnv1 "github.com/honeybbq/netjson/gen/go/netjson/openvpn/v1"

	"github.com/honeybbq/rosreconcile/domain/routeros"
	helpers "github.com/honeybbq/rosreconcile/domain/utils"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

// Config 表示 OpenVPN 领域模型。
type Config struct {
	Message *openvpnv1.OpenVpnConfig
}

// FromProto 构造模型。
func FromProto(msg *openvpnv1.OpenVpnConfig) (*Config, error) {
	if msg == nil {
		return nil, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("config is nil"))
	}
	return &Config{Message: msg}, nil
}

// ToTarget 转换为 RouterOS 目标文档：带 remote 的实例映射为
// /interface/ovpn-client，服务端实例映射为 /interface/ovpn-server/server。
func (c *Config) ToTarget() (*ast.Document, error) {
	if c == nil || c.Message == nil {
		return nil, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("config is nil"))
	}
	doc := &ast.Document{Files: c.Message.GetFiles()}
	b := &builder{doc: doc}
	for _, inst := range c.Message.GetOpenvpn() {
		if inst == nil || inst.GetName() == "" {
			continue
		}
		if err := b.instance(inst.GetName(), helpers.ProtoMessageToMap(inst)); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

type builder struct {
	doc    *ast.Document
	server string
}

// instance works on the protojson form of one instance so that enum
// spellings of the message stay out of this package.
func (b *builder) instance(name string, raw map[string]any) error {
	switch {
	case isServer(raw):
		if b.server != "" {
			return nxerrors.New(nxerrors.KindUnsupported,
				fmt.Errorf("%s: device runs a single ovpn server, %s already defines it", name, b.server))
		}
		b.server = name
		return buildServer(b.doc, name, raw)
	case raw["remote"] != nil:
		return buildClient(b.doc, name, raw)
	default:
		return nxerrors.New(nxerrors.KindUnsupported,
			fmt.Errorf("%s: only client and server instances map to the device", name))
	}
}

func isServer(raw map[string]any) bool {
	if _, ok := raw["server"]; ok {
		return true
	}
	if _, ok := raw["server_bridge"]; ok {
		return true
	}
	return strings.Contains(strings.ToLower(asString(raw["mode"])), "server")
}

func buildClient(doc *ast.Document, name string, raw map[string]any) error {
	host, port, proto := firstRemote(raw)
	if host == "" {
		return nxerrors.New(nxerrors.KindValidation, fmt.Errorf("%s: remote has no host", name))
	}
	entry := doc.Add(routeros.PathOVPNClient)
	helpers.SetString(entry, "name", name)
	helpers.SetString(entry, "connect-to", host)
	if port == "" {
		port = formatNumberInterface(raw["port"])
	}
	helpers.SetString(entry, "port", port)
	helpers.SetString(entry, "mode", tunnelMode(raw))
	if proto == "" {
		proto = asString(raw["proto"])
	}
	helpers.SetString(entry, "protocol", transport(proto))

	ciphers, err := cipherList(name, raw)
	if err != nil {
		return err
	}
	if len(ciphers) > 0 {
		helpers.SetString(entry, "cipher", ciphers[0])
	}
	auth, err := authName(name, asString(raw["auth"]))
	if err != nil {
		return err
	}
	helpers.SetString(entry, "auth", auth)
	helpers.SetString(entry, "certificate", certificateName(asString(raw["cert"])))
	if disabled, ok := raw["disabled"].(bool); ok {
		helpers.SetBoolValue(entry, "disabled", disabled)
	}
	return nil
}

func buildServer(doc *ast.Document, name string, raw map[string]any) error {
	entry := doc.Add(routeros.PathOVPNServer)
	disabled, _ := raw["disabled"].(bool)
	helpers.SetBoolValue(entry, "enabled", !disabled)
	helpers.SetString(entry, "port", formatNumberInterface(raw["port"]))
	helpers.SetString(entry, "mode", tunnelMode(raw))
	helpers.SetString(entry, "protocol", transport(asString(raw["proto"])))

	ciphers, err := cipherList(name, raw)
	if err != nil {
		return err
	}
	helpers.SetList(entry, "cipher", ciphers)
	auth, err := authName(name, asString(raw["auth"]))
	if err != nil {
		return err
	}
	if auth != "" {
		helpers.SetList(entry, "auth", []string{auth})
	}
	helpers.SetString(entry, "certificate", certificateName(asString(raw["cert"])))
	return nil
}

// firstRemote 返回第一个可用 remote 的 host/port/proto。
func firstRemote(raw map[string]any) (host, port, proto string) {
	items, _ := raw["remote"].([]any)
	for _, item := range items {
		obj, _ := item.(map[string]any)
		if obj == nil {
			continue
		}
		host = strings.TrimSpace(asString(obj["host"]))
		if host == "" {
			continue
		}
		port = formatNumberInterface(obj["port"])
		if p := strings.TrimSpace(asString(obj["proto"])); p != "" && !strings.EqualFold(p, "auto") {
			proto = p
		}
		return host, port, proto
	}
	return "", "", ""
}

func tunnelMode(raw map[string]any) string {
	dev := strings.ToLower(asString(raw["dev_type"]) + asString(raw["dev"]))
	switch {
	case strings.Contains(dev, "tap"):
		return "ethernet"
	case strings.Contains(dev, "tun"):
		return "ip"
	}
	return ""
}

func transport(proto string) string {
	proto = strings.ToLower(proto)
	switch {
	case proto == "":
		return ""
	case strings.Contains(proto, "tcp"):
		return "tcp"
	default:
		return "udp"
	}
}

// cipherList 合并 cipher 与 data_ciphers。必选的 cipher 无法映射时报错，
// 可选 (?前缀) 的 data cipher 无法映射时忽略。
func cipherList(name string, raw map[string]any) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(c string) {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	if c := strings.TrimSpace(asString(raw["cipher"])); c != "" {
		mapped, ok := cipherName(c)
		if !ok {
			return nil, nxerrors.New(nxerrors.KindUnsupported, fmt.Errorf("%s: cipher %q", name, c))
		}
		add(mapped)
	}
	items, _ := raw["data_ciphers"].([]any)
	for _, item := range items {
		obj, _ := item.(map[string]any)
		if obj == nil {
			continue
		}
		c := strings.TrimSpace(asString(obj["cipher"]))
		if c == "" {
			continue
		}
		mapped, ok := cipherName(c)
		if !ok {
			if optional, _ := obj["optional"].(bool); optional {
				continue
			}
			return nil, nxerrors.New(nxerrors.KindUnsupported, fmt.Errorf("%s: data cipher %q", name, c))
		}
		add(mapped)
	}
	return out, nil
}

// cipherName 把 OpenVPN 的算法名转换为设备上的写法。
func cipherName(c string) (string, bool) {
	c = strings.ToLower(strings.TrimPrefix(c, "?"))
	switch c {
	case "none":
		return "null", true
	case "bf-cbc":
		return "blowfish128", true
	}
	if rest, ok := strings.CutPrefix(c, "aes-"); ok {
		bits, suffix, _ := strings.Cut(rest, "-")
		switch bits {
		case "128", "192", "256":
		default:
			return "", false
		}
		if suffix == "cbc" || suffix == "gcm" {
			return "aes" + bits + "-" + suffix, true
		}
	}
	return "", false
}

func authName(name, auth string) (string, error) {
	auth = strings.ToLower(strings.TrimSpace(auth))
	switch auth {
	case "":
		return "", nil
	case "none":
		return "null", nil
	case "md5", "sha1", "sha256", "sha512":
		return auth, nil
	}
	return "", nxerrors.New(nxerrors.KindUnsupported, fmt.Errorf("%s: auth %q", name, auth))
}

// certificateName 取证书文件名（去掉扩展名）作为设备证书名。
func certificateName(file string) string {
	if file == "" {
		return ""
	}
	base := path.Base(file)
	return strings.TrimSuffix(base, path.Ext(base))
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	default:
		return ""
	}
}

func formatNumberInterface(value any) string {
	if value == nil {
		return ""
	}
	if v, ok := value.(float64); ok {
		if v == 0 {
			return ""
		}
		return formatNumber(v)
	}
	return asString(value)
}

func formatNumber(v float64) string {
	return strconv.FormatInt(int64(v), 10)
}
