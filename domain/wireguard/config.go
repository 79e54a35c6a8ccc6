package wireguard

import (
	"fmt"
	"strings"

	wireguardv1 "github.com/honeybbq/netjson/gen/go/netjson/wireguard/v1"

	"github.com/honeybbq/rosreconcile/domain/routeros"
	helpers "github.com/honeybbq/rosreconcile/domain/utils"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

// Config 表示 WireGuard 领域模型。
type Config struct {
	Message *wireguardv1.WireguardConfig
}

func FromProto(msg *wireguardv1.WireguardConfig) (*Config, error) {
	if msg == nil {
		return nil, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("config is nil"))
	}
	return &Config{Message: msg}, nil
}

// ToTarget maps every tunnel onto /interface/wireguard, its peers onto
// /interface/wireguard/peers and its addresses onto /ip/address or
// /ipv6/address.
func (c *Config) ToTarget() (*ast.Document, error) {
	if c == nil || c.Message == nil {
		return nil, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("config is nil"))
	}
	doc := &ast.Document{Files: c.Message.GetFiles()}
	for _, tunnel := range c.Message.GetWireguard() {
		if tunnel == nil || tunnel.GetName() == "" {
			continue
		}
		if err := buildTunnel(doc, tunnel); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func buildTunnel(doc *ast.Document, tunnel *wireguardv1.WireguardTunnel) error {
	name := tunnel.GetName()
	entry := doc.Add(routeros.PathWireguard)
	helpers.SetString(entry, "name", name)
	helpers.SetUint32Value(entry, "listen-port", tunnel.GetPort())
	helpers.SetString(entry, "private-key", tunnel.GetPrivateKey())
	helpers.SetUint32Value(entry, "mtu", tunnel.GetMtu())

	for _, addr := range splitList(tunnel.GetAddress()) {
		path := routeros.PathIPAddress
		if strings.Contains(addr, ":") {
			path = routeros.PathIPv6Address
		}
		a := doc.Add(path)
		helpers.SetString(a, "address", addr)
		helpers.SetString(a, "interface", name)
	}

	for idx, peer := range tunnel.GetPeers() {
		if peer == nil {
			continue
		}
		if peer.GetPublicKey() == "" {
			return nxerrors.New(nxerrors.KindValidation, fmt.Errorf("%s: peer #%d has no public key", name, idx))
		}
		p := doc.Add(routeros.PathWireguardPeers)
		helpers.SetString(p, "interface", name)
		helpers.SetString(p, "public-key", peer.GetPublicKey())
		helpers.SetList(p, "allowed-address", splitList(peer.GetAllowedIps()))
		helpers.SetString(p, "preshared-key", peer.GetPresharedKey())
		if host := peer.GetEndpointHost(); host != "" {
			helpers.SetString(p, "endpoint-address", host)
			if port := peer.GetEndpointPort(); port != 0 {
				helpers.SetString(p, "endpoint-port", fmt.Sprint(port))
			}
		}
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
