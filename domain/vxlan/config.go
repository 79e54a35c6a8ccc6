package vxlan

import (
	"fmt"

	vxlanv1 "github.com/honeybbq/netjson/gen/go/netjson/vxlan/v1"
	wireguardv1 "github.com/honeybbq/netjson/gen/go/netjson/wireguard/v1"

	"github.com/honeybbq/rosreconcile/domain/routeros"
	helpers "github.com/honeybbq/rosreconcile/domain/utils"
	wireguarddomain "github.com/honeybbq/rosreconcile/domain/wireguard"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

// Config 表示 VXLAN 领域模型。
type Config struct {
	Message *vxlanv1.VxlanConfig
}

func FromProto(msg *vxlanv1.VxlanConfig) (*Config, error) {
	if msg == nil {
		return nil, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("config is nil"))
	}
	return &Config{Message: msg}, nil
}

// ToTarget builds the wireguard underlay first and the /interface/vxlan
// tunnels on top of it.
func (c *Config) ToTarget() (*ast.Document, error) {
	if c == nil || c.Message == nil {
		return nil, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("config is nil"))
	}

	doc, err := buildWireguardDocument(c.Message.GetWireguard(), c.Message)
	if err != nil {
		return nil, err
	}
	buildTunnels(doc, c.Message.GetVxlan())
	return doc, nil
}

func buildWireguardDocument(tunnels []*wireguardv1.WireguardTunnel, msg *vxlanv1.VxlanConfig) (*ast.Document, error) {
	wgMsg := &wireguardv1.WireguardConfig{
		Wireguard: tunnels,
		Files:     msg.GetFiles(),
	}
	wgCfg, err := wireguarddomain.FromProto(wgMsg)
	if err != nil {
		return nil, err
	}
	return wgCfg.ToTarget()
}

// buildTunnels writes one /interface/vxlan entry per tunnel. Tunnels asking
// for an automatic VNI get the lowest number not taken by an explicit one.
func buildTunnels(doc *ast.Document, tunnels []*vxlanv1.VxlanTunnel) {
	used := make(map[uint64]struct{})
	for _, t := range tunnels {
		if t == nil || t.GetName() == "" || t.GetAutoVni() {
			continue
		}
		used[uint64(t.GetVni())] = struct{}{}
	}
	var next uint64 = 1
	for _, t := range tunnels {
		if t == nil || t.GetName() == "" {
			continue
		}
		vni := uint64(t.GetVni())
		if t.GetAutoVni() || vni == 0 {
			for {
				if _, taken := used[next]; !taken {
					break
				}
				next++
			}
			vni = next
			used[vni] = struct{}{}
		}
		entry := doc.Add(routeros.PathVXLAN)
		helpers.SetString(entry, "name", t.GetName())
		helpers.SetString(entry, "vni", fmt.Sprint(vni))
	}
}
