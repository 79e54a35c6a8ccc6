package routeros

import (
	"fmt"
	"strings"

	devicev1 "github.com/honeybbq/netjson/gen/go/netjson/device/v1"
	openwrtv1 "github.com/honeybbq/netjson/gen/go/netjson/openwrt/v1"

	helpers "github.com/honeybbq/rosreconcile/domain/utils"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

// FromOpenWrt 将 OpenWrt NetJSON 映射为 RouterOS 目标文档。
//
// Bridges become /interface/bridge with their members as bridge ports,
// VLAN filtering becomes /interface/bridge/vlan plus one /interface/vlan
// per VLAN, wireguard interfaces become /interface/wireguard and every
// other interface is matched against /interface/ethernet by device name.
func FromOpenWrt(msg *openwrtv1.OpenWrtConfig) (*ast.Document, error) {
	if msg == nil {
		return nil, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("config is nil"))
	}
	doc := &ast.Document{}

	buildIdentity(doc, msg.GetGeneral())
	buildNTP(doc, msg.GetNtp())
	buildDNS(doc, msg.GetDnsServers())
	for _, iface := range msg.GetInterfaces() {
		if iface == nil || iface.GetName() == "" {
			continue
		}
		switch {
		case strings.EqualFold(iface.GetType(), "bridge"):
			buildBridge(doc, iface)
		case strings.EqualFold(iface.GetType(), "wireguard"):
			buildWireguardInterface(doc, iface)
		case strings.EqualFold(iface.GetType(), "loopback"):
			continue
		default:
			buildEthernet(doc, iface)
		}
		buildAddresses(doc, iface)
	}
	buildRoutes(doc, msg.GetRoutes())

	doc.Files = msg.GetFiles()
	if len(doc.Sections) == 0 && len(doc.Files) == 0 {
		return nil, nxerrors.New(nxerrors.KindRender, fmt.Errorf("no supported netjson fields found"))
	}
	return doc, nil
}

func buildIdentity(doc *ast.Document, general *devicev1.General) {
	if general == nil {
		return
	}
	values := helpers.ProtoMessageToMap(general)
	entry := ast.NewEntry()
	helpers.ApplyOptionsFromMap(entry, values, map[string]string{"hostname": "name"})
	if len(entry.Options) == 0 {
		return
	}
	section := doc.Section(PathIdentity)
	section.Entries = append(section.Entries, entry)
}

func buildNTP(doc *ast.Document, ntp *openwrtv1.NtpSettings) {
	if ntp == nil {
		return
	}
	entry := ast.NewEntry()
	helpers.SetBool(entry, "enabled", ntp.Enabled)
	helpers.SetList(entry, "servers", ntp.GetServers())
	if len(entry.Options) == 0 && len(entry.Lists) == 0 {
		return
	}
	section := doc.Section(PathNTPClient)
	section.Entries = append(section.Entries, entry)
}

func buildDNS(doc *ast.Document, servers []string) {
	entry := ast.NewEntry()
	helpers.SetList(entry, "servers", servers)
	if len(entry.Lists) == 0 {
		return
	}
	section := doc.Section(PathDNS)
	section.Entries = append(section.Entries, entry)
}

func buildEthernet(doc *ast.Document, iface *devicev1.Interface) {
	device := iface.GetDevice()
	if device == "" {
		device = iface.GetName()
	}
	entry := doc.Add(PathEthernet)
	helpers.SetString(entry, "default-name", device)
	helpers.SetString(entry, "name", iface.GetName())
	helpers.SetUint32Ptr(entry, "mtu", iface.Mtu)
}

func buildBridge(doc *ast.Document, iface *devicev1.Interface) {
	name := iface.GetName()
	bridge := doc.Add(PathBridge)
	helpers.SetString(bridge, "name", name)
	helpers.SetUint32Ptr(bridge, "mtu", iface.Mtu)
	helpers.SetBool(bridge, "igmp-snooping", iface.IgmpSnooping)
	if iface.Stp != nil {
		mode := "none"
		if *iface.Stp {
			mode = "rstp"
		}
		helpers.SetString(bridge, "protocol-mode", mode)
	}

	ports := make(map[string]*ast.Entry)
	for _, member := range iface.GetBridgeMembers() {
		if member == "" {
			continue
		}
		if _, ok := ports[member]; ok {
			continue
		}
		port := doc.Add(PathBridgePort)
		helpers.SetString(port, "bridge", name)
		helpers.SetString(port, "interface", member)
		ports[member] = port
	}

	if len(iface.GetVlanFiltering()) == 0 {
		return
	}
	helpers.SetBoolValue(bridge, "vlan-filtering", true)
	for _, vlan := range iface.GetVlanFiltering() {
		if vlan == nil || vlan.GetVlan() == 0 {
			continue
		}
		vlanID := vlan.GetVlan()
		entry := doc.Add(PathBridgeVLAN)
		helpers.SetString(entry, "bridge", name)
		helpers.SetUint32Value(entry, "vlan-ids", vlanID)
		// The bridge itself carries the VLAN to the CPU.
		helpers.AppendList(entry, "tagged", name)
		for _, port := range vlan.GetPorts() {
			if port == nil || port.GetIfname() == "" {
				continue
			}
			ifname := port.GetIfname()
			switch port.GetTagging() {
			case "t", "tagged":
				helpers.AppendList(entry, "tagged", ifname)
			default:
				helpers.AppendList(entry, "untagged", ifname)
			}
			if port.GetPrimaryVid() {
				if p, ok := ports[ifname]; ok {
					helpers.SetUint32Value(p, "pvid", vlanID)
				}
			}
		}

		vif := doc.Add(PathVLAN)
		helpers.SetString(vif, "name", fmt.Sprintf("%s.%d", name, vlanID))
		helpers.SetString(vif, "interface", name)
		helpers.SetUint32Value(vif, "vlan-id", vlanID)
	}
}

func buildWireguardInterface(doc *ast.Document, iface *devicev1.Interface) {
	entry := doc.Add(PathWireguard)
	helpers.SetString(entry, "name", iface.GetName())
	helpers.SetUint32Ptr(entry, "mtu", iface.Mtu)
	if wg := iface.GetWireguard(); wg != nil {
		helpers.SetString(entry, "private-key", wg.GetPrivateKey())
		helpers.SetUint32Ptr(entry, "listen-port", wg.ListenPort)
	}
}

func buildAddresses(doc *ast.Document, iface *devicev1.Interface) {
	for _, addr := range iface.GetAddresses() {
		if addr == nil || addr.GetAddress() == "" {
			continue
		}
		value := addr.GetAddress()
		if mask := addr.GetMask(); mask != 0 && !strings.Contains(value, "/") {
			value = fmt.Sprintf("%s/%d", value, mask)
		}
		family := addr.GetFamily()
		if family == "" {
			family = "ipv4"
			if strings.Contains(value, ":") {
				family = "ipv6"
			}
		}
		switch family {
		case "ipv4":
			entry := doc.Add(PathIPAddress)
			helpers.SetString(entry, "address", value)
			helpers.SetString(entry, "interface", iface.GetName())
			if gateway := addr.GetGateway(); gateway != "" {
				route := doc.Add(PathRoute)
				helpers.SetString(route, "dst-address", "0.0.0.0/0")
				helpers.SetString(route, "gateway", gateway)
			}
		case "ipv6":
			entry := doc.Add(PathIPv6Address)
			helpers.SetString(entry, "address", value)
			helpers.SetString(entry, "interface", iface.GetName())
		}
	}
}

func buildRoutes(doc *ast.Document, routes []*devicev1.StaticRoute) {
	for _, route := range routes {
		if route == nil || route.GetDestination() == "" || route.GetNext() == "" {
			continue
		}
		// IPv6 routes live under /ipv6/route, which is not managed.
		if strings.Contains(route.GetDestination(), ":") {
			continue
		}
		entry := doc.Add(PathRoute)
		helpers.SetString(entry, "dst-address", route.GetDestination())
		helpers.SetString(entry, "gateway", route.GetNext())
		helpers.SetString(entry, "routing-table", route.GetTable())
		helpers.SetUint32Ptr(entry, "distance", route.Cost)
	}
}
