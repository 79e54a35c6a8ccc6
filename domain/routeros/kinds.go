package routeros

import "github.com/honeybbq/rosreconcile/pkg/resource"

// Reference kinds linking RouterOS collections. Interface names share one
// namespace on the device, so bridges, VLANs and tunnels all provide
// KindInterface.
const (
	KindInterface     resource.ReferenceKind = "interface"
	KindInterfaceList resource.ReferenceKind = "interface-list"
	KindIPPool        resource.ReferenceKind = "ip-pool"
	KindQueue         resource.ReferenceKind = "queue"
)

// Menu paths known to the registry.
const (
	PathIdentity       = "/system/identity"
	PathNTPClient      = "/system/ntp/client"
	PathDNS            = "/ip/dns"
	PathEthernet       = "/interface/ethernet"
	PathBridge         = "/interface/bridge"
	PathVLAN           = "/interface/vlan"
	PathVXLAN          = "/interface/vxlan"
	PathWireguard      = "/interface/wireguard"
	PathWireguardPeers = "/interface/wireguard/peers"
	PathOVPNClient     = "/interface/ovpn-client"
	PathOVPNServer     = "/interface/ovpn-server/server"
	PathInterfaceList  = "/interface/list"
	PathListMember     = "/interface/list/member"
	PathBridgePort     = "/interface/bridge/port"
	PathBridgeVLAN     = "/interface/bridge/vlan"
	PathIPPool         = "/ip/pool"
	PathIPAddress      = "/ip/address"
	PathIPv6Address    = "/ipv6/address"
	PathDHCPServer     = "/ip/dhcp-server"
	PathRoute          = "/ip/route"
	PathQueueSimple    = "/queue/simple"
)
