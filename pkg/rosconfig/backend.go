package rosconfig

import (
	"context"

	"google.golang.org/protobuf/proto"

	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
)

// Backend converts a NetJSON proto message into a RouterOS target document.
// Each backend covers one NetJSON flavour.
type Backend interface {
	// Name returns the backend identifier (e.g., "openwrt", "wireguard", "vxlan").
	Name() string

	// ToTarget maps a NetJSON message onto RouterOS collections. The result
	// is the desired state the planner reconciles the device towards.
	ToTarget(ctx context.Context, cfg proto.Message, opts RenderOptions) (*ast.Document, error)
}
