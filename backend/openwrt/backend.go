package openwrt

import (
	"context"
	"errors"

	openwrtv1 "github.com/honeybbq/netjson/gen/go/netjson/openwrt/v1"

	"google.golang.org/protobuf/proto"

	"github.com/honeybbq/rosreconcile/domain/routeros"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/rosconfig"
)

// Backend 实现 OpenWrt NetJSON → RouterOS 目标文档转换。
type Backend struct{}

// New 构造 Backend。
func New() *Backend {
	return &Backend{}
}

// Name 实现 Backend 接口。
func (b *Backend) Name() string {
	return "openwrt"
}

// ToTarget 实现前向转换。
func (b *Backend) ToTarget(ctx context.Context, cfg proto.Message, opts rosconfig.RenderOptions) (*ast.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	owrtCfg, ok := cfg.(*openwrtv1.OpenWrtConfig)
	if !ok {
		return nil, nxerrors.New(nxerrors.KindValidation, errors.New("expected OpenWrtConfig payload"))
	}
	doc, err := routeros.FromOpenWrt(owrtCfg)
	if err != nil {
		return nil, err
	}
	if !opts.IncludeAuxiliary {
		doc.Files = nil
	}
	return doc, nil
}

var _ rosconfig.Backend = (*Backend)(nil)
