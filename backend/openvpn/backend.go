package openvpn

import (
	"context"
	"errors"

	openvpnv1 "github.com/honeybbq/netjson/gen/go/netjson/openvpn/v1"

	"google.golang.org/protobuf/proto"

	domain "github.com/honeybbq/rosreconcile/domain/openvpn"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/rosconfig"
)

type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string {
	return "openvpn"
}

func (b *Backend) ToTarget(ctx context.Context, cfg proto.Message, opts rosconfig.RenderOptions) (*ast.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ovpnCfg, ok := cfg.(*openvpnv1.OpenVpnConfig)
	if !ok {
		return nil, nxerrors.New(nxerrors.KindValidation, errors.New("expected OpenVpnConfig payload"))
	}
	domainCfg, err := domain.FromProto(ovpnCfg)
	if err != nil {
		return nil, err
	}
	doc, err := domainCfg.ToTarget()
	if err != nil {
		return nil, err
	}
	if !opts.IncludeAuxiliary {
		doc.Files = nil
	}
	return doc, nil
}
