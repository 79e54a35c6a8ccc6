package vxlan

import (
	"context"
	"errors"

	vxlanv1 "github.com/honeybbq/netjson/gen/go/netjson/vxlan/v1"

	"google.golang.org/protobuf/proto"

	domain "github.com/honeybbq/rosreconcile/domain/vxlan"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/rosconfig"
)

type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string {
	return "vxlan"
}

func (b *Backend) ToTarget(ctx context.Context, cfg proto.Message, opts rosconfig.RenderOptions) (*ast.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vxCfg, ok := cfg.(*vxlanv1.VxlanConfig)
	if !ok {
		return nil, nxerrors.New(nxerrors.KindValidation, errors.New("expected VxlanConfig payload"))
	}
	domainCfg, err := domain.FromProto(vxCfg)
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
