package wireguard

import (
	"context"
	"errors"

	wireguardv1 "github.com/honeybbq/netjson/gen/go/netjson/wireguard/v1"

	"google.golang.org/protobuf/proto"

	domain "github.com/honeybbq/rosreconcile/domain/wireguard"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/rosconfig"
)

type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string {
	return "wireguard"
}

func (b *Backend) ToTarget(ctx context.Context, cfg proto.Message, opts rosconfig.RenderOptions) (*ast.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wgCfg, ok := cfg.(*wireguardv1.WireguardConfig)
	if !ok {
		return nil, nxerrors.New(nxerrors.KindValidation, errors.New("expected WireguardConfig payload"))
	}
	domainCfg, err := domain.FromProto(wgCfg)
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
