package script

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"strconv"

	commonv1 "github.com/honeybbq/netjson/gen/go/netjson/common/v1"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/renderer"
	"github.com/honeybbq/rosreconcile/pkg/resource"
	"github.com/honeybbq/rosreconcile/pkg/rosconfig"
)

const (
	// Format is the bundle format identifier.
	Format = "routeros-script"
	// PackageName is the name of the package holding the script.
	PackageName = "script"
)

// PlainTextRenderer 将有序的 mutation 序列渲染为 RouterOS 脚本。
type PlainTextRenderer struct {
	// Backend is recorded in the bundle metadata.
	Backend string
}

var _ renderer.Renderer[[]resource.ResourceMutation] = (*PlainTextRenderer)(nil)

func NewPlainTextRenderer() *PlainTextRenderer {
	return &PlainTextRenderer{Backend: "native"}
}

// Render 实现 renderer.Renderer。The input must already be scheduled.
func (r *PlainTextRenderer) Render(ctx context.Context, muts []resource.ResourceMutation, opts rosconfig.RenderOptions) (*rosconfig.Bundle, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	gen := NewGenerator(&buf)
	if opts.GenerationTag != "" {
		if err := gen.Comment(opts.GenerationTag); err != nil {
			return nil, err
		}
	}
	written := 0
	for i, m := range muts {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := gen.AppendMutation(m); err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}
		if !m.Empty() {
			written++
		}
	}

	bundle := rosconfig.NewBundle(Format, r.Backend)
	bundle.Metadata.Version = opts.DeviceVersion
	bundle.Metadata.Custom["statements"] = strconv.Itoa(written)
	bundle.Packages = append(bundle.Packages, rosconfig.Package{
		Name:    PackageName,
		Content: buf.Bytes(),
	})
	return bundle, nil
}

// AttachFiles adds NetJSON included files to the bundle.
func AttachFiles(bundle *rosconfig.Bundle, files []*commonv1.IncludedFile) error {
	for _, file := range files {
		if file == nil {
			continue
		}
		mode, err := parseFileMode(file.GetMode())
		if err != nil {
			return err
		}
		bundle.Files = append(bundle.Files, rosconfig.File{
			Path:    file.GetPath(),
			Mode:    mode,
			Content: []byte(file.GetContents()),
		})
	}
	return nil
}

func parseFileMode(value string) (fs.FileMode, error) {
	if value == "" {
		return 0o644, nil
	}
	parsed, err := strconv.ParseUint(value, 8, 32)
	if err != nil {
		return 0, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("invalid file mode %q: %w", value, err))
	}
	return fs.FileMode(parsed), nil
}
