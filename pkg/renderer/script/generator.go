package script

import (
	"fmt"
	"io"
	"strings"

	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
	"github.com/honeybbq/rosreconcile/pkg/resource"
)

// Generator writes mutations as script statements. Consecutive mutations on
// the same path share one header line. A write failure is sticky: every
// later call returns the same error.
type Generator struct {
	w        io.Writer
	lastPath string
	err      error
}

// NewGenerator returns a Generator writing to w.
func NewGenerator(w io.Writer) *Generator {
	return &Generator{w: w}
}

// AppendMutation writes one mutation. Mutations that change no field write
// nothing at all, not even a header.
func (g *Generator) AppendMutation(m resource.ResourceMutation) error {
	if g.err != nil {
		return g.err
	}
	if m.Empty() {
		return nil
	}

	var b strings.Builder
	if m.Path != g.lastPath {
		b.WriteString(m.Path)
		b.WriteByte('\n')
	}
	switch m.Operation.Kind {
	case resource.Add:
		b.WriteString("add")
	case resource.UpdateSingle:
		b.WriteString("set")
	case resource.UpdateByKey, resource.RemoveByKey:
		if len(m.Operation.Selector) == 0 {
			return nxerrors.New(nxerrors.KindRender, fmt.Errorf("%s: %s without selector", m.Path, m.Operation.Kind))
		}
		if m.Operation.Kind == resource.UpdateByKey {
			b.WriteString("set ")
		} else {
			b.WriteString("remove ")
		}
		writeFind(&b, m.Operation.Selector)
	default:
		return nxerrors.New(nxerrors.KindRender, fmt.Errorf("%s: unknown operation %s", m.Path, m.Operation.Kind))
	}
	if m.Operation.Kind != resource.RemoveByKey {
		for _, f := range m.Fields {
			b.WriteByte(' ')
			writePair(&b, f)
		}
	}
	b.WriteByte('\n')

	if err := g.write(b.String()); err != nil {
		return err
	}
	g.lastPath = m.Path
	return nil
}

// Comment writes a "# text" line. The next mutation repeats its header.
func (g *Generator) Comment(text string) error {
	if g.err != nil {
		return g.err
	}
	if err := g.write("# " + strings.ReplaceAll(text, "\n", " ") + "\n"); err != nil {
		return err
	}
	g.lastPath = ""
	return nil
}

func (g *Generator) write(s string) error {
	if _, err := io.WriteString(g.w, s); err != nil {
		g.err = nxerrors.New(nxerrors.KindRender, err)
		return g.err
	}
	return nil
}

func writeFind(b *strings.Builder, sel []resource.KeyValuePair) {
	b.WriteString("[find")
	for _, kv := range sel {
		b.WriteByte(' ')
		writePair(b, kv)
	}
	b.WriteByte(']')
}

func writePair(b *strings.Builder, kv resource.KeyValuePair) {
	b.WriteString(kv.Key)
	b.WriteByte('=')
	b.WriteString(Quote(kv.Value))
}
