package sync

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
)

func checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// documentChecksum hashes a document independently of section order and
// attribute order. Entry order within a section is significant.
func documentChecksum(doc *ast.Document) string {
	if doc == nil {
		return checksum(nil)
	}
	sections := slices.Clone(doc.Sections)
	sections = slices.DeleteFunc(sections, func(s *ast.Section) bool { return s == nil })
	slices.SortStableFunc(sections, func(a, b *ast.Section) int { return strings.Compare(a.Path, b.Path) })

	d := xxhash.New()
	for _, s := range sections {
		_, _ = d.WriteString(s.Path)
		_, _ = d.WriteString("\n")
		for _, e := range s.Entries {
			if e == nil {
				continue
			}
			for _, k := range e.Keys() {
				v, _ := e.Get(k)
				_, _ = d.WriteString(k)
				_, _ = d.WriteString("=")
				_, _ = d.WriteString(v)
				_, _ = d.WriteString("\x00")
			}
			_, _ = d.WriteString("\n")
		}
	}
	for _, f := range doc.Files {
		if f == nil {
			continue
		}
		_, _ = d.WriteString(f.GetPath())
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(f.GetContents())
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
