package script

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/renderer"
	"github.com/honeybbq/rosreconcile/pkg/rosconfig"
)

var _ renderer.Parser[*ast.Document] = (*ExportParser)(nil)

// ExportParser reads an exported configuration script into a Document. It
// understands path headers, add and set statements, [find ...] selectors,
// comments, line continuations and quoted values. Selector attributes are
// merged into the entry so a "set [find default-name=ether1] name=wan"
// line yields an entry carrying both.
type ExportParser struct{}

func NewExportParser() *ExportParser {
	return &ExportParser{}
}

// Parse 实现 renderer.Parser，读取 bundle 中的 script 包。
func (p *ExportParser) Parse(ctx context.Context, bundle *rosconfig.Bundle, opts rosconfig.ParseOptions) (*ast.Document, error) {
	if bundle == nil {
		return nil, parseErrorf("bundle is nil")
	}
	doc := &ast.Document{}
	for _, pkg := range bundle.Packages {
		part, err := p.ParseScript(ctx, bytes.NewReader(pkg.Content), opts)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.Name, err)
		}
		doc.Merge(part)
	}
	return doc, nil
}

// ParseScript parses one script.
func (p *ExportParser) ParseScript(ctx context.Context, r io.Reader, opts rosconfig.ParseOptions) (*ast.Document, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	lines, err := logicalLines(r)
	if err != nil {
		return nil, err
	}

	doc := &ast.Document{}
	path := ""
	for _, ln := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tokens, err := tokenize(ln.text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", ln.number, err)
		}
		if len(tokens) == 0 {
			continue
		}
		if strings.HasPrefix(tokens[0], "/") {
			var rest []string
			path, rest = splitHeader(tokens)
			tokens = rest
			if len(tokens) == 0 {
				continue
			}
		}
		if path == "" {
			if opts.BestEffort {
				continue
			}
			return nil, parseErrorf("line %d: statement outside of any path", ln.number)
		}
		if err := applyStatement(doc, path, tokens, opts); err != nil {
			if opts.BestEffort {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", ln.number, err)
		}
	}
	return doc, nil
}

type line struct {
	number int
	text   string
}

// logicalLines joins backslash continuations and drops comments and blank
// lines.
func logicalLines(r io.Reader) ([]line, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	var (
		out     []line
		pending strings.Builder
		start   int
		n       int
	)
	for sc.Scan() {
		n++
		text := strings.TrimRight(sc.Text(), "\r")
		if pending.Len() > 0 {
			text = strings.TrimLeft(text, " \t")
		} else {
			start = n
			trimmed := strings.TrimSpace(text)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
		}
		if strings.HasSuffix(text, `\`) && !strings.HasSuffix(text, `\\`) {
			pending.WriteString(strings.TrimSuffix(text, `\`))
			continue
		}
		pending.WriteString(text)
		out = append(out, line{number: start, text: pending.String()})
		pending.Reset()
	}
	if err := sc.Err(); err != nil {
		return nil, parseErrorf("read script: %v", err)
	}
	if pending.Len() > 0 {
		out = append(out, line{number: start, text: pending.String()})
	}
	return out, nil
}

// tokenize splits on whitespace outside quotes and brackets.
func tokenize(s string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		depth   int
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(s):
			cur.WriteByte(c)
			cur.WriteByte(s[i+1])
			i++
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case inQuote:
			cur.WriteByte(c)
		case c == '[':
			depth++
			cur.WriteByte(c)
		case c == ']':
			if depth == 0 {
				return nil, parseErrorf("unbalanced ]")
			}
			depth--
			cur.WriteByte(c)
		case (c == ' ' || c == '\t') && depth == 0:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	if inQuote {
		return nil, parseErrorf("unterminated string")
	}
	if depth != 0 {
		return nil, parseErrorf("unbalanced [")
	}
	flush()
	return tokens, nil
}

var verbs = map[string]struct{}{
	"add": {}, "set": {}, "remove": {}, "print": {}, "export": {},
	"enable": {}, "disable": {}, "reset": {}, "unset": {}, "edit": {},
}

// splitHeader consumes "/interface bridge port" style path tokens up to the
// first verb.
func splitHeader(tokens []string) (string, []string) {
	i := 0
	for ; i < len(tokens); i++ {
		if _, ok := verbs[tokens[i]]; ok || strings.Contains(tokens[i], "=") || strings.HasPrefix(tokens[i], "[") {
			break
		}
	}
	return ast.NormalizePath(strings.Join(tokens[:i], " ")), tokens[i:]
}

func applyStatement(doc *ast.Document, path string, tokens []string, opts rosconfig.ParseOptions) error {
	verb := tokens[0]
	switch verb {
	case "add", "set":
	default:
		if opts.AllowUnknown {
			return nil
		}
		return parseErrorf("unsupported statement %q", verb)
	}

	entry := ast.NewEntry()
	for _, tok := range tokens[1:] {
		if strings.HasPrefix(tok, "[") {
			if verb != "set" {
				return parseErrorf("selector on %s", verb)
			}
			if err := applySelector(entry, tok); err != nil {
				return err
			}
			continue
		}
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			if opts.AllowUnknown {
				continue
			}
			return parseErrorf("unexpected token %q", tok)
		}
		text, err := Unquote(val)
		if err != nil {
			return err
		}
		entry.Set(key, text)
	}

	section := doc.Section(path)
	section.Entries = append(section.Entries, entry)
	return nil
}

// applySelector reads "[find k=v ...]" or "[ find where k=v and ... ]".
func applySelector(entry *ast.Entry, tok string) error {
	inner := strings.TrimSpace(tok[1 : len(tok)-1])
	parts, err := tokenize(inner)
	if err != nil {
		return err
	}
	if len(parts) == 0 || parts[0] != "find" {
		return parseErrorf("unsupported selector %s", tok)
	}
	for _, part := range parts[1:] {
		if part == "where" || part == "and" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return parseErrorf("unsupported selector term %q", part)
		}
		text, err := Unquote(val)
		if err != nil {
			return err
		}
		entry.Set(key, text)
	}
	return nil
}
