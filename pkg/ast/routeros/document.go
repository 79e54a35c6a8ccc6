package routeros

import (
	"sort"
	"strings"

	commonv1 "github.com/honeybbq/netjson/gen/go/netjson/common/v1"
)

// Document 表示一份完整的 RouterOS 配置（目标或当前状态）。
type Document struct {
	Sections []*Section
	Files    []*commonv1.IncludedFile
}

// Section 对应一个菜单路径（如 /interface/bridge）下的全部条目。
type Section struct {
	Path    string
	Entries []*Entry
}

// Entry 是最小 AST 节点：一条记录的属性。
type Entry struct {
	Options map[string]string
	Lists   map[string][]string
}

// NewEntry 创建 Entry 并初始化内部 map。
func NewEntry() *Entry {
	return &Entry{
		Options: make(map[string]string),
		Lists:   make(map[string][]string),
	}
}

// Set stores a scalar attribute.
func (e *Entry) Set(key, value string) *Entry {
	if e.Options == nil {
		e.Options = make(map[string]string)
	}
	e.Options[key] = value
	return e
}

// Append adds list elements under key.
func (e *Entry) Append(key string, values ...string) *Entry {
	if len(values) == 0 {
		return e
	}
	if e.Lists == nil {
		e.Lists = make(map[string][]string)
	}
	e.Lists[key] = append(e.Lists[key], values...)
	return e
}

// Get returns the attribute as it would appear on the wire. Lists are comma
// joined.
func (e *Entry) Get(key string) (string, bool) {
	if v, ok := e.Lists[key]; ok {
		return strings.Join(v, ","), true
	}
	v, ok := e.Options[key]
	return v, ok
}

// Row flattens the entry into the wire shape consumed by builders.
func (e *Entry) Row() map[string]string {
	row := make(map[string]string, len(e.Options)+len(e.Lists))
	for k, v := range e.Options {
		row[k] = v
	}
	for k, v := range e.Lists {
		row[k] = strings.Join(v, ",")
	}
	return row
}

// Keys returns every attribute name in sorted order.
func (e *Entry) Keys() []string {
	keys := make([]string, 0, len(e.Options)+len(e.Lists))
	for k := range e.Options {
		keys = append(keys, k)
	}
	for k := range e.Lists {
		if _, dup := e.Options[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Section returns the section for path, creating it at the end when absent.
func (d *Document) Section(path string) *Section {
	path = NormalizePath(path)
	for _, s := range d.Sections {
		if s != nil && s.Path == path {
			return s
		}
	}
	s := &Section{Path: path}
	d.Sections = append(d.Sections, s)
	return s
}

// Lookup returns the section for path without creating it.
func (d *Document) Lookup(path string) (*Section, bool) {
	path = NormalizePath(path)
	for _, s := range d.Sections {
		if s != nil && s.Path == path {
			return s, true
		}
	}
	return nil, false
}

// Add appends a new entry to the section at path.
func (d *Document) Add(path string) *Entry {
	s := d.Section(path)
	e := NewEntry()
	s.Entries = append(s.Entries, e)
	return e
}

// Merge appends every section of other into d, in other's order.
func (d *Document) Merge(other *Document) {
	if other == nil {
		return
	}
	for _, s := range other.Sections {
		if s == nil {
			continue
		}
		dst := d.Section(s.Path)
		dst.Entries = append(dst.Entries, s.Entries...)
	}
	d.Files = append(d.Files, other.Files...)
}

// NormalizePath turns export headers like "/interface bridge port" and
// loose input like "interface/bridge/port/" into "/interface/bridge/port".
func NormalizePath(path string) string {
	fields := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return "/"
	}
	return "/" + strings.Join(fields, "/")
}
