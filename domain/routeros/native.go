package routeros

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	helpers "github.com/honeybbq/rosreconcile/domain/utils"
	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
	"github.com/honeybbq/rosreconcile/pkg/nxerrors"
)

// LoadNative reads a target document written directly in RouterOS terms:
//
//	/interface/bridge:
//	  - name: br-lan
//	    vlan-filtering: true
//	/system/identity:
//	  name: core
//
// Each top-level key is a menu path holding either a list of entries or,
// for singletons, a single mapping. Sequences become list attributes and
// booleans are written as yes/no. Document order is preserved.
func LoadNative(data []byte) (*ast.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nxerrors.New(nxerrors.KindValidation, fmt.Errorf("parse native document: %w", err))
	}
	doc := &ast.Document{}
	if len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, nativeErrorf(top, "top level must be a mapping of menu paths")
	}
	for i := 0; i+1 < len(top.Content); i += 2 {
		path := ast.NormalizePath(top.Content[i].Value)
		body := top.Content[i+1]
		section := doc.Section(path)
		switch body.Kind {
		case yaml.MappingNode:
			entry, err := nativeEntry(body)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			section.Entries = append(section.Entries, entry)
		case yaml.SequenceNode:
			for idx, item := range body.Content {
				if item.Kind != yaml.MappingNode {
					return nil, fmt.Errorf("%s #%d: %w", path, idx, nativeErrorf(item, "entry must be a mapping"))
				}
				entry, err := nativeEntry(item)
				if err != nil {
					return nil, fmt.Errorf("%s #%d: %w", path, idx, err)
				}
				section.Entries = append(section.Entries, entry)
			}
		case yaml.ScalarNode:
			if body.Tag != "!!null" {
				return nil, nativeErrorf(body, "%s must hold entries", path)
			}
		default:
			return nil, nativeErrorf(body, "%s must hold entries", path)
		}
	}
	return doc, nil
}

func nativeEntry(node *yaml.Node) (*ast.Entry, error) {
	entry := ast.NewEntry()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.TrimSpace(node.Content[i].Value)
		val := node.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			if val.Tag == "!!null" {
				continue
			}
			entry.Set(key, scalarText(val))
		case yaml.SequenceNode:
			items := make([]string, 0, len(val.Content))
			for _, item := range val.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, nativeErrorf(item, "%s: list items must be scalars", key)
				}
				items = append(items, scalarText(item))
			}
			helpers.SetList(entry, key, items)
		default:
			return nil, nativeErrorf(val, "%s: nested mappings are not supported", key)
		}
	}
	return entry, nil
}

func scalarText(node *yaml.Node) string {
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err == nil {
			return helpers.FormatBool(b)
		}
	}
	return node.Value
}

func nativeErrorf(node *yaml.Node, format string, args ...any) error {
	return nxerrors.New(nxerrors.KindValidation, fmt.Errorf("line %d: %s", node.Line, fmt.Sprintf(format, args...)))
}
