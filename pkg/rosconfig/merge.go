package rosconfig

import (
	"encoding/json"
	"fmt"

	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"
)

// DefaultIdentifiers defines the field names used to match array elements during merge.
// When merging arrays of objects, elements are considered "the same" if they have
// matching values for any of these fields (checked in order).
var DefaultIdentifiers = []string{"name", "default-name", "id"}

// MergeJSON merges multiple JSON targets with later layers overriding earlier ones.
//
// Merge rules:
//   - Simple values (string, number, bool): later value overwrites earlier
//   - Objects (maps): recursively merged, with later keys overriding earlier
//   - Arrays: merged using identifier matching (see DefaultIdentifiers)
func MergeJSON(configs [][]byte, identifiers []string) ([]byte, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no configs to merge")
	}
	layers := make([]map[string]any, 0, len(configs))
	for i, cfg := range configs {
		var m map[string]any
		if err := json.Unmarshal(cfg, &m); err != nil {
			return nil, fmt.Errorf("unmarshal config[%d]: %w", i, err)
		}
		layers = append(layers, m)
	}
	merged, err := MergeMaps(layers, identifiers)
	if err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

// MergeYAML is MergeJSON for native YAML targets.
func MergeYAML(configs [][]byte, identifiers []string) ([]byte, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no configs to merge")
	}
	layers := make([]map[string]any, 0, len(configs))
	for i, cfg := range configs {
		var m map[string]any
		if err := yaml.Unmarshal(cfg, &m); err != nil {
			return nil, fmt.Errorf("unmarshal config[%d]: %w", i, err)
		}
		layers = append(layers, m)
	}
	merged, err := MergeMaps(layers, identifiers)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(merged)
}

// MergeMaps merges decoded layers (base → regional → device-specific). The
// inputs are not modified.
func MergeMaps(layers []map[string]any, identifiers []string) (map[string]any, error) {
	if identifiers == nil {
		identifiers = DefaultIdentifiers
	}
	result := make(map[string]any)
	for i, layer := range layers {
		var owned map[string]any
		if err := deepcopy.Copy(&owned, layer); err != nil {
			return nil, fmt.Errorf("copy config[%d]: %w", i, err)
		}
		result = deepMerge(result, owned, identifiers)
	}
	return result, nil
}

// deepMerge merges override into base in place. Both maps must be owned by
// the caller.
func deepMerge(base, override map[string]any, identifiers []string) map[string]any {
	if base == nil {
		return override
	}
	for key, overrideVal := range override {
		baseVal, exists := base[key]
		if !exists {
			base[key] = overrideVal
			continue
		}

		switch overrideVal := overrideVal.(type) {
		case map[string]any:
			if baseMap, ok := baseVal.(map[string]any); ok {
				base[key] = deepMerge(baseMap, overrideVal, identifiers)
			} else {
				base[key] = overrideVal
			}
		case []any:
			if baseSlice, ok := baseVal.([]any); ok {
				base[key] = mergeSlices(baseSlice, overrideVal, identifiers)
			} else {
				base[key] = overrideVal
			}
		default:
			base[key] = overrideVal
		}
	}
	return base
}

// mergeSlices merges two owned slices.
//
// Map elements sharing an identifier value are merged together; other
// elements are appended. Exact duplicates are skipped.
//
// Example with identifiers=["name"]:
//
//	base:     [{"name": "br0", "mtu": 1500}]
//	override: [{"name": "br0", "mtu": 9000}, {"name": "br1"}]
//	result:   [{"name": "br0", "mtu": 9000}, {"name": "br1"}]
func mergeSlices(base, override []any, identifiers []string) []any {
	if len(base) == 0 {
		return override
	}
	if len(override) == 0 {
		return base
	}

	// 建立 base 数组的索引（按标识符）
	baseIndex := make(map[any]int)
	for i, el := range base {
		if m, ok := el.(map[string]any); ok {
			if id := extractIdentifier(m, identifiers); id != nil {
				baseIndex[id] = i
			}
		}
	}

	result := base
	for _, overrideEl := range override {
		if isDuplicate(result, overrideEl) {
			continue
		}
		if m, ok := overrideEl.(map[string]any); ok {
			if id := extractIdentifier(m, identifiers); id != nil {
				if idx, found := baseIndex[id]; found {
					if baseMap, ok := result[idx].(map[string]any); ok {
						result[idx] = deepMerge(baseMap, m, identifiers)
						continue
					}
				}
			}
		}
		result = append(result, overrideEl)
	}
	return result
}

// extractIdentifier 从 map 中提取标识符的值。
// 按 identifiers 的顺序查找，返回第一个找到的值。
func extractIdentifier(m map[string]any, identifiers []string) any {
	for _, key := range identifiers {
		switch val := m[key].(type) {
		case string:
			if val != "" {
				return val
			}
		case float64, int, bool:
			return val
		}
	}
	return nil
}

// isDuplicate checks if an element already exists in a slice (exact match).
func isDuplicate(slice []any, el any) bool {
	elJSON, err := json.Marshal(el)
	if err != nil {
		return false
	}
	for _, item := range slice {
		itemJSON, err := json.Marshal(item)
		if err != nil {
			continue
		}
		if string(elJSON) == string(itemJSON) {
			return true
		}
	}
	return false
}
