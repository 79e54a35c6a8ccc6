package common

import (
	"encoding/json"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	ast "github.com/honeybbq/rosreconcile/pkg/ast/routeros"
)

// SetString stores a string attribute if non-empty.
func SetString(entry *ast.Entry, key, value string) {
	if entry == nil || value == "" {
		return
	}
	entry.Set(key, value)
}

// SetStringPtr stores the pointed string if not nil/empty.
func SetStringPtr(entry *ast.Entry, key string, value *string) {
	if value == nil {
		return
	}
	SetString(entry, key, *value)
}

// SetUint32Ptr stores uint32 pointer as decimal string.
func SetUint32Ptr(entry *ast.Entry, key string, value *uint32) {
	if entry == nil || value == nil {
		return
	}
	entry.Set(key, strconv.FormatUint(uint64(*value), 10))
}

// SetUint32Value stores uint32 value as decimal string if non-zero.
func SetUint32Value(entry *ast.Entry, key string, value uint32) {
	if entry == nil || value == 0 {
		return
	}
	entry.Set(key, strconv.FormatUint(uint64(value), 10))
}

// SetBool stores bool pointer as "yes"/"no".
func SetBool(entry *ast.Entry, key string, value *bool) {
	if entry == nil || value == nil {
		return
	}
	SetBoolValue(entry, key, *value)
}

// SetBoolValue stores bool value as "yes"/"no".
func SetBoolValue(entry *ast.Entry, key string, value bool) {
	if entry == nil {
		return
	}
	entry.Set(key, FormatBool(value))
}

// FormatBool renders a bool the way RouterOS prints it.
func FormatBool(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// SetList sets a list attribute after filtering empty values.
func SetList(entry *ast.Entry, key string, values []string) {
	if entry == nil || len(values) == 0 {
		return
	}
	filtered := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return
	}
	if entry.Lists == nil {
		entry.Lists = make(map[string][]string)
	}
	entry.Lists[key] = filtered
}

// AppendList appends a single value to a list attribute.
func AppendList(entry *ast.Entry, key string, value string) {
	if entry == nil || value == "" {
		return
	}
	entry.Append(key, value)
}

// OptionExists reports whether the attribute is already set.
func OptionExists(entry *ast.Entry, key string) bool {
	if entry == nil {
		return false
	}
	if _, ok := entry.Options[key]; ok {
		return true
	}
	_, ok := entry.Lists[key]
	return ok
}

// ProtoMessageToMap converts proto message into map via protojson.
func ProtoMessageToMap(msg proto.Message) map[string]any {
	if msg == nil {
		return nil
	}
	marshaler := protojson.MarshalOptions{
		UseProtoNames:   true,
		EmitUnpopulated: false,
	}
	data, err := marshaler.Marshal(msg)
	if err != nil {
		return nil
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil
	}
	return values
}

// ApplyOptionsFromMap writes values into entry, renaming keys through names.
// Keys missing from names are skipped, so callers choose exactly which
// NetJSON fields reach the device.
func ApplyOptionsFromMap(entry *ast.Entry, values map[string]any, names map[string]string) {
	if len(values) == 0 || entry == nil {
		return
	}
	for key, raw := range values {
		name, ok := names[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case string:
			SetString(entry, name, v)
		case bool:
			SetBoolValue(entry, name, v)
		case float64:
			SetString(entry, name, strconv.FormatInt(int64(v), 10))
		case []any:
			list := toStringSlice(v)
			if len(list) == 0 {
				continue
			}
			SetList(entry, name, list)
		}
	}
}

func toStringSlice(items []any) []string {
	if len(items) == 0 {
		return nil
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				result = append(result, v)
			}
		case bool:
			result = append(result, FormatBool(v))
		case float64:
			result = append(result, strconv.FormatInt(int64(v), 10))
		}
	}
	return result
}
