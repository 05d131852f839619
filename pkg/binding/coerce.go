package binding

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const maxIndex = 1024

// Coercer turns submitted form values into a JSON shaped payload, converting
// strings according to the property types declared by a schema.
type Coercer struct {
	schemas *Schemas
}

// NewCoercer builds a coercer over the loaded schemas.
func NewCoercer(schemas *Schemas) *Coercer {
	return &Coercer{schemas: schemas}
}

// Coerce builds a nested payload from dotted or bracketed form keys
// ("owner.email", "tags[0]"). Values that cannot be converted are recorded on
// result as typeMismatch errors and left out of the payload.
func (c *Coercer) Coerce(schemaName string, values url.Values, result *Result) (map[string]any, error) {
	if c == nil {
		return nil, fmt.Errorf("binding: coercer is nil")
	}
	schema, err := c.schemas.Lookup(schemaName)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var payload any = map[string]any{}
	for _, key := range keys {
		segments := pathSegments(key)
		if len(segments) == 0 {
			continue
		}
		field := strings.Join(segments, ".")
		raw := values[key]

		value, skip, err := coerceValue(schemaAt(schema, segments), raw)
		if err != nil {
			result.RejectValue(field, CodeTypeMismatch, err.Error(), firstValue(raw))
			continue
		}
		if skip {
			continue
		}
		next, ok := assign(payload, segments, value)
		if !ok {
			result.RejectValue(field, CodeTypeMismatch, fmt.Sprintf("field %q cannot be assigned", field), firstValue(raw))
			continue
		}
		payload = next
	}

	out, _ := compact(payload).(map[string]any)
	return out, nil
}

func coerceValue(schema *openapi3.Schema, raw []string) (any, bool, error) {
	if schemaType(schema) == "array" {
		var items *openapi3.Schema
		if schema.Items != nil {
			items = schema.Items.Value
		}
		out := make([]any, 0, len(raw))
		for _, value := range raw {
			if strings.TrimSpace(value) == "" {
				continue
			}
			converted, err := coerceScalar(items, value)
			if err != nil {
				return nil, false, err
			}
			out = append(out, converted)
		}
		return out, false, nil
	}

	if len(raw) == 0 {
		return nil, true, nil
	}
	value := raw[0]
	switch schemaType(schema) {
	case "", "string":
		return value, false, nil
	}
	if strings.TrimSpace(value) == "" {
		return nil, true, nil
	}
	converted, err := coerceScalar(schema, value)
	return converted, false, err
}

func coerceScalar(schema *openapi3.Schema, value string) (any, error) {
	trimmed := strings.TrimSpace(value)
	switch kind := schemaType(schema); kind {
	case "integer":
		parsed, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid integer", value)
		}
		return parsed, nil
	case "number":
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid number", value)
		}
		return parsed, nil
	case "boolean":
		switch strings.ToLower(trimmed) {
		case "on", "yes":
			return true, nil
		case "off", "no":
			return false, nil
		}
		parsed, err := strconv.ParseBool(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid boolean", value)
		}
		return parsed, nil
	case "object", "array":
		return nil, fmt.Errorf("%q cannot be converted to %s", value, kind)
	default:
		return value, nil
	}
}

// assign stores value at segments inside node, creating maps for names and
// slices for numeric indexes.
func assign(node any, segments []string, value any) (any, bool) {
	if len(segments) == 0 {
		return value, true
	}
	head := segments[0]
	if idx, ok := isIndex(head); ok {
		if idx >= maxIndex {
			return node, false
		}
		list, isList := node.([]any)
		if node != nil && !isList {
			return node, false
		}
		for len(list) <= idx {
			list = append(list, nil)
		}
		child, ok := assign(list[idx], segments[1:], value)
		if !ok {
			return node, false
		}
		list[idx] = child
		return list, true
	}

	obj, isObj := node.(map[string]any)
	if node != nil && !isObj {
		return node, false
	}
	if obj == nil {
		obj = make(map[string]any)
	}
	child, ok := assign(obj[head], segments[1:], value)
	if !ok {
		return node, false
	}
	obj[head] = child
	return obj, true
}

// compact drops the nil padding assign leaves for indexes that were never
// submitted, so "tags[3]" alone binds as a one element list.
func compact(node any) any {
	switch typed := node.(type) {
	case map[string]any:
		for key, child := range typed {
			typed[key] = compact(child)
		}
		return typed
	case []any:
		out := typed[:0]
		for _, child := range typed {
			if child == nil {
				continue
			}
			out = append(out, compact(child))
		}
		return out
	default:
		return node
	}
}

func firstValue(values []string) any {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}
