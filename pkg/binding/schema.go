package binding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrSchemaNotFound is returned when a named component schema is not part of
// the loaded document.
var ErrSchemaNotFound = errors.New("binding: schema not found")

// Schemas exposes the component schemas of an OpenAPI document by name.
type Schemas struct {
	location string
	schemas  map[string]*openapi3.Schema
}

// LoadSchemas parses and validates an OpenAPI document (JSON or YAML) and
// indexes its component schemas.
func LoadSchemas(ctx context.Context, raw []byte) (*Schemas, error) {
	return loadSchemas(ctx, raw, "")
}

// LoadSchemasFile reads an OpenAPI document from disk.
func LoadSchemasFile(ctx context.Context, path string) (*Schemas, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("binding: schema path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("binding: read schema document: %w", err)
	}
	return loadSchemas(ctx, data, path)
}

// LoadSchemasFS reads an OpenAPI document from fsys.
func LoadSchemasFS(ctx context.Context, fsys fs.FS, name string) (*Schemas, error) {
	if fsys == nil {
		return nil, errors.New("binding: filesystem is not configured")
	}
	if name == "" {
		return nil, errors.New("binding: fs path is required")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("binding: read schema document: %w", err)
	}
	return loadSchemas(ctx, data, name)
}

func loadSchemas(ctx context.Context, raw []byte, location string) (*Schemas, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("binding: schema document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("binding: load schema document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("binding: validate schema document: %w", err)
	}

	out := &Schemas{
		location: location,
		schemas:  make(map[string]*openapi3.Schema),
	}
	if doc.Components != nil {
		for name, ref := range doc.Components.Schemas {
			if ref == nil || ref.Value == nil {
				continue
			}
			out.schemas[name] = ref.Value
		}
	}
	return out, nil
}

// Location returns the path the document was read from, if any.
func (s *Schemas) Location() string {
	if s == nil {
		return ""
	}
	return s.location
}

// Names returns the component schema names in sorted order.
func (s *Schemas) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.schemas))
	for name := range s.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named component schema.
func (s *Schemas) Lookup(name string) (*openapi3.Schema, error) {
	if s != nil {
		if schema, ok := s.schemas[strings.TrimSpace(name)]; ok {
			return schema, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, name)
}

// Properties lists the top level properties of the named schema in sorted
// order together with their primary type. Object properties carry their own
// properties and arrays their item description.
func (s *Schemas) Properties(name string) ([]Property, error) {
	schema, err := s.Lookup(name)
	if err != nil {
		return nil, err
	}
	return describeProperties(schema), nil
}

// Property summarises a schema property.
type Property struct {
	Name        string
	Type        string
	Description string
	Enum        []any
	Required    bool
	Items       *Property
	Properties  []Property
}

func describeProperties(schema *openapi3.Schema) []Property {
	if schema == nil || len(schema.Properties) == 0 {
		return nil
	}
	required := make(map[string]struct{}, len(schema.Required))
	for _, field := range schema.Required {
		required[field] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for field := range schema.Properties {
		names = append(names, field)
	}
	sort.Strings(names)

	out := make([]Property, 0, len(names))
	for _, field := range names {
		ref := schema.Properties[field]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := describe(field, ref.Value)
		_, prop.Required = required[field]
		out = append(out, prop)
	}
	return out
}

func describe(name string, schema *openapi3.Schema) Property {
	prop := Property{
		Name:        name,
		Type:        schemaType(schema),
		Description: schema.Description,
		Enum:        append([]any(nil), schema.Enum...),
	}
	switch prop.Type {
	case "array":
		if schema.Items != nil && schema.Items.Value != nil {
			items := describe("", schema.Items.Value)
			prop.Items = &items
		}
	case "object":
		prop.Properties = describeProperties(schema)
	}
	return prop
}

func schemaType(schema *openapi3.Schema) string {
	if schema == nil || schema.Type == nil {
		return ""
	}
	for _, value := range schema.Type.Slice() {
		if value != "null" {
			return value
		}
	}
	return ""
}

// schemaAt walks dotted path segments through properties and array items.
func schemaAt(schema *openapi3.Schema, segments []string) *openapi3.Schema {
	current := schema
	for _, segment := range segments {
		if current == nil {
			return nil
		}
		if _, ok := isIndex(segment); ok && current.Items != nil {
			current = current.Items.Value
			continue
		}
		ref, ok := current.Properties[segment]
		if !ok || ref == nil {
			return nil
		}
		current = ref.Value
	}
	return current
}
