package binding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
)

// Binder populates targets from submitted data and validates what was
// submitted against a component schema.
type Binder struct {
	coercer   *Coercer
	validator *SchemaValidator
}

// NewBinder builds a binder over the loaded schemas.
func NewBinder(schemas *Schemas) *Binder {
	return &Binder{
		coercer:   NewCoercer(schemas),
		validator: NewSchemaValidator(schemas),
	}
}

// Validator returns the schema validator used after binding.
func (b *Binder) Validator() *SchemaValidator {
	if b == nil {
		return nil
	}
	return b.validator
}

// BindForm coerces form values by schema type, decodes them into target and
// validates the submitted payload. Fields rejected during coercion or decoding
// are not reported again by schema validation.
func (b *Binder) BindForm(ctx context.Context, objectName, schemaName string, values url.Values, target any) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errors.New("binding: binder is nil")
	}
	if err := checkTarget(target); err != nil {
		return nil, err
	}

	result := NewResult(objectName, target)
	payload, err := b.coercer.Coerce(schemaName, values, result)
	if err != nil {
		return nil, err
	}
	return b.finish(ctx, result, schemaName, payload, target)
}

// BindJSON decodes a JSON body into target and validates it.
func (b *Binder) BindJSON(ctx context.Context, objectName, schemaName string, body io.Reader, target any) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errors.New("binding: binder is nil")
	}
	if body == nil {
		return nil, errors.New("binding: body is required")
	}
	if err := checkTarget(target); err != nil {
		return nil, err
	}
	if _, err := b.validator.schemas.Lookup(schemaName); err != nil {
		return nil, err
	}

	var payload any
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("binding: decode body: %w", err)
	}
	return b.finish(ctx, NewResult(objectName, target), schemaName, payload, target)
}

func (b *Binder) finish(ctx context.Context, result *Result, schemaName string, payload, target any) (*Result, error) {
	if err := decodeInto(payload, target, result); err != nil {
		return nil, err
	}

	rejected := make(map[string]struct{})
	for _, err := range result.AllFieldErrors() {
		rejected[err.Field] = struct{}{}
	}
	skip := func(field string) bool {
		_, ok := rejected[field]
		return ok
	}
	if err := b.validator.validateValue(ctx, result, schemaName, payload, skip); err != nil {
		return nil, err
	}
	return result, nil
}

func decodeInto(payload, target any, result *Result) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("binding: encode payload: %w", err)
	}
	err = json.NewDecoder(bytes.NewReader(raw)).Decode(target)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			result.Reject(CodeTypeMismatch, fmt.Sprintf("cannot bind %s into %s", typeErr.Value, typeErr.Type))
			return nil
		}
		result.RejectValue(field, CodeTypeMismatch, fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value), typeErr.Value)
		return nil
	}
	return fmt.Errorf("binding: decode target: %w", err)
}

func checkTarget(target any) error {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("binding: target must be a non-nil pointer")
	}
	return nil
}
