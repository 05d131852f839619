package binding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// SchemaValidator checks targets against component schemas and records every
// violation on a Result.
type SchemaValidator struct {
	schemas *Schemas
}

// NewSchemaValidator builds a validator over the loaded schemas.
func NewSchemaValidator(schemas *Schemas) *SchemaValidator {
	return &SchemaValidator{schemas: schemas}
}

// Validate checks target against the named schema and returns a fresh result
// bound to target. Violations never surface as errors; the returned error
// covers lookup and encoding failures only.
func (v *SchemaValidator) Validate(ctx context.Context, objectName, schemaName string, target any) (*Result, error) {
	result := NewResult(objectName, target)
	if err := v.ValidateInto(ctx, result, schemaName); err != nil {
		return nil, err
	}
	return result, nil
}

// ValidateInto checks result.Target() against the named schema, appending to
// result.
func (v *SchemaValidator) ValidateInto(ctx context.Context, result *Result, schemaName string) error {
	if result == nil {
		return errors.New("binding: result is required")
	}
	return v.validateValue(ctx, result, schemaName, result.Target(), nil)
}

func (v *SchemaValidator) validateValue(ctx context.Context, result *Result, schemaName string, value any, skip func(string) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v == nil {
		return errors.New("binding: validator is nil")
	}
	schema, err := v.schemas.Lookup(schemaName)
	if err != nil {
		return err
	}

	doc, err := toJSONValue(value)
	if err != nil {
		return fmt.Errorf("binding: encode target: %w", err)
	}

	recordSchemaErrors(result, schema.VisitJSON(doc, openapi3.MultiErrors()), skip)
	return nil
}

func recordSchemaErrors(result *Result, err error, skip func(string) bool) {
	if err == nil {
		return
	}

	switch typed := err.(type) {
	case openapi3.MultiError:
		for _, inner := range typed {
			recordSchemaErrors(result, inner, skip)
		}
		return
	case *openapi3.SchemaError:
		field := JoinPointer(typed.JSONPointer())
		if skip != nil && skip(field) {
			return
		}
		code := strings.TrimSpace(typed.SchemaField)
		if code == "" {
			code = CodeInvalid
		}
		message := strings.TrimSpace(typed.Reason)
		if message == "" {
			message = typed.Error()
		}
		var rejected any
		if code != "required" {
			rejected = typed.Value
		}
		result.AddError(FieldError{
			Field:    field,
			Code:     code,
			Message:  message,
			Rejected: rejected,
		})
		return
	}

	result.Reject(CodeInvalid, err.Error())
}

func toJSONValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
