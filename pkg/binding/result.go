package binding

import (
	"strings"
)

// ModelKeyPrefix is prepended to an attribute name to form the model key of
// the binding result describing that attribute.
const ModelKeyPrefix = "formbind.binding.Result."

// ModelKey returns the model key under which the binding result for the named
// attribute is stored.
func ModelKey(name string) string {
	return ModelKeyPrefix + name
}

// IsModelKey reports whether key names a binding result slot.
func IsModelKey(key string) bool {
	return strings.HasPrefix(key, ModelKeyPrefix)
}

// Error codes recorded by the binder and validator.
const (
	CodeTypeMismatch = "typeMismatch"
	CodeInvalid      = "invalid"
)

// FieldError describes a single rejection. Global (object level) errors carry
// an empty Field.
type FieldError struct {
	Object   string `json:"object"`
	Field    string `json:"field,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
	Args     []any  `json:"args,omitempty"`
	Rejected any    `json:"rejected,omitempty"`
}

// Global reports whether the error applies to the object as a whole.
func (e FieldError) Global() bool {
	return e.Field == ""
}

// Codes returns message codes from most to least specific, e.g.
// "required.user.email", "required.email", "required".
func (e FieldError) Codes() []string {
	code := strings.TrimSpace(e.Code)
	if code == "" {
		return nil
	}
	if e.Global() {
		if e.Object == "" {
			return []string{code}
		}
		return []string{code + "." + e.Object, code}
	}
	codes := make([]string, 0, 3)
	if e.Object != "" {
		codes = append(codes, code+"."+e.Object+"."+e.Field)
	}
	return append(codes, code+"."+e.Field, code)
}

// Mapping splits recorded messages into field-level and form-level lists.
type Mapping struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Form   []string            `json:"form,omitempty"`
}

// Result collects the errors produced while binding and validating one target
// instance.
type Result struct {
	objectName string
	target     any
	errors     []FieldError
}

// NewResult creates an empty result for target, published in a model under
// ModelKey(objectName).
func NewResult(objectName string, target any) *Result {
	return &Result{
		objectName: strings.TrimSpace(objectName),
		target:     target,
	}
}

// ObjectName returns the attribute name the result describes.
func (r *Result) ObjectName() string {
	if r == nil {
		return ""
	}
	return r.objectName
}

// Target returns the instance the result was computed against.
func (r *Result) Target() any {
	if r == nil {
		return nil
	}
	return r.target
}

// ModelKey returns the key under which the result is stored in a model.
func (r *Result) ModelKey() string {
	return ModelKey(r.ObjectName())
}

// RejectValue records a field error.
func (r *Result) RejectValue(field, code, message string, rejected any, args ...any) {
	r.AddError(FieldError{
		Field:    field,
		Code:     code,
		Message:  message,
		Args:     args,
		Rejected: rejected,
	})
}

// Reject records a global error.
func (r *Result) Reject(code, message string, args ...any) {
	r.AddError(FieldError{
		Code:    code,
		Message: message,
		Args:    args,
	})
}

// AddError appends err, normalising its field path and defaulting the object
// name to the result's own.
func (r *Result) AddError(err FieldError) {
	if r == nil {
		return
	}
	if err.Object == "" {
		err.Object = r.objectName
	}
	err.Field = NormalizeFieldPath(err.Field)
	err.Message = strings.TrimSpace(err.Message)
	r.errors = append(r.errors, err)
}

// AddAllErrors copies every error from other.
func (r *Result) AddAllErrors(other *Result) {
	if r == nil || other == nil {
		return
	}
	for _, err := range other.errors {
		r.AddError(err)
	}
}

// HasErrors reports whether any error was recorded.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// ErrorCount returns the number of recorded errors.
func (r *Result) ErrorCount() int {
	if r == nil {
		return 0
	}
	return len(r.errors)
}

// Errors returns every recorded error in insertion order.
func (r *Result) Errors() []FieldError {
	if r == nil || len(r.errors) == 0 {
		return nil
	}
	return append([]FieldError(nil), r.errors...)
}

// GlobalErrors returns the object level errors.
func (r *Result) GlobalErrors() []FieldError {
	return r.filter(func(err FieldError) bool { return err.Global() })
}

// AllFieldErrors returns every field level error.
func (r *Result) AllFieldErrors() []FieldError {
	return r.filter(func(err FieldError) bool { return !err.Global() })
}

// FieldErrors returns the errors recorded for field. A trailing "*" matches
// any field with that prefix ("owner.*").
func (r *Result) FieldErrors(field string) []FieldError {
	match := fieldMatcher(field)
	return r.filter(func(err FieldError) bool {
		return !err.Global() && match(err.Field)
	})
}

// HasFieldErrors reports whether field has at least one error.
func (r *Result) HasFieldErrors(field string) bool {
	return len(r.FieldErrors(field)) > 0
}

// FieldValue returns the rejected value recorded with the first error of
// field, so forms can redisplay what the user submitted.
func (r *Result) FieldValue(field string) (any, bool) {
	errs := r.FieldErrors(field)
	if len(errs) == 0 {
		return nil, false
	}
	return errs[0].Rejected, true
}

// Messages groups messages by field path, trimming blanks and dropping
// duplicates while preserving order.
func (r *Result) Messages() Mapping {
	mapping := Mapping{Fields: make(map[string][]string)}
	if r == nil {
		mapping.Fields = nil
		return mapping
	}
	for _, err := range r.errors {
		if err.Global() {
			mapping.Form = append(mapping.Form, err.Message)
			continue
		}
		mapping.Fields[err.Field] = append(mapping.Fields[err.Field], err.Message)
	}
	for field, messages := range mapping.Fields {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			delete(mapping.Fields, field)
			continue
		}
		mapping.Fields[field] = normalized
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func (r *Result) filter(keep func(FieldError) bool) []FieldError {
	if r == nil {
		return nil
	}
	var out []FieldError
	for _, err := range r.errors {
		if keep(err) {
			out = append(out, err)
		}
	}
	return out
}

func fieldMatcher(field string) func(string) bool {
	field = strings.TrimSpace(field)
	if prefix, ok := strings.CutSuffix(field, "*"); ok {
		prefix = strings.TrimSuffix(NormalizeFieldPath(prefix), ".")
		return func(candidate string) bool {
			return prefix == "" || candidate == prefix || strings.HasPrefix(candidate, prefix+".")
		}
	}
	normalized := NormalizeFieldPath(field)
	return func(candidate string) bool {
		return candidate == normalized
	}
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
