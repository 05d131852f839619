package view

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/modelmap"
)

// Reserved context keys. Model attributes with these names are shadowed.
const (
	// BindingsKey holds binding summaries keyed by object name.
	BindingsKey = "bindings"
	// AttributesKey holds the model attributes as an ordered list of
	// {name, value} pairs, binding results excluded.
	AttributesKey = "attributes"
	// ThemeKey holds the resolved theme, when a selector is configured.
	ThemeKey = "theme"
	// LocaleAttribute names the model attribute overriding the engine locale.
	LocaleAttribute = "locale"
)

func (e *Engine) buildContext(model *modelmap.BindingAwareMap) (pongo2.Context, error) {
	out := make(pongo2.Context)
	if model == nil {
		model = modelmap.NewBindingAware()
	}

	locale := e.locale
	if value, ok := model.Value(LocaleAttribute).(string); ok && strings.TrimSpace(value) != "" {
		locale = strings.TrimSpace(value)
	}

	bindings := make(map[string]any)
	attributes := make([]any, 0, model.Len())
	for name, value := range model.All() {
		if binding.IsModelKey(name) {
			if result, ok := value.(*binding.Result); ok {
				objectName := strings.TrimPrefix(name, binding.ModelKeyPrefix)
				bindings[objectName] = e.bindingSummary(result, locale)
			}
			continue
		}

		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		attributes = append(attributes, map[string]any{"name": name, "value": converted})
		if isIdentifier(name) {
			out[name] = converted
		}
	}

	out[AttributesKey] = attributes
	out[BindingsKey] = bindings
	out["field_errors"] = func(object, field string) []string {
		summary, ok := bindings[object].(map[string]any)
		if !ok {
			return nil
		}
		fields, _ := summary["fields"].(map[string][]string)
		return fields[binding.NormalizeFieldPath(field)]
	}

	themeCtx, err := e.themeContext()
	if err != nil {
		return nil, err
	}
	if themeCtx != nil {
		out[ThemeKey] = themeCtx
	}
	return out, nil
}

// bindingSummary exposes a result as {object, hasErrors, errorCount, fields,
// form} with messages resolved for locale.
func (e *Engine) bindingSummary(result *binding.Result, locale string) map[string]any {
	resolved := binding.NewResult(result.ObjectName(), nil)
	for _, err := range result.Errors() {
		err.Message = e.message(locale, err)
		resolved.AddError(err)
	}
	mapping := resolved.Messages()

	fields := mapping.Fields
	if fields == nil {
		fields = map[string][]string{}
	}
	return map[string]any{
		"object":     result.ObjectName(),
		"hasErrors":  result.HasErrors(),
		"errorCount": result.ErrorCount(),
		"fields":     fields,
		"form":       mapping.Form,
	}
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

func convertValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if isCallable(value) {
		return value, nil
	}

	switch v := value.(type) {
	case string, bool, int, int64, float64:
		return v, nil
	case map[string]any:
		return convertMap(v)
	case []any:
		return convertSlice(v)
	default:
		raw, err := jsonToAny(v)
		if err != nil {
			return nil, err
		}
		switch decoded := raw.(type) {
		case map[string]any:
			return convertMap(decoded)
		case []any:
			return convertSlice(decoded)
		default:
			return decoded, nil
		}
	}
}

func convertMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertSlice(in []any) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func jsonToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
