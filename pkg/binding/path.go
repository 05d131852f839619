package binding

import (
	"strconv"
	"strings"
)

// NormalizeFieldPath converts JSON pointer ("/owner/email", "#/tags/0"),
// JSONPath ("$.owner.email") and bracket ("tags[0]") notations into the
// dotted paths used for field errors.
func NormalizeFieldPath(path string) string {
	return strings.Join(pathSegments(path), ".")
}

// JoinPointer renders pointer segments, as returned by
// openapi3.SchemaError.JSONPointer, as a dotted field path.
func JoinPointer(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return NormalizeFieldPath(strings.Join(escapePointer(segments), "/"))
}

func pathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil
	}

	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func escapePointer(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		segment = strings.ReplaceAll(segment, "~", "~0")
		segment = strings.ReplaceAll(segment, "/", "~1")
		out = append(out, segment)
	}
	return out
}

func isIndex(segment string) (int, bool) {
	if segment == "" {
		return 0, false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	return idx, true
}
