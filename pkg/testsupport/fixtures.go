package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/modelmap"
)

// LoadSchemas reads an OpenAPI fixture and fails the test on error.
func LoadSchemas(t *testing.T, path string) *binding.Schemas {
	t.Helper()

	schemas, err := LoadSchemasFromPath(path)
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}
	return schemas
}

// LoadSchemasFromPath returns the component schemas of an OpenAPI fixture
// without requiring testing.T.
func LoadSchemasFromPath(path string) (*binding.Schemas, error) {
	if path == "" {
		return nil, errors.New("testsupport: schema path is required")
	}
	schemas, err := binding.LoadSchemasFile(Context(), path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: load schemas: %w", err)
	}
	return schemas, nil
}

// MustLoadMapping loads a JSON golden file holding a binding.Mapping.
func MustLoadMapping(t *testing.T, path string) binding.Mapping {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load golden: %v", err)
	}
	var out binding.Mapping
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
	return out
}

// MustLoadModel reads a YAML or JSON fixture into an ordered attribute map,
// keeping the document order.
func MustLoadModel(t *testing.T, path string) *modelmap.Map {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load model: %v", err)
	}
	model, err := modelmap.Decode(data)
	if err != nil {
		t.Fatalf("decode model %s: %v", path, err)
	}
	return model
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, payload)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGoldenString reads a golden file and returns its content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureRenderOutput runs a render function that also writes to an
// io.Writer and returns both the result and the writer contents.
func CaptureRenderOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out, buf.String()
}
