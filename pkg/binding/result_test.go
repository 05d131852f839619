package binding_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/binding"
)

func TestResult_MessagesGroupsAndDeduplicates(t *testing.T) {
	result := binding.NewResult("user", &struct{ ID int }{ID: 1})
	result.RejectValue("/owner/email", "pattern", "Email invalid", "x")
	result.RejectValue("owner.email", "pattern", " Email invalid ", "x")
	result.RejectValue("tags[0]", "minLength", "Too short", "")
	result.RejectValue("name", "required", "   ", nil)
	result.Reject("conflict", "Record changed")
	result.Reject("conflict", "Record changed")

	mapping := result.Messages()

	wantFields := map[string][]string{
		"owner.email": {"Email invalid"},
		"tags.0":      {"Too short"},
	}
	if diff := cmp.Diff(wantFields, mapping.Fields); diff != "" {
		t.Fatalf("field messages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Record changed"}, mapping.Form); diff != "" {
		t.Fatalf("form messages mismatch (-want +got):\n%s", diff)
	}
	if result.ErrorCount() != 6 {
		t.Fatalf("expected 6 recorded errors, got %d", result.ErrorCount())
	}
}

func TestResult_FieldErrorsWildcard(t *testing.T) {
	result := binding.NewResult("user", nil)
	result.RejectValue("owner.email", "pattern", "bad email", nil)
	result.RejectValue("owner.phone", "pattern", "bad phone", nil)
	result.RejectValue("ownership", "required", "missing", nil)

	if got := len(result.FieldErrors("owner.*")); got != 2 {
		t.Fatalf("expected 2 owner errors, got %d", got)
	}
	if got := len(result.FieldErrors("*")); got != 3 {
		t.Fatalf("expected wildcard to match every field, got %d", got)
	}
	if !result.HasFieldErrors("owner.email") {
		t.Fatalf("expected owner.email errors")
	}
	if result.HasFieldErrors("owner") {
		t.Fatalf("exact lookup must not match nested fields")
	}
	if len(result.GlobalErrors()) != 0 {
		t.Fatalf("expected no global errors")
	}
}

func TestResult_AddAllErrorsKeepsSourceObject(t *testing.T) {
	source := binding.NewResult("draft", nil)
	source.RejectValue("title", "required", "Title required", nil)

	result := binding.NewResult("post", nil)
	result.AddAllErrors(source)

	errs := result.Errors()
	if len(errs) != 1 || errs[0].Object != "draft" {
		t.Fatalf("expected copied error to keep its object, got %+v", errs)
	}
}

func TestResult_NilIsSafe(t *testing.T) {
	var result *binding.Result
	if result.HasErrors() || result.Target() != nil || result.ObjectName() != "" {
		t.Fatalf("nil result should report empty state")
	}
	result.Reject("x", "y")
	if result.Messages().Fields != nil {
		t.Fatalf("nil result should produce empty mapping")
	}
}

func TestFieldError_Codes(t *testing.T) {
	cases := []struct {
		name string
		err  binding.FieldError
		want []string
	}{
		{
			name: "field",
			err:  binding.FieldError{Object: "user", Field: "email", Code: "required"},
			want: []string{"required.user.email", "required.email", "required"},
		},
		{
			name: "global",
			err:  binding.FieldError{Object: "user", Code: "conflict"},
			want: []string{"conflict.user", "conflict"},
		},
		{
			name: "no code",
			err:  binding.FieldError{Object: "user", Field: "email"},
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.err.Codes()); diff != "" {
				t.Fatalf("codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeFieldPath(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"name":               "name",
		"/owner/email":       "owner.email",
		"#/owner/email":      "owner.email",
		"$.owner.email":      "owner.email",
		"tags[0]":            "tags.0",
		"owner/phone/~1ext":  "owner.phone./ext",
		"  .leading.dots.. ": "leading.dots",
	}
	for input, want := range cases {
		if got := binding.NormalizeFieldPath(input); got != want {
			t.Fatalf("NormalizeFieldPath(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestJoinPointer(t *testing.T) {
	if got := binding.JoinPointer([]string{"owner", "a/b", "0"}); got != "owner.a/b.0" {
		t.Fatalf("unexpected pointer path %q", got)
	}
	if got := binding.JoinPointer(nil); got != "" {
		t.Fatalf("expected empty path, got %q", got)
	}
}

func TestModelKey(t *testing.T) {
	key := binding.ModelKey("user")
	if key != binding.ModelKeyPrefix+"user" || !binding.IsModelKey(key) {
		t.Fatalf("unexpected model key %q", key)
	}
	if binding.IsModelKey("user") {
		t.Fatalf("plain attribute must not be a model key")
	}
}
