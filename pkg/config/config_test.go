package config_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/config"
)

func loadFixture(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join("testdata", "formbind.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestLoad_YAMLFixture(t *testing.T) {
	cfg := loadFixture(t)

	if cfg.Sanitize != "strict" || cfg.Locale != "en" || cfg.Extension != "html" {
		t.Fatalf("unexpected scalar fields: %+v", cfg)
	}
	if got, want := cfg.TemplatesDir(), filepath.Join("testdata", "views"); got != want {
		t.Fatalf("templates dir: want %q, got %q", want, got)
	}
	if diff := cmp.Diff([]string{"title", "locale", "steps"}, cfg.Model.Keys()); diff != "" {
		t.Fatalf("seed order mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Theme.Manifests) != 2 {
		t.Fatalf("expected 2 manifests, got %d", len(cfg.Theme.Manifests))
	}
}

func TestParse_JSON(t *testing.T) {
	cfg, err := config.Parse([]byte(`{"templates":"/srv/views","model":{"b":1,"a":2}}`), "inline.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.TemplatesDir() != "/srv/views" {
		t.Fatalf("absolute paths should be kept, got %q", cfg.TemplatesDir())
	}
	if diff := cmp.Diff([]string{"b", "a"}, cfg.Model.Keys()); diff != "" {
		t.Fatalf("seed order mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":          "  ",
		"invalid":        "templates: [unclosed",
		"policy":         "sanitize: lenient",
		"unnamed theme":  "theme:\n  manifests:\n    - version: 1.0.0\n",
		"duplicate":      "theme:\n  manifests:\n    - name: a\n    - name: a\n",
		"unknown select": "theme:\n  name: b\n  manifests:\n    - name: a\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Parse([]byte(raw), name+".yaml"); err == nil {
				t.Fatalf("expected error for %q", raw)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join("testdata", "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
	if _, err := config.Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestConfig_SchemasResolveRelativeToFile(t *testing.T) {
	cfg := loadFixture(t)
	schemas, err := cfg.Schemas(context.Background())
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}
	if _, err := schemas.Lookup("Signup"); err != nil {
		t.Fatalf("lookup Signup: %v", err)
	}
}

func TestConfig_SchemasRequiresPath(t *testing.T) {
	cfg, err := config.Parse([]byte("locale: en"), "inline.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := cfg.Schemas(context.Background()); err == nil {
		t.Fatalf("expected error without schema")
	}
}

func TestConfig_SeedReturnsFreshModels(t *testing.T) {
	cfg := loadFixture(t)

	first := cfg.Seed()
	first.Put("title", "changed")
	first.Put("extra", true)

	second := cfg.Seed()
	if got := second.Value("title"); got != "Create account" {
		t.Fatalf("seed leaked between models, got %v", got)
	}
	if second.Contains("extra") {
		t.Fatalf("seed leaked extra attribute")
	}
}

func TestConfig_Translator(t *testing.T) {
	cfg := loadFixture(t)
	translator := cfg.Translator()
	if translator == nil {
		t.Fatalf("expected translator")
	}

	cases := []struct {
		locale string
		key    string
		args   []any
		want   string
	}{
		{locale: "es", key: "required.email", want: "El correo es obligatorio"},
		{locale: "fr", key: "required.email", want: "Email is required"},
		{locale: "en", key: "minLength.name", args: []any{2}, want: "Name needs at least 2 characters"},
	}
	for _, tc := range cases {
		got, err := translator.Translate(tc.locale, tc.key, tc.args...)
		if err != nil {
			t.Fatalf("translate %s/%s: %v", tc.locale, tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("translate %s/%s: want %q, got %q", tc.locale, tc.key, tc.want, got)
		}
	}
	if _, err := translator.Translate("en", "missing"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestConfig_ThemeSelector(t *testing.T) {
	cfg := loadFixture(t)
	selector := cfg.ThemeSelector()
	if selector == nil {
		t.Fatalf("expected selector")
	}

	selection, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select defaults: %v", err)
	}
	if selection.Theme != "acme" || selection.Variant != "dark" {
		t.Fatalf("unexpected default selection %s/%s", selection.Theme, selection.Variant)
	}
	if selection.Manifest.Variants["dark"].Tokens["brand"] != "#654321" {
		t.Fatalf("variant tokens not carried into manifest")
	}

	if _, err := selector.Select("missing", ""); !errors.Is(err, config.ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
	if _, err := selector.Select("plain", "dark"); err == nil {
		t.Fatalf("expected unknown variant error")
	}
}

func TestConfig_ThemeProviderRegistersManifests(t *testing.T) {
	cfg := loadFixture(t)
	if _, err := cfg.ThemeProvider(); err != nil {
		t.Fatalf("theme provider: %v", err)
	}
}

func TestConfig_ViewOptionsWithoutTemplates(t *testing.T) {
	cfg, err := config.Parse([]byte("locale: en"), "inline.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.ThemeSelector() != nil {
		t.Fatalf("expected nil selector without manifests")
	}
	if got := len(cfg.ViewOptions()); got != 2 {
		t.Fatalf("expected sanitize and locale options only, got %d", got)
	}
}

func TestConfig_ThemeSelectorDefaultVariantOnlyForDefaultTheme(t *testing.T) {
	cfg := loadFixture(t)
	selection, err := cfg.ThemeSelector().Select("plain", "")
	if err != nil {
		t.Fatalf("select plain: %v", err)
	}
	if selection.Variant != "" {
		t.Fatalf("expected base variant, got %q", selection.Variant)
	}
}
