package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/modelmap"
	"github.com/goliatone/go-formbind/pkg/view"
)

// ErrThemeNotFound is returned by the theme selector for unknown themes.
var ErrThemeNotFound = errors.New("config: theme not found")

// Config describes a formbind project: where templates and schemas live, how
// views are rendered and which attributes every model starts with.
type Config struct {
	Templates string `json:"templates" yaml:"templates"`
	Extension string `json:"extension" yaml:"extension"`
	Schema    string `json:"schema" yaml:"schema"`
	Sanitize  string `json:"sanitize" yaml:"sanitize"`
	Locale    string `json:"locale" yaml:"locale"`

	Theme ThemeConfig `json:"theme" yaml:"theme"`

	// Messages maps locale to message code to text.
	Messages map[string]map[string]string `json:"messages" yaml:"messages"`

	// Model holds the seed attributes, in file order.
	Model *modelmap.Map `json:"model" yaml:"model"`

	source string
}

// ThemeConfig selects a theme and declares the available manifests.
type ThemeConfig struct {
	Name      string            `json:"name" yaml:"name"`
	Variant   string            `json:"variant" yaml:"variant"`
	Fallbacks map[string]string `json:"fallbacks" yaml:"fallbacks"`
	Manifests []ManifestConfig  `json:"manifests" yaml:"manifests"`
}

// ManifestConfig is the file form of a go-theme manifest.
type ManifestConfig struct {
	Name      string                   `json:"name" yaml:"name"`
	Version   string                   `json:"version" yaml:"version"`
	Tokens    map[string]string        `json:"tokens" yaml:"tokens"`
	Templates map[string]string        `json:"templates" yaml:"templates"`
	Assets    AssetsConfig             `json:"assets" yaml:"assets"`
	Variants  map[string]VariantConfig `json:"variants" yaml:"variants"`
}

// VariantConfig overrides manifest values for one variant.
type VariantConfig struct {
	Tokens    map[string]string `json:"tokens" yaml:"tokens"`
	Templates map[string]string `json:"templates" yaml:"templates"`
	Assets    AssetsConfig      `json:"assets" yaml:"assets"`
}

// AssetsConfig maps asset keys to files below Prefix.
type AssetsConfig struct {
	Prefix string            `json:"prefix" yaml:"prefix"`
	Files  map[string]string `json:"files" yaml:"files"`
}

// Load reads and parses a configuration file. Relative paths inside the file
// resolve against its directory.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("config: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes JSON or YAML configuration. source names the file for error
// messages and path resolution.
func Parse(data []byte, source string) (*Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("config: file %s is empty", source)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg = Config{}
		if yerr := yaml.Unmarshal(data, &cfg); yerr != nil {
			return nil, fmt.Errorf("config: parse %s: invalid JSON or YAML: %w", source, yerr)
		}
	}
	cfg.source = source

	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	c.Templates = strings.TrimSpace(c.Templates)
	c.Schema = strings.TrimSpace(c.Schema)
	c.Sanitize = strings.ToLower(strings.TrimSpace(c.Sanitize))
	c.Locale = strings.TrimSpace(c.Locale)
	c.Theme.Name = strings.TrimSpace(c.Theme.Name)
	c.Theme.Variant = strings.TrimSpace(c.Theme.Variant)

	if _, err := view.SanitizePolicy(c.Sanitize); err != nil {
		return fmt.Errorf("config: file %s: %w", c.source, err)
	}

	seen := make(map[string]struct{}, len(c.Theme.Manifests))
	for idx := range c.Theme.Manifests {
		name := strings.TrimSpace(c.Theme.Manifests[idx].Name)
		if name == "" {
			return fmt.Errorf("config: file %s theme manifest %d has no name", c.source, idx)
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("config: file %s defines duplicate theme %q", c.source, name)
		}
		seen[name] = struct{}{}
		c.Theme.Manifests[idx].Name = name
	}
	if c.Theme.Name != "" && len(c.Theme.Manifests) > 0 {
		if _, ok := seen[c.Theme.Name]; !ok {
			return fmt.Errorf("config: file %s selects unknown theme %q", c.source, c.Theme.Name)
		}
	}

	if c.Model == nil {
		c.Model = modelmap.New()
	}
	return nil
}

// Source returns the file the configuration was read from.
func (c *Config) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// TemplatesDir returns the templates directory resolved against the config
// file's directory.
func (c *Config) TemplatesDir() string {
	return c.resolve(c.Templates)
}

// SchemaPath returns the OpenAPI document path resolved against the config
// file's directory.
func (c *Config) SchemaPath() string {
	return c.resolve(c.Schema)
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.source == "" {
		return path
	}
	return filepath.Join(filepath.Dir(c.source), path)
}

// Schemas loads the configured OpenAPI document.
func (c *Config) Schemas(ctx context.Context) (*binding.Schemas, error) {
	path := c.SchemaPath()
	if path == "" {
		return nil, fmt.Errorf("config: file %s does not declare a schema", c.source)
	}
	return binding.LoadSchemasFile(ctx, path)
}

// Seed returns a fresh binding-aware model holding the seed attributes.
func (c *Config) Seed() *modelmap.BindingAwareMap {
	model := modelmap.NewBindingAware()
	if c != nil && c.Model != nil {
		model.PutAll(c.Model.Clone())
	}
	return model
}

// Translator resolves message codes from Messages, falling back to the
// configured locale. It returns nil when no messages are configured.
func (c *Config) Translator() view.Translator {
	if c == nil || len(c.Messages) == 0 {
		return nil
	}
	messages := c.Messages
	fallback := c.Locale
	return view.TranslatorFunc(func(locale, key string, args ...any) (string, error) {
		for _, candidate := range []string{locale, fallback} {
			if text, ok := messages[candidate][key]; ok {
				if len(args) > 0 && strings.Contains(text, "%") {
					return fmt.Sprintf(text, args...), nil
				}
				return text, nil
			}
		}
		return "", fmt.Errorf("config: no message %q for locale %q", key, locale)
	})
}

// ThemeProvider registers every configured manifest with a go-theme registry.
func (c *Config) ThemeProvider() (theme.ThemeProvider, error) {
	registry := theme.NewRegistry()
	for _, manifest := range c.manifests() {
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("config: register theme %q: %w", manifest.Name, err)
		}
	}
	return registry, nil
}

// ThemeSelector returns a selector over the configured manifests, or nil when
// none are declared.
func (c *Config) ThemeSelector() theme.ThemeSelector {
	manifests := c.manifests()
	if len(manifests) == 0 {
		return nil
	}
	selector := &selector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   c.Theme.Name,
		defaultVariant: c.Theme.Variant,
	}
	for _, manifest := range manifests {
		selector.manifests[manifest.Name] = manifest
		selector.names = append(selector.names, manifest.Name)
	}
	sort.Strings(selector.names)
	return selector
}

// ViewOptions translates the configuration into view engine options.
func (c *Config) ViewOptions() []view.Option {
	options := []view.Option{
		view.WithSanitizePolicy(c.Sanitize),
		view.WithLocale(c.Locale),
	}
	if dir := c.TemplatesDir(); dir != "" {
		options = append(options, view.WithBaseDir(dir))
	}
	if c.Extension != "" {
		options = append(options, view.WithExtension(c.Extension))
	}
	if translator := c.Translator(); translator != nil {
		options = append(options, view.WithTranslator(translator))
	}
	if selector := c.ThemeSelector(); selector != nil {
		options = append(options,
			view.WithThemeSelector(selector),
			view.WithTheme(c.Theme.Name, c.Theme.Variant),
			view.WithThemeFallbacks(c.Theme.Fallbacks),
		)
	}
	return options
}

func (c *Config) manifests() []*theme.Manifest {
	if c == nil {
		return nil
	}
	out := make([]*theme.Manifest, 0, len(c.Theme.Manifests))
	for _, raw := range c.Theme.Manifests {
		manifest := &theme.Manifest{
			Name:      raw.Name,
			Version:   raw.Version,
			Tokens:    raw.Tokens,
			Templates: raw.Templates,
			Assets:    theme.Assets{Prefix: raw.Assets.Prefix, Files: raw.Assets.Files},
		}
		if len(raw.Variants) > 0 {
			manifest.Variants = make(map[string]theme.Variant, len(raw.Variants))
			for name, variant := range raw.Variants {
				manifest.Variants[name] = theme.Variant{
					Tokens:    variant.Tokens,
					Templates: variant.Templates,
					Assets:    theme.Assets{Prefix: variant.Assets.Prefix, Files: variant.Assets.Files},
				}
			}
		}
		out = append(out, manifest)
	}
	return out
}
