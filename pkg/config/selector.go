package config

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

type selector struct {
	manifests      map[string]*theme.Manifest
	names          []string
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*selector)(nil)

// Select resolves name and variant, falling back to the configured defaults.
// With no name and no default the first manifest by name wins. The default
// variant only applies to the default theme; otherwise an empty variant
// selects the base manifest.
func (s *selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	variant = strings.TrimSpace(variant)
	if name == "" {
		name = s.defaultTheme
	}
	if name == "" && len(s.names) > 0 {
		name = s.names[0]
	}
	if variant == "" && name == s.defaultTheme {
		variant = s.defaultVariant
	}

	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("config: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}
