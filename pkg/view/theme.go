package view

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// RendererConfig flattens a theme selection into the renderer configuration:
// fallbacks first, then manifest values, then variant overrides. Tokens are
// mirrored as CSS custom properties ("brand" -> "--brand").
func RendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}

	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: make(map[string]string),
		Tokens:   make(map[string]string),
		CSSVars:  make(map[string]string),
	}
	mergeStrings(cfg.Partials, fallbacks)

	prefix := ""
	files := make(map[string]string)
	if manifest := selection.Manifest; manifest != nil {
		mergeStrings(cfg.Tokens, manifest.Tokens)
		mergeStrings(cfg.Partials, manifest.Templates)
		prefix = manifest.Assets.Prefix
		mergeStrings(files, manifest.Assets.Files)

		if variant, ok := manifest.Variants[selection.Variant]; ok {
			mergeStrings(cfg.Tokens, variant.Tokens)
			mergeStrings(cfg.Partials, variant.Templates)
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
			mergeStrings(files, variant.Assets.Files)
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+key] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		return joinAssetPath(prefix, file)
	}
	return cfg
}

func (e *Engine) themeContext() (map[string]any, error) {
	if e.themeSelector == nil {
		return nil, nil
	}
	selection, err := e.themeSelector.Select(e.themeName, e.themeVariant)
	if err != nil {
		return nil, fmt.Errorf("view: select theme: %w", err)
	}
	cfg := RendererConfig(selection, e.themeFallbacks)
	if cfg == nil {
		return nil, nil
	}

	assets := make(map[string]string)
	if manifest := selection.Manifest; manifest != nil {
		keys := make(map[string]struct{})
		for key := range manifest.Assets.Files {
			keys[key] = struct{}{}
		}
		if variant, ok := manifest.Variants[selection.Variant]; ok {
			for key := range variant.Assets.Files {
				keys[key] = struct{}{}
			}
		}
		for key := range keys {
			assets[key] = cfg.AssetURL(key)
		}
	}

	return map[string]any{
		"name":         cfg.Theme,
		"variant":      cfg.Variant,
		"tokens":       cfg.Tokens,
		"cssVars":      cfg.CSSVars,
		"cssVarsStyle": cssVarsStyle(cfg.CSSVars),
		"partials":     cfg.Partials,
		"assets":       assets,
	}, nil
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}

func joinAssetPath(prefix, file string) string {
	if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
		return file
	}
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return file
	}
	return prefix + "/" + strings.TrimLeft(file, "/")
}

func mergeStrings(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}
