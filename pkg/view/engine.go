package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formbind/pkg/modelmap"
)

// ErrEngineNil is returned when rendering through a nil or unconfigured
// engine.
var ErrEngineNil = errors.New("view: engine is nil")

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir        string
	templates      fs.FS
	extension      string
	globalData     map[string]any
	policy         *bluemonday.Policy
	policyName     string
	policySet      bool
	translator     Translator
	locale         string
	themeSelector  theme.ThemeSelector
	themeName      string
	themeVariant   string
	themeFallbacks map[string]string
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default ".tpl" template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithSanitizer sets the policy behind the sanitize() template function. A
// nil policy disables sanitising: sanitize() then escapes its input.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.policy = policy
		cfg.policySet = true
	}
}

// WithSanitizePolicy selects a named policy: "strict", "ugc" or "none".
func WithSanitizePolicy(name string) Option {
	return func(cfg *config) {
		cfg.policyName = name
	}
}

// WithTranslator resolves binding error codes into localized messages.
func WithTranslator(t Translator) Option {
	return func(cfg *config) {
		cfg.translator = t
	}
}

// WithLocale sets the default locale. A string "locale" model attribute
// overrides it per render.
func WithLocale(locale string) Option {
	return func(cfg *config) {
		cfg.locale = strings.TrimSpace(locale)
	}
}

// WithThemeSelector resolves a go-theme selection on every render and exposes
// it to templates as "theme".
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(cfg *config) {
		cfg.themeSelector = selector
	}
}

// WithTheme sets the theme and variant requested from the selector.
func WithTheme(name, variant string) Option {
	return func(cfg *config) {
		cfg.themeName = strings.TrimSpace(name)
		cfg.themeVariant = strings.TrimSpace(variant)
	}
}

// WithThemeFallbacks sets partials used when the selected theme does not
// override them.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(cfg *config) {
		if len(fallbacks) == 0 {
			return
		}
		if cfg.themeFallbacks == nil {
			cfg.themeFallbacks = make(map[string]string, len(fallbacks))
		}
		for key, value := range fallbacks {
			cfg.themeFallbacks[key] = value
		}
	}
}

// Engine renders request models through pongo2 templates.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string

	policy         *bluemonday.Policy
	translator     Translator
	locale         string
	themeSelector  theme.ThemeSelector
	themeName      string
	themeVariant   string
	themeFallbacks map[string]string
}

// New constructs an Engine. Either a base directory or an fs.FS is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: ".tpl",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("view: need to provide either base dir or fs.FS")
	}

	policy := cfg.policy
	if !cfg.policySet {
		resolved, err := SanitizePolicy(cfg.policyName)
		if err != nil {
			return nil, err
		}
		policy = resolved
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("view: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	engine := &Engine{
		templateSet:    pongo2.NewSet("formbind", loaders...),
		templates:      make(map[string]*pongo2.Template),
		tplExt:         cfg.extension,
		policy:         policy,
		translator:     cfg.translator,
		locale:         cfg.locale,
		themeSelector:  cfg.themeSelector,
		themeName:      cfg.themeName,
		themeVariant:   cfg.themeVariant,
		themeFallbacks: cfg.themeFallbacks,
	}
	registerDefaultFilters()

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("view: apply global data: %w", err)
	}
	if err := engine.GlobalContext(map[string]any{"sanitize": engine.sanitizeFunc()}); err != nil {
		return nil, fmt.Errorf("view: register sanitize: %w", err)
	}

	return engine, nil
}

// Render renders a named template, or inline template content when name
// contains template tags.
func (e *Engine) Render(ctx context.Context, name string, model *modelmap.BindingAwareMap, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return e.RenderString(ctx, name, model, out...)
	}
	return e.RenderTemplate(ctx, name, model, out...)
}

// RenderTemplate renders the named template file; the engine extension is
// appended when missing.
func (e *Engine) RenderTemplate(ctx context.Context, name string, model *modelmap.BindingAwareMap, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", ErrEngineNil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	templatePath := name
	if !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, model, fmt.Sprintf("template %q", templatePath), out)
}

// RenderString renders inline template content.
func (e *Engine) RenderString(ctx context.Context, templateContent string, model *modelmap.BindingAwareMap, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", ErrEngineNil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("view: parse template string: %w", err)
	}
	return e.execute(tmpl, model, "template string", out)
}

// GlobalContext seeds global data on the template set.
func (e *Engine) GlobalContext(data map[string]any) error {
	if e == nil || e.templateSet == nil {
		return ErrEngineNil
	}
	if len(data) == 0 {
		return nil
	}

	globalCtx := make(pongo2.Context, len(data))
	for key, value := range data {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if isCallable(value) {
			globalCtx[key] = value
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return err
		}
		globalCtx[key] = converted
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

func (e *Engine) execute(tmpl *pongo2.Template, model *modelmap.BindingAwareMap, label string, out []io.Writer) (string, error) {
	viewContext, err := e.buildContext(model)
	if err != nil {
		return "", fmt.Errorf("view: convert model: %w", err)
	}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()

	if err != nil {
		return "", fmt.Errorf("view: execute %s: %w", label, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("view: load template %q: %w", path, err)
	}

	e.templates[path] = tmpl
	return tmpl, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
