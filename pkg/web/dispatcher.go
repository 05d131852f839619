package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goliatone/go-formbind/pkg/modelmap"
)

// RedirectPrefix marks a view name as a redirect target: "redirect:/done".
const RedirectPrefix = "redirect:"

// ErrNoModel is returned by ModelFrom when the context carries no model.
var ErrNoModel = errors.New("web: no model in context")

type modelKey struct{}

// WithModel stores the request model on ctx.
func WithModel(ctx context.Context, model *modelmap.BindingAwareMap) context.Context {
	return context.WithValue(ctx, modelKey{}, model)
}

// ModelFrom returns the request model stored by WithModel.
func ModelFrom(ctx context.Context) (*modelmap.BindingAwareMap, error) {
	if ctx == nil {
		return nil, ErrNoModel
	}
	model, ok := ctx.Value(modelKey{}).(*modelmap.BindingAwareMap)
	if !ok || model == nil {
		return nil, ErrNoModel
	}
	return model, nil
}

// Controller handles a request by filling model and returning the view to
// render. An empty view means the controller wrote the response itself.
type Controller func(w http.ResponseWriter, r *http.Request, model *modelmap.BindingAwareMap) (string, error)

// Renderer renders a named view against a model. *view.Engine satisfies it.
type Renderer interface {
	Render(ctx context.Context, name string, model *modelmap.BindingAwareMap, out ...io.Writer) (string, error)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for controller and render failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithGlobals seeds every request model with a copy of attrs.
func WithGlobals(attrs *modelmap.Map) Option {
	return func(d *Dispatcher) {
		d.globals = attrs
	}
}

// WithSeed replaces the per-request model constructor.
func WithSeed(seed func() *modelmap.BindingAwareMap) Option {
	return func(d *Dispatcher) {
		if seed != nil {
			d.seed = seed
		}
	}
}

// WithContentType overrides the "text/html; charset=utf-8" response type.
func WithContentType(contentType string) Option {
	return func(d *Dispatcher) {
		if trimmed := strings.TrimSpace(contentType); trimmed != "" {
			d.contentType = trimmed
		}
	}
}

// Dispatcher adapts controllers to http.Handler, giving each request a fresh
// model and rendering the view the controller selects.
type Dispatcher struct {
	renderer    Renderer
	logger      *slog.Logger
	globals     *modelmap.Map
	seed        func() *modelmap.BindingAwareMap
	contentType string
}

// NewDispatcher builds a Dispatcher rendering through renderer.
func NewDispatcher(renderer Renderer, options ...Option) *Dispatcher {
	d := &Dispatcher{
		renderer:    renderer,
		logger:      slog.Default(),
		seed:        modelmap.NewBindingAware,
		contentType: "text/html; charset=utf-8",
	}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Handle wraps controller as an http.Handler.
func (d *Dispatcher) Handle(controller Controller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		model := d.newModel()
		r = r.WithContext(WithModel(r.Context(), model))

		view, err := controller(w, r, model)
		if err != nil {
			d.fail(w, r, "controller failed", err)
			return
		}

		view = strings.TrimSpace(view)
		switch {
		case view == "":
			return
		case strings.HasPrefix(view, RedirectPrefix):
			target := strings.TrimSpace(strings.TrimPrefix(view, RedirectPrefix))
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		if d.renderer == nil {
			d.fail(w, r, "render failed", errors.New("web: no renderer configured"))
			return
		}
		var buf bytes.Buffer
		if _, err := d.renderer.Render(r.Context(), view, model, &buf); err != nil {
			d.fail(w, r, "render failed", err, slog.String("view", view))
			return
		}

		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", d.contentType)
		}
		if _, err := buf.WriteTo(w); err != nil {
			d.logger.Warn("write response", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
	})
}

// HandleFunc registers controller on mux under pattern.
func (d *Dispatcher) HandleFunc(mux *http.ServeMux, pattern string, controller Controller) {
	mux.Handle(pattern, d.Handle(controller))
}

func (d *Dispatcher) newModel() *modelmap.BindingAwareMap {
	model := d.seed()
	if model == nil {
		model = modelmap.NewBindingAware()
	}
	if d.globals != nil {
		model.MergeAttributes(d.globals.Clone())
	}
	return model
}

func (d *Dispatcher) fail(w http.ResponseWriter, r *http.Request, msg string, err error, attrs ...any) {
	args := append([]any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	}, attrs...)
	d.logger.ErrorContext(r.Context(), msg, args...)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
