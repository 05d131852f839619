package formbind

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/modelmap"
	"github.com/goliatone/go-formbind/pkg/view"
	"github.com/goliatone/go-formbind/pkg/web"
)

// Model is the binding-aware attribute map handed to controllers and views.
type Model = modelmap.BindingAwareMap

// Attributes is the plain ordered attribute map.
type Attributes = modelmap.Map

// Result aliases binding.Result.
type Result = binding.Result

// FieldError aliases binding.FieldError.
type FieldError = binding.FieldError

// Controller aliases web.Controller.
type Controller = web.Controller

// NewModel returns an empty binding-aware model.
func NewModel() *Model {
	return modelmap.NewBindingAware()
}

// NewAttributes returns an empty ordered attribute map.
func NewAttributes() *Attributes {
	return modelmap.New()
}

// NewEngine exposes the view engine constructor from the top-level module.
func NewEngine(options ...view.Option) (*view.Engine, error) {
	return view.New(options...)
}

// NewDispatcher exposes the dispatcher constructor from the top-level module.
func NewDispatcher(renderer web.Renderer, options ...web.Option) *web.Dispatcher {
	return web.NewDispatcher(renderer, options...)
}

// App bundles the pieces a project file describes.
type App struct {
	Config     *config.Config
	Engine     *view.Engine
	Binder     *binding.Binder
	Dispatcher *web.Dispatcher
}

// Load reads a project file and wires the view engine, the binder (when the
// file declares a schema) and a dispatcher seeding every request model with
// the configured attributes.
func Load(ctx context.Context, path string, options ...web.Option) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return FromConfig(ctx, cfg, options...)
}

// FromConfig wires an App from an already parsed configuration.
func FromConfig(ctx context.Context, cfg *config.Config, options ...web.Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("formbind: config is nil")
	}
	engine, err := view.New(cfg.ViewOptions()...)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Engine: engine}
	if cfg.SchemaPath() != "" {
		schemas, err := cfg.Schemas(ctx)
		if err != nil {
			return nil, err
		}
		app.Binder = binding.NewBinder(schemas)
	}

	dispatcherOptions := append([]web.Option{web.WithSeed(cfg.Seed)}, options...)
	app.Dispatcher = web.NewDispatcher(engine, dispatcherOptions...)
	return app, nil
}
