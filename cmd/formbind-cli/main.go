package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/modelmap"
	"github.com/goliatone/go-formbind/pkg/prompt"
	"github.com/goliatone/go-formbind/pkg/view"
)

type options struct {
	configPath  string
	view        string
	object      string
	schema      string
	seed        string
	values      string
	interactive bool
	output      string
}

func main() {
	opts := options{}
	flag.StringVar(&opts.configPath, "config", "", "formbind config file (JSON or YAML)")
	flag.StringVar(&opts.view, "view", "form", "view template to render")
	flag.StringVar(&opts.object, "object", "form", "model attribute name of the bound object")
	flag.StringVar(&opts.schema, "schema", "", "component schema to bind against (skips binding if empty)")
	flag.StringVar(&opts.seed, "seed", "", "YAML or JSON file with extra model attributes")
	flag.StringVar(&opts.values, "values", "", "submitted form values as a query string")
	flag.BoolVar(&opts.interactive, "interactive", false, "prompt for every schema property")
	flag.StringVar(&opts.output, "output", "", "output file (stdout if empty)")
	flag.Parse()

	var driver prompt.Driver
	if opts.interactive {
		driver = prompt.NewSurveyDriver()
	}

	if err := run(context.Background(), opts, driver, os.Stdout); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			os.Exit(130)
		}
		log.Fatalf("formbind: %v", err)
	}
}

func run(ctx context.Context, opts options, driver prompt.Driver, stdout io.Writer) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	viewOptions := append([]view.Option{view.WithBaseDir(".")}, cfg.ViewOptions()...)
	engine, err := view.New(viewOptions...)
	if err != nil {
		return err
	}

	model := cfg.Seed()
	if opts.seed != "" {
		data, err := os.ReadFile(opts.seed)
		if err != nil {
			return fmt.Errorf("read seed: %w", err)
		}
		attrs, err := modelmap.Decode(data)
		if err != nil {
			return fmt.Errorf("decode seed %s: %w", opts.seed, err)
		}
		model.PutAll(attrs)
	}

	if opts.schema != "" {
		if err := bind(ctx, cfg, opts, driver, model); err != nil {
			return err
		}
	}

	out, err := engine.Render(ctx, opts.view, model)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		log.Printf("view written to %s", opts.output)
		return nil
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

func loadConfig(path string) (*config.Config, error) {
	if strings.TrimSpace(path) == "" {
		return config.Parse([]byte("{}"), "defaults")
	}
	return config.Load(path)
}

func bind(ctx context.Context, cfg *config.Config, opts options, driver prompt.Driver, model *modelmap.BindingAwareMap) error {
	schemas, err := cfg.Schemas(ctx)
	if err != nil {
		return err
	}

	values, err := url.ParseQuery(opts.values)
	if err != nil {
		return fmt.Errorf("parse values: %w", err)
	}
	if driver != nil {
		props, err := schemas.Properties(opts.schema)
		if err != nil {
			return err
		}
		values, err = prompt.NewCollector(driver, prompt.WithDefaults(values)).Collect(ctx, props)
		if err != nil {
			return err
		}
	}

	target := map[string]any{}
	result, err := binding.NewBinder(schemas).BindForm(ctx, opts.object, opts.schema, values, &target)
	if err != nil {
		return err
	}
	for _, fieldErr := range result.Errors() {
		field := fieldErr.Field
		if field == "" {
			field = opts.object
		}
		log.Printf("%s: %s (%s)", field, fieldErr.Message, fieldErr.Code)
	}

	model.Put(opts.object, &target)
	model.Put(result.ModelKey(), result)
	return nil
}
