package prompt

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-formbind/pkg/binding"
)

// Option configures a Collector.
type Option func(*Collector)

// WithDefaults pre-fills prompts with values keyed by dotted field path.
func WithDefaults(values url.Values) Option {
	return func(c *Collector) {
		c.defaults = values
	}
}

// Collector asks for every schema property and returns the answers as form
// values, ready for binding.Binder.BindForm.
type Collector struct {
	driver   Driver
	defaults url.Values
}

// NewCollector builds a Collector on driver; a nil driver uses survey.
func NewCollector(driver Driver, options ...Option) *Collector {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	c := &Collector{driver: driver}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Collect prompts for props in order. Nested object properties use dotted
// keys ("address.zip"); array answers become repeated values.
func (c *Collector) Collect(ctx context.Context, props []binding.Property) (url.Values, error) {
	out := url.Values{}
	if err := c.collect(ctx, "", props, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Collector) collect(ctx context.Context, prefix string, props []binding.Property, out url.Values) error {
	for _, prop := range props {
		path := prop.Name
		if prefix != "" {
			path = prefix + "." + prop.Name
		}
		if err := c.ask(ctx, path, prop, out); err != nil {
			return fmt.Errorf("prompt: %s: %w", path, err)
		}
	}
	return nil
}

func (c *Collector) ask(ctx context.Context, path string, prop binding.Property, out url.Values) error {
	message := path
	if prop.Required {
		message += " *"
	}

	switch {
	case prop.Type == "object":
		return c.collect(ctx, path, prop.Properties, out)

	case prop.Type == "boolean":
		answer, err := c.driver.Confirm(ctx, ConfirmConfig{
			Message: message,
			Help:    prop.Description,
			Default: c.defaults.Get(path) == "true",
		})
		if err != nil {
			return err
		}
		out.Set(path, fmt.Sprint(answer))

	case len(prop.Enum) > 0:
		options := enumOptions(prop.Enum)
		idx, err := c.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, c.defaults.Get(path)),
			Help:         prop.Description,
		})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(options) {
			out.Set(path, options[idx])
		}

	case prop.Type == "array" && prop.Items != nil && len(prop.Items.Enum) > 0:
		options := enumOptions(prop.Items.Enum)
		var defaults []int
		for _, value := range c.defaults[path] {
			if idx := indexOf(options, value); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		picked, err := c.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  options,
			Defaults: defaults,
			Help:     prop.Description,
		})
		if err != nil {
			return err
		}
		for _, idx := range picked {
			if idx >= 0 && idx < len(options) {
				out.Add(path, options[idx])
			}
		}

	case prop.Type == "array":
		answer, err := c.driver.Input(ctx, InputConfig{
			Message: message + " (comma separated)",
			Default: strings.Join(c.defaults[path], ", "),
			Help:    prop.Description,
		})
		if err != nil {
			return err
		}
		for _, part := range strings.Split(answer, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out.Add(path, trimmed)
			}
		}

	default:
		cfg := InputConfig{
			Message: message,
			Default: c.defaults.Get(path),
			Help:    prop.Description,
		}
		if prop.Required {
			cfg.Validator = requiredValue
		}
		answer, err := c.driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		if trimmed := strings.TrimSpace(answer); trimmed != "" {
			out.Set(path, trimmed)
		}
	}
	return nil
}

func requiredValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("value is required")
	}
	return nil
}

func enumOptions(values []any) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, fmt.Sprint(value))
	}
	return out
}
