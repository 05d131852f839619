// Package config loads formbind project files. A file is JSON or YAML and
// declares the templates directory, the OpenAPI schema, the sanitize policy,
// localized messages, theme manifests and the seed attributes every request
// model starts with.
package config
