// Package binding records the outcome of binding and validating a specific
// target instance. A Result remembers the exact object it was computed
// against so request-scoped models (see pkg/modelmap) can evict results that
// no longer describe the attribute they sit next to. Results live in the
// model under ModelKey(objectName).
//
// Validation is schema driven: component schemas from an OpenAPI document are
// loaded with kin-openapi, submitted form values are coerced according to the
// schema property types, and every schema violation becomes a field error
// keyed by a dotted field path ("owner.email", "tags.0").
package binding
