package view

import (
	"fmt"
	"html"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

// Sanitize policy names accepted by SanitizePolicy.
const (
	PolicyStrict = "strict"
	PolicyUGC    = "ugc"
	PolicyNone   = "none"
)

// SanitizePolicy returns the bluemonday policy for name. The empty name means
// "ugc"; "none" returns a nil policy.
func SanitizePolicy(name string) (*bluemonday.Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyUGC:
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		return policy, nil
	case PolicyStrict:
		return bluemonday.StrictPolicy(), nil
	case PolicyNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("view: unknown sanitize policy %q", name)
	}
}

// sanitizeFunc backs the sanitize() template function. Its output is marked
// safe so autoescaping does not undo the allowed markup.
func (e *Engine) sanitizeFunc() func(in *pongo2.Value) *pongo2.Value {
	policy := e.policy
	return func(in *pongo2.Value) *pongo2.Value {
		raw := ""
		if in != nil && !in.IsNil() {
			raw = strings.TrimSpace(in.String())
		}
		if raw == "" {
			return pongo2.AsSafeValue("")
		}
		if policy == nil {
			return pongo2.AsSafeValue(html.EscapeString(raw))
		}
		return pongo2.AsSafeValue(strings.TrimSpace(policy.Sanitize(raw)))
	}
}
