package view

import (
	"strings"

	"github.com/goliatone/go-formbind/pkg/binding"
)

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls f.
func (f TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return f(locale, key, args...)
}

// message tries the error's codes from most to least specific and falls back
// to the recorded message, then to the bare code.
func (e *Engine) message(locale string, err binding.FieldError) string {
	if e.translator != nil {
		for _, code := range err.Codes() {
			msg, terr := e.translator.Translate(locale, code, err.Args...)
			if terr == nil && strings.TrimSpace(msg) != "" {
				return msg
			}
		}
	}
	if strings.TrimSpace(err.Message) != "" {
		return err.Message
	}
	return err.Code
}
