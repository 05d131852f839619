package web

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/modelmap"
)

// BindRequest binds the request body into target, validates it against
// schemaName and stores both in model under objectName. The target is stored
// before the result so the fresh result is never evicted as stale. A nil
// model falls back to the one carried by the request context.
func BindRequest(r *http.Request, binder *binding.Binder, objectName, schemaName string, target any, model *modelmap.BindingAwareMap) (*binding.Result, error) {
	if r == nil {
		return nil, errors.New("web: request is nil")
	}
	if model == nil {
		m, err := ModelFrom(r.Context())
		if err != nil {
			return nil, err
		}
		model = m
	}

	var (
		result *binding.Result
		err    error
	)
	if isJSON(r) {
		result, err = binder.BindJSON(r.Context(), objectName, schemaName, r.Body, target)
	} else {
		if perr := r.ParseForm(); perr != nil {
			return nil, fmt.Errorf("web: parse form: %w", perr)
		}
		result, err = binder.BindForm(r.Context(), objectName, schemaName, r.Form, target)
	}
	if err != nil {
		return nil, err
	}

	model.Put(objectName, target)
	model.Put(result.ModelKey(), result)
	return result, nil
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
