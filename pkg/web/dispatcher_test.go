package web_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/modelmap"
	"github.com/goliatone/go-formbind/pkg/testsupport"
	"github.com/goliatone/go-formbind/pkg/view"
	"github.com/goliatone/go-formbind/pkg/web"
)

type signup struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Age   int    `json:"age,omitempty"`
}

var templates = fstest.MapFS{
	"signup.tpl": &fstest.MapFile{Data: []byte(
		`{{ site }}|{{ signup.name }}|{% if bindings.signup %}{{ bindings.signup.errorCount }}{% else %}none{% endif %}|{{ field_errors("signup", "name")|join:"," }}`,
	)},
	"broken.tpl": &fstest.MapFile{Data: []byte(`{{ missing( }}`)},
}

func newDispatcher(t *testing.T, logs *bytes.Buffer) *web.Dispatcher {
	t.Helper()

	translator := view.TranslatorFunc(func(_, key string, _ ...any) (string, error) {
		if key == "minLength.name" {
			return "Name is too short", nil
		}
		return "", errors.New("no message")
	})
	engine, err := view.New(view.WithFS(templates), view.WithTranslator(translator))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	globals := modelmap.New()
	globals.Put("site", "Acme")

	logger := slog.New(slog.NewTextHandler(logs, nil))
	return web.NewDispatcher(engine, web.WithGlobals(globals), web.WithLogger(logger))
}

func newBinder(t *testing.T) *binding.Binder {
	t.Helper()
	return binding.NewBinder(testsupport.LoadSchemas(t, "../binding/testdata/signup.yaml"))
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestDispatcher_RendersViewWithGlobals(t *testing.T) {
	var logs bytes.Buffer
	d := newDispatcher(t, &logs)

	handler := d.Handle(func(_ http.ResponseWriter, _ *http.Request, model *modelmap.BindingAwareMap) (string, error) {
		model.Put("signup", &signup{Name: "Ana"})
		return "signup", nil
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signup", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got, want := rec.Body.String(), "Acme|Ana|none|"; got != want {
		t.Fatalf("unexpected body:\nwant %q\ngot  %q", want, got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestDispatcher_FreshModelPerRequest(t *testing.T) {
	var logs bytes.Buffer
	d := newDispatcher(t, &logs)

	var seen []int
	handler := d.Handle(func(_ http.ResponseWriter, _ *http.Request, model *modelmap.BindingAwareMap) (string, error) {
		seen = append(seen, model.Len())
		model.Put("visited", true)
		return "", nil
	})
	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 1 {
		t.Fatalf("expected each request to start with the global only, got %v", seen)
	}
}

func TestDispatcher_BindRequestShowsErrors(t *testing.T) {
	var logs bytes.Buffer
	d := newDispatcher(t, &logs)
	binder := newBinder(t)

	handler := d.Handle(func(_ http.ResponseWriter, r *http.Request, model *modelmap.BindingAwareMap) (string, error) {
		result, err := web.BindRequest(r, binder, "signup", "Signup", &signup{}, model)
		if err != nil {
			return "", err
		}
		if !result.HasErrors() {
			return "redirect:/done", nil
		}
		return "signup", nil
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(url.Values{"name": {"A"}, "email": {"ana@example.com"}}))

	if got, want := rec.Body.String(), "Acme|A|1|Name is too short"; got != want {
		t.Fatalf("unexpected body:\nwant %q\ngot  %q", want, got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(url.Values{"name": {"Ana"}, "email": {"ana@example.com"}}))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/done" {
		t.Fatalf("expected redirect to /done, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestDispatcher_ReplacingTargetDropsStaleErrors(t *testing.T) {
	var logs bytes.Buffer
	d := newDispatcher(t, &logs)
	binder := newBinder(t)

	handler := d.Handle(func(_ http.ResponseWriter, r *http.Request, model *modelmap.BindingAwareMap) (string, error) {
		if _, err := web.BindRequest(r, binder, "signup", "Signup", &signup{}, nil); err != nil {
			return "", err
		}
		model.Put("signup", &signup{Name: "Reset"})
		return "signup", nil
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(url.Values{"name": {"A"}}))

	if got, want := rec.Body.String(), "Acme|Reset|none|"; got != want {
		t.Fatalf("unexpected body:\nwant %q\ngot  %q", want, got)
	}
}

func TestBindRequest_JSONBody(t *testing.T) {
	binder := newBinder(t)
	model := modelmap.NewBindingAware()

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"name":"Ana","email":"ana@example.com","age":30}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	target := &signup{}
	result, err := web.BindRequest(req, binder, "signup", "Signup", target, model)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if result.HasErrors() {
		t.Fatalf("unexpected errors %+v", result.Errors())
	}
	if target.Age != 30 {
		t.Fatalf("expected age 30, got %d", target.Age)
	}
	if diff := testsupport.CompareGolden([]string{"signup", binding.ModelKey("signup")}, model.Keys()); diff != "" {
		t.Fatalf("model keys mismatch (-want +got):\n%s", diff)
	}
}

func TestBindRequest_RequiresModel(t *testing.T) {
	req := postForm(url.Values{"name": {"Ana"}})
	if _, err := web.BindRequest(req, newBinder(t), "signup", "Signup", &signup{}, nil); !errors.Is(err, web.ErrNoModel) {
		t.Fatalf("expected ErrNoModel, got %v", err)
	}
}

func TestDispatcher_ControllerErrorLogsAnd500(t *testing.T) {
	var logs bytes.Buffer
	d := newDispatcher(t, &logs)

	handler := d.Handle(func(http.ResponseWriter, *http.Request, *modelmap.BindingAwareMap) (string, error) {
		return "", errors.New("database down")
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(logs.String(), "database down") || !strings.Contains(logs.String(), "path=/broken") {
		t.Fatalf("expected structured log entry, got %q", logs.String())
	}
}

func TestDispatcher_RenderErrorLogsView(t *testing.T) {
	var logs bytes.Buffer
	d := newDispatcher(t, &logs)

	handler := d.Handle(func(http.ResponseWriter, *http.Request, *modelmap.BindingAwareMap) (string, error) {
		return "broken", nil
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(logs.String(), "view=broken") {
		t.Fatalf("expected view attribute in log, got %q", logs.String())
	}
}

func TestModelFrom(t *testing.T) {
	if _, err := web.ModelFrom(context.Background()); !errors.Is(err, web.ErrNoModel) {
		t.Fatalf("expected ErrNoModel, got %v", err)
	}

	model := modelmap.NewBindingAware()
	got, err := web.ModelFrom(web.WithModel(context.Background(), model))
	if err != nil {
		t.Fatalf("model from: %v", err)
	}
	if got != model {
		t.Fatalf("expected the stored model")
	}
}
