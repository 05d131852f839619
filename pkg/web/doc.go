// Package web serves request-scoped binding-aware models over net/http.
//
// A Dispatcher creates a fresh model per request, hands it to a Controller
// and renders the view the controller names. BindRequest binds a form or JSON
// body into a target and stores the target together with its binding result,
// so templates can show field errors next to the submitted values.
package web
