// Package modelmap provides the request-scoped attribute containers handed to
// controllers and views.
//
// Map is an ordered string-keyed map: overwriting a key keeps its position and
// new keys are appended, so templates render attributes in the order handlers
// added them.
//
// BindingAwareMap wraps a Map and keeps binding results honest. A result for
// attribute "user" lives at binding.ModelKey("user") and records the instance
// it validated; whenever "user" is overwritten through Put or PutAll with a
// different instance, the stale result is dropped before the write lands.
// Reads and removals are forwarded untouched. Writes made directly on the
// Map returned by Underlying bypass this bookkeeping.
//
// Neither type is safe for concurrent use. A model belongs to a single
// request.
package modelmap
