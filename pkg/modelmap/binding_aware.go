package modelmap

import (
	"iter"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbind/pkg/binding"
)

// BindingResult is implemented by values stored under binding result keys.
// *binding.Result satisfies it.
type BindingResult interface {
	Target() any
}

// Ensure the concrete result type satisfies the contract.
var _ BindingResult = (*binding.Result)(nil)

// BindingAwareMap is an ordered attribute map that evicts binding results
// once the attribute they describe is replaced by another instance. The zero
// value is ready to use.
type BindingAwareMap struct {
	attrs *Map
}

// NewBindingAware returns an empty model.
func NewBindingAware() *BindingAwareMap {
	return &BindingAwareMap{attrs: New()}
}

// Wrap returns a model over attrs. Writes made directly on attrs afterwards
// skip binding result bookkeeping.
func Wrap(attrs *Map) *BindingAwareMap {
	if attrs == nil {
		attrs = New()
	}
	return &BindingAwareMap{attrs: attrs}
}

// Underlying returns the wrapped storage.
func (b *BindingAwareMap) Underlying() *Map {
	return b.storage()
}

func (b *BindingAwareMap) storage() *Map {
	if b.attrs == nil {
		b.attrs = New()
	}
	return b.attrs
}

// Put stores value under name. When name is not itself a binding result key
// and the result stored for name targets a different instance than value,
// that result is removed first.
func (b *BindingAwareMap) Put(name string, value any) (any, bool) {
	b.removeStaleResult(name, value)
	return b.storage().Put(name, value)
}

// PutAll checks every entry for stale results against the current contents,
// then applies the whole batch.
func (b *BindingAwareMap) PutAll(entries *Map) {
	if entries == nil {
		return
	}
	for name, value := range entries.All() {
		b.removeStaleResult(name, value)
	}
	b.storage().PutAll(entries)
}

// PutAllMap is PutAll for a plain Go map; keys are visited in sorted order.
func (b *BindingAwareMap) PutAllMap(entries map[string]any) {
	for _, name := range sortedKeys(entries) {
		b.removeStaleResult(name, entries[name])
	}
	b.storage().PutAllMap(entries)
}

// AddAttribute is Put for chained seeding.
func (b *BindingAwareMap) AddAttribute(name string, value any) *BindingAwareMap {
	b.Put(name, value)
	return b
}

// MergeAttributes puts only the entries whose names are not present yet.
func (b *BindingAwareMap) MergeAttributes(entries *Map) {
	for name, value := range entries.All() {
		if !b.attrs.Contains(name) {
			b.Put(name, value)
		}
	}
}

func (b *BindingAwareMap) removeStaleResult(name string, value any) {
	if binding.IsModelKey(name) {
		return
	}
	key := binding.ModelKey(name)
	existing, ok := b.attrs.Get(key)
	if !ok {
		return
	}
	result, ok := existing.(BindingResult)
	if !ok {
		return
	}
	if !SameInstance(result.Target(), value) {
		b.attrs.Remove(key)
	}
}

// BindingResult returns the result stored for the named attribute.
func (b *BindingAwareMap) BindingResult(name string) (BindingResult, bool) {
	existing, ok := b.attrs.Get(binding.ModelKey(name))
	if !ok {
		return nil, false
	}
	result, ok := existing.(BindingResult)
	return result, ok
}

// Get returns the value stored under name.
func (b *BindingAwareMap) Get(name string) (any, bool) { return b.attrs.Get(name) }

// Value returns the value stored under name or nil.
func (b *BindingAwareMap) Value(name string) any { return b.attrs.Value(name) }

// Remove deletes name without touching any binding result.
func (b *BindingAwareMap) Remove(name string) (any, bool) { return b.attrs.Remove(name) }

// Contains reports whether name is present.
func (b *BindingAwareMap) Contains(name string) bool { return b.attrs.Contains(name) }

// Len returns the number of attributes, binding results included.
func (b *BindingAwareMap) Len() int { return b.attrs.Len() }

// Keys returns attribute names in iteration order.
func (b *BindingAwareMap) Keys() []string { return b.attrs.Keys() }

// All iterates attributes in order.
func (b *BindingAwareMap) All() iter.Seq2[string, any] { return b.attrs.All() }

// Range calls fn for every attribute in order until fn returns false.
func (b *BindingAwareMap) Range(fn func(name string, value any) bool) { b.attrs.Range(fn) }

// Entries returns a snapshot of the attributes in order.
func (b *BindingAwareMap) Entries() []Entry { return b.attrs.Entries() }

// Clear removes every attribute.
func (b *BindingAwareMap) Clear() { b.attrs.Clear() }

// ToMap returns a plain map copy.
func (b *BindingAwareMap) ToMap() map[string]any { return b.attrs.ToMap() }

// Clone returns an independent model with the same entries in the same order.
func (b *BindingAwareMap) Clone() *BindingAwareMap { return Wrap(b.attrs.Clone()) }

// MarshalJSON encodes the attributes in iteration order.
func (b *BindingAwareMap) MarshalJSON() ([]byte, error) { return b.attrs.MarshalJSON() }

// MarshalYAML encodes the attributes as a YAML mapping in iteration order.
func (b *BindingAwareMap) MarshalYAML() (any, error) { return b.attrs.MarshalYAML() }

// UnmarshalJSON decodes a JSON object and puts its entries in document order.
func (b *BindingAwareMap) UnmarshalJSON(data []byte) error {
	decoded := New()
	if err := decoded.UnmarshalJSON(data); err != nil {
		return err
	}
	b.PutAll(decoded)
	return nil
}

// UnmarshalYAML decodes a YAML mapping and puts its entries in document order.
func (b *BindingAwareMap) UnmarshalYAML(node *yaml.Node) error {
	decoded := New()
	if err := decoded.UnmarshalYAML(node); err != nil {
		return err
	}
	b.PutAll(decoded)
	return nil
}
