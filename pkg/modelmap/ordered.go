package modelmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// Entry is a single attribute in iteration order.
type Entry struct {
	Name  string
	Value any
}

// Map is an insertion ordered attribute map. The zero value is ready to use.
type Map struct {
	values map[string]any
	order  []string
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string]any)}
}

// FromMap copies entries into a new Map, inserting keys in sorted order.
func FromMap(entries map[string]any) *Map {
	m := New()
	m.PutAllMap(entries)
	return m
}

// FromEntries builds a Map from entries in the order given. Later duplicates
// overwrite earlier values without moving them.
func FromEntries(entries ...Entry) *Map {
	m := New()
	for _, entry := range entries {
		m.Put(entry.Name, entry.Value)
	}
	return m
}

// Get returns the value stored under name.
func (m *Map) Get(name string) (any, bool) {
	if m == nil {
		return nil, false
	}
	value, ok := m.values[name]
	return value, ok
}

// Value returns the value stored under name or nil.
func (m *Map) Value(name string) any {
	value, _ := m.Get(name)
	return value
}

// Put stores value under name and returns the previous value. An existing key
// keeps its position; a new key is appended.
func (m *Map) Put(name string, value any) (any, bool) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	previous, existed := m.values[name]
	if !existed {
		m.order = append(m.order, name)
	}
	m.values[name] = value
	return previous, existed
}

// PutAll copies every entry of entries in its iteration order.
func (m *Map) PutAll(entries *Map) {
	if entries == nil {
		return
	}
	for _, entry := range entries.Entries() {
		m.Put(entry.Name, entry.Value)
	}
}

// PutAllMap copies a Go map. Keys are applied in sorted order so appended keys
// land deterministically.
func (m *Map) PutAllMap(entries map[string]any) {
	for _, name := range sortedKeys(entries) {
		m.Put(name, entries[name])
	}
}

// Remove deletes name and returns the value it held.
func (m *Map) Remove(name string) (any, bool) {
	if m == nil {
		return nil, false
	}
	previous, existed := m.values[name]
	if !existed {
		return nil, false
	}
	delete(m.values, name)
	if idx := slices.Index(m.order, name); idx >= 0 {
		m.order = slices.Delete(m.order, idx, idx+1)
	}
	return previous, true
}

// Contains reports whether name is present.
func (m *Map) Contains(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Len returns the number of attributes.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Keys returns attribute names in iteration order.
func (m *Map) Keys() []string {
	if m == nil || len(m.order) == 0 {
		return nil
	}
	return slices.Clone(m.order)
}

// All iterates attributes in order. Mutating the map while iterating is
// allowed; the iteration covers the keys present when it started that are
// still present when reached.
func (m *Map) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, name := range m.Keys() {
			value, ok := m.Get(name)
			if !ok {
				continue
			}
			if !yield(name, value) {
				return
			}
		}
	}
}

// Range calls fn for every attribute in order until fn returns false.
func (m *Map) Range(fn func(name string, value any) bool) {
	if fn == nil {
		return
	}
	for name, value := range m.All() {
		if !fn(name, value) {
			return
		}
	}
}

// Entries returns a snapshot of the attributes in order.
func (m *Map) Entries() []Entry {
	if m.Len() == 0 {
		return nil
	}
	out := make([]Entry, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, Entry{Name: name, Value: m.values[name]})
	}
	return out
}

// Clear removes every attribute.
func (m *Map) Clear() {
	if m == nil {
		return
	}
	m.values = make(map[string]any)
	m.order = nil
}

// Clone returns a shallow copy preserving order.
func (m *Map) Clone() *Map {
	out := New()
	out.PutAll(m)
	return out
}

// ToMap returns a plain map copy. Order is lost.
func (m *Map) ToMap() map[string]any {
	out := make(map[string]any, m.Len())
	for name, value := range m.All() {
		out[name] = value
	}
	return out
}

// MarshalJSON encodes the attributes as a JSON object in iteration order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, entry := range m.Entries() {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("modelmap: encode %q: %w", entry.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("modelmap: decode json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("modelmap: decode json: expected object")
	}

	m.Clear()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("modelmap: decode json: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("modelmap: decode json: expected string key")
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("modelmap: decode %q: %w", name, err)
		}
		m.Put(name, value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("modelmap: decode json: %w", err)
	}
	return nil
}

// MarshalYAML encodes the attributes as a YAML mapping in iteration order.
func (m *Map) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, entry := range m.Entries() {
		var value yaml.Node
		if err := value.Encode(entry.Value); err != nil {
			return nil, fmt.Errorf("modelmap: encode %q: %w", entry.Name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Name},
			&value,
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping, keeping the document's key order.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("modelmap: decode yaml: expected mapping at line %d", node.Line)
	}

	m.Clear()
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		name := node.Content[idx].Value
		var value any
		if err := node.Content[idx+1].Decode(&value); err != nil {
			return fmt.Errorf("modelmap: decode %q: %w", name, err)
		}
		m.Put(name, value)
	}
	return nil
}

func sortedKeys(entries map[string]any) []string {
	if len(entries) == 0 {
		return nil
	}
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Decode reads a JSON object or YAML mapping into a Map, keeping the document
// order. Empty input yields an empty map.
func Decode(data []byte) (*Map, error) {
	m := New()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return m, nil
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, m); err != nil {
			return nil, err
		}
		return m, nil
	}
	if err := yaml.Unmarshal(trimmed, m); err != nil {
		return nil, err
	}
	return m, nil
}
