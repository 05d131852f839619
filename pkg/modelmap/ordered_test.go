package modelmap_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbind/pkg/modelmap"
)

func TestMap_PutKeepsPositionOnOverwrite(t *testing.T) {
	m := modelmap.New()
	m.Put("title", "Draft")
	m.Put("author", "ana")
	m.Put("tags", []string{"go"})

	prev, existed := m.Put("author", "bo")

	assert.True(t, existed)
	assert.Equal(t, "ana", prev)
	assert.Equal(t, []string{"title", "author", "tags"}, m.Keys())
	assert.Equal(t, "bo", m.Value("author"))
}

func TestMap_PutAppendsNewKeys(t *testing.T) {
	m := modelmap.New()
	m.Put("b", 1)
	prev, existed := m.Put("a", 2)

	assert.False(t, existed)
	assert.Nil(t, prev)
	assert.Equal(t, []string{"b", "a"}, m.Keys())
}

func TestMap_RemoveThenPutAppends(t *testing.T) {
	m := modelmap.FromEntries(
		modelmap.Entry{Name: "a", Value: 1},
		modelmap.Entry{Name: "b", Value: 2},
		modelmap.Entry{Name: "c", Value: 3},
	)

	removed, ok := m.Remove("a")
	require.True(t, ok)
	assert.Equal(t, 1, removed)
	assert.False(t, m.Contains("a"))

	_, ok = m.Remove("a")
	assert.False(t, ok)

	m.Put("a", 4)
	assert.Equal(t, []string{"b", "c", "a"}, m.Keys())
	assert.Equal(t, 3, m.Len())
}

func TestMap_ZeroValueIsUsable(t *testing.T) {
	var m modelmap.Map
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Keys())

	m.Put("a", 1)
	assert.Equal(t, 1, m.Value("a"))
}

func TestMap_PutAllFollowsSourceOrder(t *testing.T) {
	m := modelmap.FromEntries(modelmap.Entry{Name: "existing", Value: 0})
	batch := modelmap.FromEntries(
		modelmap.Entry{Name: "z", Value: 1},
		modelmap.Entry{Name: "existing", Value: 2},
		modelmap.Entry{Name: "a", Value: 3},
	)

	m.PutAll(batch)

	assert.Equal(t, []string{"existing", "z", "a"}, m.Keys())
	assert.Equal(t, 2, m.Value("existing"))
}

func TestMap_PutAllMapSortsNewKeys(t *testing.T) {
	m := modelmap.New()
	m.PutAllMap(map[string]any{"c": 3, "a": 1, "b": 2})
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
}

func TestMap_AllToleratesRemovalDuringIteration(t *testing.T) {
	m := modelmap.FromEntries(
		modelmap.Entry{Name: "a", Value: 1},
		modelmap.Entry{Name: "b", Value: 2},
		modelmap.Entry{Name: "c", Value: 3},
	)

	var seen []string
	for name := range m.All() {
		seen = append(seen, name)
		if name == "a" {
			m.Remove("b")
		}
	}
	assert.Equal(t, []string{"a", "c"}, seen)
}

func TestMap_RangeStopsEarly(t *testing.T) {
	m := modelmap.FromEntries(
		modelmap.Entry{Name: "a", Value: 1},
		modelmap.Entry{Name: "b", Value: 2},
	)
	calls := 0
	m.Range(func(string, any) bool {
		calls++
		return false
	})
	assert.Equal(t, 1, calls)
}

func TestMap_CloneIsIndependent(t *testing.T) {
	m := modelmap.FromEntries(modelmap.Entry{Name: "a", Value: 1})
	clone := m.Clone()
	clone.Put("b", 2)

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []string{"a", "b"}, clone.Keys())
}

func TestMap_ClearEmpties(t *testing.T) {
	m := modelmap.FromMap(map[string]any{"a": 1})
	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Contains("a"))
	assert.Empty(t, m.ToMap())
}

func TestMap_JSONRoundTripKeepsOrder(t *testing.T) {
	m := modelmap.FromEntries(
		modelmap.Entry{Name: "zeta", Value: 1},
		modelmap.Entry{Name: "alpha", Value: map[string]any{"nested": true}},
	)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":{"nested":true}}`, string(raw))

	decoded := modelmap.New()
	require.NoError(t, json.Unmarshal([]byte(`{"b":1,"a":[1,2],"c":null}`), decoded))
	assert.Equal(t, []string{"b", "a", "c"}, decoded.Keys())
	assert.Equal(t, []any{float64(1), float64(2)}, decoded.Value("a"))
}

func TestMap_UnmarshalJSONRejectsNonObject(t *testing.T) {
	decoded := modelmap.New()
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), decoded))
}

func TestMap_YAMLRoundTripKeepsOrder(t *testing.T) {
	source := "title: Hello\ncount: 3\nauthor:\n    name: ana\n"

	var m modelmap.Map
	require.NoError(t, yaml.Unmarshal([]byte(source), &m))
	assert.Equal(t, []string{"title", "count", "author"}, m.Keys())
	assert.Equal(t, 3, m.Value("count"))

	out, err := yaml.Marshal(&m)
	require.NoError(t, err)
	assert.Equal(t, source, string(out))
}
