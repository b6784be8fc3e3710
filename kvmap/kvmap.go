// Package kvmap provides an insertion-ordered string map.
//
// Localization files are order sensitive: keys are exported in the order they
// were read or added, so a plain Go map cannot carry them. Map keeps a key
// slice alongside an index, the same layout the format packages use for their
// lines.
package kvmap

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Map is an ordered key → value collection. The zero value is ready to use.
type Map struct {
	keys   []string
	values map[string]string
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string]string)}
}

// FromPairs builds a Map from alternating key, value arguments.
// A trailing key without a value gets an empty value.
func FromPairs(kv ...string) *Map {
	m := New()
	for i := 0; i < len(kv); i += 2 {
		v := ""
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		m.Set(kv[i], v)
	}
	return m
}

// Set assigns value to key. An existing key keeps its position.
func (m *Map) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Value returns the value for key, or "" when absent.
func (m *Map) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key. No-op when absent.
func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns a copy of the keys in order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Each calls fn for every pair in order.
func (m *Map) Each(fn func(key, value string)) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Clone returns an independent copy.
func (m *Map) Clone() *Map {
	c := New()
	m.Each(c.Set)
	return c
}

// Equal reports whether both maps hold the same pairs in the same order.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	if m.Len() == 0 {
		return true
	}
	for i, k := range m.keys {
		if o.keys[i] != k || o.values[k] != m.values[k] {
			return false
		}
	}
	return true
}

// ToMap converts to a standard (unordered) map.
func (m *Map) ToMap() map[string]string {
	out := make(map[string]string, m.Len())
	m.Each(func(k, v string) { out[k] = v })
	return out
}

// MarshalYAML emits a mapping node that keeps key order.
func (m *Map) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Each(func(k, v string) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v},
		)
	})
	return node, nil
}

// UnmarshalYAML reads a mapping node in document order.
func (m *Map) UnmarshalYAML(value *yaml.Node) error {
	m.keys = nil
	m.values = make(map[string]string)
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got %s", value.Line, value.ShortTag())
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value of %q is not a scalar", v.Line, k.Value)
		}
		m.Set(k.Value, v.Value)
	}
	return nil
}
