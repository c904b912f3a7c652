package render

import (
	"bytes"
	"encoding/json"
)

// orderedMap is a JSON object that marshals its keys in insertion order.
// Request-body templates must list fields in schema order, which a plain
// map cannot guarantee.
type orderedMap struct {
	keys   []string
	values map[string]json.RawMessage
}

func newOrderedMap() *orderedMap {
	return &orderedMap{values: make(map[string]json.RawMessage)}
}

func (m *orderedMap) set(key string, value json.RawMessage) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *orderedMap) setString(key, value string) {
	encoded, _ := json.Marshal(value)
	m.set(key, encoded)
}

// MarshalJSON implements json.Marshaler.
func (m *orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(m.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// indentJSON pretty-prints a marshalable value the way the service
// displays raw bodies.
func indentJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
