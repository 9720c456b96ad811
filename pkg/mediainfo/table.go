package mediainfo

import (
	"bytes"
	"encoding/json"
)

// Table holds the current value of every schema entry.
// It never gains or loses keys after creation.
type Table struct {
	schema *Schema
	values map[Key]string
}

func NewTable(schema *Schema) *Table {
	t := &Table{
		schema: schema,
		values: make(map[Key]string, schema.Len()),
	}
	t.Reset()
	return t
}

// Reset restores the default value of every entry
func (t *Table) Reset() {
	for _, e := range t.schema.entries {
		t.values[e.Key] = e.Default
	}
}

func (t *Table) Schema() *Schema { return t.schema }

func (t *Table) Get(key Key) string {
	return t.values[key]
}

// Set overwrites the value of key. Keys outside the schema are ignored.
func (t *Table) Set(key Key, value string) bool {
	if _, ok := t.values[key]; !ok {
		return false
	}
	t.values[key] = value
	return true
}

// IsSet reports whether key holds something other than its default
func (t *Table) IsSet(key Key) bool {
	e, ok := t.schema.Entry(key)
	if !ok {
		return false
	}
	return t.values[key] != e.Default
}

// SetIfUnset writes value only if key still holds its default
func (t *Table) SetIfUnset(key Key, value string) bool {
	if t.IsSet(key) {
		return false
	}
	return t.Set(key, value)
}

func (t *Table) Len() int { return len(t.values) }

// Equal compares the content of two tables with the same schema layout
func (t *Table) Equal(o *Table) bool {
	if t.Len() != o.Len() {
		return false
	}
	for k, v := range t.values {
		ov, ok := o.values[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Map returns label -> value for all entries
func (t *Table) Map() map[string]string {
	result := make(map[string]string, len(t.values))
	for _, e := range t.schema.entries {
		result[e.Label] = t.values[e.Key]
	}
	return result
}

// MarshalJSON writes the entries as object in schema order
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t.schema.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(t.values[e.Key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
