package intake

import (
	"encoding/json"
	"sort"
)

// Record is a flat field → value mapping. The zero value is not usable; call
// NewRecord or Catalog.NewRecord.
type Record struct {
	values map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Get returns the value of field and whether it is set.
func (r *Record) Get(field string) (Value, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Set stores v under field.
func (r *Record) Set(field string, v Value) {
	r.values[field] = v
}

// Delete removes field.
func (r *Record) Delete(field string) {
	delete(r.values, field)
}

// Text returns the wire-form string of field, or "" when unset.
func (r *Record) Text(field string) string {
	return r.values[field].String()
}

// List returns field as a list, or an empty list when unset.
func (r *Record) List(field string) []string {
	v, ok := r.values[field]
	if !ok {
		return []string{}
	}
	return v.Items()
}

// Filled reports whether field holds a non-empty value.
func (r *Record) Filled(field string) bool {
	v, ok := r.values[field]
	return ok && !v.IsEmpty()
}

// Fields returns the set field names in sorted order.
func (r *Record) Fields() []string {
	out := make([]string, 0, len(r.values))
	for f := range r.values {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Len reports how many fields are set.
func (r *Record) Len() int { return len(r.values) }

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := NewRecord()
	for f, v := range r.values {
		if v.IsList {
			v = List(v.List...)
		}
		c.values[f] = v
	}
	return c
}

// MarshalJSON encodes the record as a JSON object.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.values)
}

// UnmarshalJSON decodes a JSON object of strings and string arrays.
func (r *Record) UnmarshalJSON(data []byte) error {
	values := make(map[string]Value)
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	r.values = values
	return nil
}
