// Package intake holds the client intake record: the field catalog, typed
// field values, the taxonomy cascade applied on edits, and the split between
// persisted columns and the JSON details blob.
package intake

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind describes how a field value is represented.
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindList:
		return "list"
	default:
		return "text"
	}
}

// Value is a single field value. Text and date fields carry Text; multi-select
// fields carry List.
type Value struct {
	Text   string
	List   []string
	IsList bool
}

// Text returns a scalar value.
func Text(s string) Value { return Value{Text: s} }

// List returns a multi-select value. A nil input yields an empty list.
func List(items ...string) Value {
	out := make([]string, len(items))
	copy(out, items)
	return Value{List: out, IsList: true}
}

// String renders the value in wire form: lists are joined with "; ".
func (v Value) String() string {
	if v.IsList {
		return ArrayToString(v.List)
	}
	return v.Text
}

// Items returns the value as a list, splitting scalar text on semicolons.
func (v Value) Items() []string {
	if v.IsList {
		return v.List
	}
	return StringToArray(v.Text)
}

// IsEmpty reports whether the value counts as unfilled.
func (v Value) IsEmpty() bool {
	if v.IsList {
		return len(v.List) == 0
	}
	s := strings.TrimSpace(v.Text)
	return s == "" || s == "false"
}

// Contains reports whether a list value holds item.
func (v Value) Contains(item string) bool {
	for _, it := range v.Items() {
		if it == item {
			return true
		}
	}
	return false
}

// MarshalJSON encodes lists as arrays and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList {
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts strings, arrays of strings, booleans, numbers and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := valueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func valueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Text(""), nil
	case string:
		return Text(x), nil
	case bool:
		if x {
			return Text("true"), nil
		}
		return Text("false"), nil
	case float64:
		return Text(strconv.FormatFloat(x, 'f', -1, 64)), nil
	case []any:
		items := make([]string, 0, len(x))
		for _, it := range x {
			s, ok := it.(string)
			if !ok {
				return Value{}, fmt.Errorf("list item %v is %T, want string", it, it)
			}
			items = append(items, s)
		}
		return List(items...), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", raw)
}
