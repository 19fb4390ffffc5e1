package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// Value is a single cell value: string, integer or float kinds, bool,
// time.Time or nil.
type Value = any

// Field is one named cell of a Record
type Field struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// Record is an ordered mapping from column name to cell value.
// Keys are unique; setting an existing key replaces its value in place.
type Record []Field

// RecordSet is the body of one logical sheet
type RecordSet []Record

// NewRecord builds a record from alternating key/value pairs.
// It panics when a key is not a string or the pair list is odd.
func NewRecord(pairs ...any) Record {
	if len(pairs)%2 != 0 {
		panic("domain: NewRecord requires key/value pairs")
	}
	r := make(Record, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("domain: record key %v is not a string", pairs[i]))
		}
		r.Set(key, pairs[i+1])
	}
	return r
}

// Positional builds a headerless record keyed "0".."n-1"
func Positional(values ...Value) Record {
	r := make(Record, len(values))
	for i, v := range values {
		r[i] = Field{Key: strconv.Itoa(i), Value: v}
	}
	return r
}

// Set assigns value to key, keeping the key's original position when it
// already exists.
func (r *Record) Set(key string, value Value) {
	for i := range *r {
		if (*r)[i].Key == key {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Field{Key: key, Value: value})
}

// Get returns the value stored under key
func (r Record) Get(key string) (Value, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the column names in order
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Values returns the cell values in order
func (r Record) Values() []Value {
	values := make([]Value, len(r))
	for i, f := range r {
		values[i] = f.Value
	}
	return values
}

// Len returns the number of fields
func (r Record) Len() int { return len(r) }

// MarshalJSON encodes the record as a JSON object in field order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the order its keys appear in.
// Integral numbers become int64, other numbers float64. Nested objects and
// arrays are kept as generic maps and slices.
func (r *Record) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("record is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("record must be a JSON object")
	}

	out := Record{}
	doc.ForEach(func(key, value gjson.Result) bool {
		out.Set(key.String(), jsonScalar(value))
		return true
	})
	*r = out
	return nil
}

func jsonScalar(v gjson.Result) Value {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.True, gjson.False:
		return v.Bool()
	case gjson.String:
		return v.Str
	case gjson.Number:
		if i, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return i
		}
		return v.Float()
	default:
		return v.Value()
	}
}
