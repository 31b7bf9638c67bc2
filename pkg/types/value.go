package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is an arbitrary structured property value, held as raw JSON.
// A zero-length Value means "no value" and is distinct from JSON null.
type Value []byte

// NewValue marshals v into a Value.
func NewValue(v any) (Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}
	return Value(b), nil
}

// MustValue is NewValue that panics on error. For constants and tests.
func MustValue(v any) Value {
	val, err := NewValue(v)
	if err != nil {
		panic(err)
	}
	return val
}

// IsZero reports whether the value is absent (not set at all).
func (v Value) IsZero() bool { return len(v) == 0 }

// Canonical returns a canonical string form of the value, suitable as an
// index key: the JSON is decoded and re-encoded, which normalizes whitespace
// and sorts object keys. Returns ErrMalformedValue for invalid JSON.
func (v Value) Canonical() (string, error) {
	var decoded any
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}
	out, err := json.Marshal(decoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}
	return string(out), nil
}

// MarshalJSON emits the raw JSON as-is. An absent value encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// UnmarshalJSON stores a copy of the raw JSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = append((*v)[:0], data...)
	return nil
}
