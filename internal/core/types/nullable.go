package types

import (
	"bytes"
	"encoding/json"
)

// Nullable carries an optional value in a partial update.
//
//	field absent        -> Set == false
//	field: null         -> Set == true, Value == nil
//	field: <value>      -> Set == true, Value != nil
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some returns a Nullable that sets the value.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a Nullable that clears the value.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UnmarshalJSON marks the field as present, including explicit null.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// MarshalJSON encodes the value or null.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// ApplyTo overwrites *dst when the field was present.
func (n Nullable[T]) ApplyTo(dst **T) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		*dst = nil
		return
	}
	v := *n.Value
	*dst = &v
}
