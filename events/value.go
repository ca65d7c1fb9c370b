// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a JSON-serializable value tree node. The concrete variants are
// String, Number, Bool, Null, Array, and Object. The interface is sealed:
// appendJSON is unexported so every Value the package accepts serializes
// through the variants below.
type Value interface {
	appendJSON(buffer *bytes.Buffer) error
}

// String is a JSON string value.
type String string

// Number is a JSON number value.
type Number float64

// Bool is a JSON boolean value.
type Bool bool

// Null is the JSON null value.
type Null struct{}

// Array is an ordered JSON array of values.
type Array []Value

// Object is a JSON object with deterministic field order: fields are
// serialized in slice order, not sorted. Duplicate keys are the caller's
// error and are serialized as-is.
type Object []Field

// Field is a single key/value pair in an Object.
type Field struct {
	Key   string
	Value Value
}

func (v String) appendJSON(buffer *bytes.Buffer) error {
	encoded, err := json.Marshal(string(v))
	if err != nil {
		return err
	}
	buffer.Write(encoded)
	return nil
}

func (v Number) appendJSON(buffer *bytes.Buffer) error {
	encoded, err := json.Marshal(float64(v))
	if err != nil {
		return fmt.Errorf("encoding number %v: %w", float64(v), err)
	}
	buffer.Write(encoded)
	return nil
}

func (v Bool) appendJSON(buffer *bytes.Buffer) error {
	if v {
		buffer.WriteString("true")
	} else {
		buffer.WriteString("false")
	}
	return nil
}

func (Null) appendJSON(buffer *bytes.Buffer) error {
	buffer.WriteString("null")
	return nil
}

func (v Array) appendJSON(buffer *bytes.Buffer) error {
	buffer.WriteByte('[')
	for index, element := range v {
		if index > 0 {
			buffer.WriteByte(',')
		}
		if element == nil {
			element = Null{}
		}
		if err := element.appendJSON(buffer); err != nil {
			return err
		}
	}
	buffer.WriteByte(']')
	return nil
}

func (v Object) appendJSON(buffer *bytes.Buffer) error {
	buffer.WriteByte('{')
	for index, field := range v {
		if index > 0 {
			buffer.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return fmt.Errorf("encoding key %q: %w", field.Key, err)
		}
		buffer.Write(key)
		buffer.WriteByte(':')
		value := field.Value
		if value == nil {
			value = Null{}
		}
		if err := value.appendJSON(buffer); err != nil {
			return err
		}
	}
	buffer.WriteByte('}')
	return nil
}

// Strings converts a string slice into an Array of String values.
func Strings(values []string) Array {
	array := make(Array, len(values))
	for index, value := range values {
		array[index] = String(value)
	}
	return array
}
