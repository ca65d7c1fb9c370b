// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// decode unmarshals envelope JSON into the generic shape used for
// structural comparison.
func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("envelope is not valid JSON: %v\n%s", err, data)
	}
	return decoded
}

func TestConversationItemCreate(t *testing.T) {
	encoded, err := json.Marshal(ConversationItemCreate("hello"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"type": "message",
			"role": "user",
			"content": []any{
				map[string]any{"type": "input_text", "text": "hello"},
			},
		},
	}
	if diff := cmp.Diff(want, decode(t, encoded)); diff != "" {
		t.Errorf("envelope mismatch (-want +got):\n%s", diff)
	}
}

func TestResponseCreateDefaults(t *testing.T) {
	encoded, err := json.Marshal(ResponseCreate())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := map[string]any{
		"type": "response.create",
		"response": map[string]any{
			"modalities": []any{"text", "audio"},
		},
	}
	if diff := cmp.Diff(want, decode(t, encoded)); diff != "" {
		t.Errorf("envelope mismatch (-want +got):\n%s", diff)
	}
}

func TestResponseCreateExplicitModalities(t *testing.T) {
	encoded, err := json.Marshal(ResponseCreate("text"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := map[string]any{
		"type": "response.create",
		"response": map[string]any{
			"modalities": []any{"text"},
		},
	}
	if diff := cmp.Diff(want, decode(t, encoded)); diff != "" {
		t.Errorf("envelope mismatch (-want +got):\n%s", diff)
	}
}

// TestTypeFieldIsFirst pins the wire-level field order: the type tag leads
// the envelope so stream consumers can dispatch without full parsing.
func TestTypeFieldIsFirst(t *testing.T) {
	encoded, err := json.Marshal(Event{
		Type:    "session.update",
		Payload: Object{{Key: "session", Value: Object{{Key: "voice", Value: String("alloy")}}}},
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	const prefix = `{"type":"session.update",`
	if got := string(encoded[:len(prefix)]); got != prefix {
		t.Errorf("envelope prefix = %q, want %q", got, prefix)
	}
}

func TestEmptyTypeRejected(t *testing.T) {
	if _, err := json.Marshal(Event{}); err == nil {
		t.Fatal("expected error for empty event type, got nil")
	}
}

func TestObjectFieldOrderPreserved(t *testing.T) {
	object := Object{
		{Key: "zebra", Value: Number(1)},
		{Key: "apple", Value: Bool(true)},
		{Key: "mango", Value: Null{}},
	}
	encoded, err := json.Marshal(Event{Type: "custom", Payload: object})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := `{"type":"custom","zebra":1,"apple":true,"mango":null}`
	if string(encoded) != want {
		t.Errorf("encoded = %s, want %s", encoded, want)
	}
}

func TestArrayWithMixedVariants(t *testing.T) {
	encoded, err := json.Marshal(Event{
		Type: "custom",
		Payload: Object{
			{Key: "values", Value: Array{String("a"), Number(2.5), Bool(false), Null{}, nil}},
		},
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := `{"type":"custom","values":["a",2.5,false,null,null]}`
	if string(encoded) != want {
		t.Errorf("encoded = %s, want %s", encoded, want)
	}
}
