// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"bytes"
	"fmt"
)

// Event is an outbound event envelope: a type tag plus an ordered payload.
// Events are immutable once built and are serialized to a single JSON
// text frame by the session's send path. The "type" field is always the
// first field on the wire.
type Event struct {
	// Type identifies the event's semantics to the remote endpoint,
	// e.g. "conversation.item.create" or "response.create".
	Type string

	// Payload holds the type-specific fields, serialized after "type"
	// in slice order. May be empty for events that carry only a type.
	Payload Object
}

// MarshalJSON serializes the envelope with "type" first and the payload
// fields in declaration order.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Type == "" {
		return nil, fmt.Errorf("events: envelope has empty type")
	}

	envelope := make(Object, 0, len(e.Payload)+1)
	envelope = append(envelope, Field{Key: "type", Value: String(e.Type)})
	envelope = append(envelope, e.Payload...)

	var buffer bytes.Buffer
	if err := envelope.appendJSON(&buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// ConversationItemCreate builds the "conversation.item.create" envelope
// wrapping a single user text message:
//
//	{"type":"conversation.item.create","item":{"type":"message",
//	 "role":"user","content":[{"type":"input_text","text":<text>}]}}
func ConversationItemCreate(text string) Event {
	return Event{
		Type: "conversation.item.create",
		Payload: Object{
			{Key: "item", Value: Object{
				{Key: "type", Value: String("message")},
				{Key: "role", Value: String("user")},
				{Key: "content", Value: Array{
					Object{
						{Key: "type", Value: String("input_text")},
						{Key: "text", Value: String(text)},
					},
				}},
			}},
		},
	}
}

// ResponseCreate builds the "response.create" envelope requesting that the
// remote model generate a response with the given modalities. An empty
// modality list requests the protocol default, text and audio:
//
//	{"type":"response.create","response":{"modalities":["text","audio"]}}
func ResponseCreate(modalities ...string) Event {
	if len(modalities) == 0 {
		modalities = []string{"text", "audio"}
	}
	return Event{
		Type: "response.create",
		Payload: Object{
			{Key: "response", Value: Object{
				{Key: "modalities", Value: Strings(modalities)},
			}},
		},
	}
}
