// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

// Package events defines the JSON event envelope exchanged over the
// realtime session's event channel.
//
// An [Event] is a self-describing envelope: a "type" tag plus an ordered
// payload. Payloads are built from the [Value] variants ([String],
// [Number], [Bool], [Null], [Array], [Object]) rather than map[string]any
// so that envelope construction stays type-checked and field order on the
// wire is deterministic — [Object] is an ordered list of fields, not a
// Go map.
//
// The two concrete envelopes that drive a conversation are built by
// [ConversationItemCreate] (user text input) and [ResponseCreate]
// (response generation request). Arbitrary envelopes for every other
// event type in the protocol are assembled directly from Value variants
// and sent through the session's SendEvent.
//
// Inbound events are not modeled here: the session hands received frames
// to the channel observer as raw text, and payload interpretation is the
// observer's concern.
package events
