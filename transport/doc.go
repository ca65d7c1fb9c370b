// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport provides the peer-to-peer media transport boundary for
// realtime sessions.
//
// The package defines two interfaces. [Capability] is one negotiable
// transport connection: local audio attachment, eager data channel
// creation, the offer/local-description/remote-description lifecycle, and
// connection state observation. [DataChannel] is one ordered reliable
// bidirectional channel on that connection, delivering opaque frames to a
// single registered handler. Both use single-slot handler registration
// with replace semantics: the last registrant wins and no backlog is
// replayed to a new handler.
//
// The production implementation, [PeerTransport], wraps a pion/webrtc
// PeerConnection. Description commit follows vanilla ICE: setting the
// local description blocks until candidate gathering completes, so the
// signaling exchange needs exactly one round-trip and
// [PeerTransport.LocalDescription] returns the complete SDP with all
// candidates embedded.
//
// [WebSocketChannel] implements DataChannel over a single WebSocket for
// the protocol's socket mode, where the event stream runs without any SDP
// negotiation. [MemoryTransport] and [MemoryChannel] are in-process test
// doubles that record operations and let tests drive channel state and
// inbound frames directly.
//
// Transport failures are returned as [*TransportError] naming the failed
// operation and wrapping the underlying cause.
package transport
