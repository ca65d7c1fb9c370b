// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

// Package session implements the realtime session negotiator: the state
// machine that establishes one persistent session between the local
// client and a remote conversational model endpoint, multiplexing a JSON
// event channel and a live audio track over a single negotiated
// peer-to-peer transport.
//
// A [Session] moves Idle → Negotiating → Connected on success, or
// Negotiating → Failed on any handshake error; [Session.Disconnect]
// returns it to Idle from any state. [Session.Connect] drives the strict
// negotiation pipeline: acquire a transport, attach local audio
// (non-fatal on failure), create the "oai-events" data channel eagerly,
// generate and commit the local offer, exchange it for a remote
// description through the signaling [Exchanger], and commit the answer.
// Every pipeline error terminates at the failing step with no rollback;
// cleanup of committed state is the caller's Disconnect.
//
// [Session.ConnectWebSocket] is the alternative path for the protocol's
// socket mode: the same event-channel semantics over one WebSocket, with
// no SDP negotiation at all.
//
// Events flow through the single-slot [ChannelObserver]: the last
// registrant wins and no backlog is replayed. When the channel opens with
// no observer registered, the session installs an internal logging
// observer so inbound frames are never silently lost; a later
// [Session.SetChannelObserver] evicts it. Inbound frames that are not
// valid UTF-8 are dropped as protocol noise; valid frames reach the
// observer verbatim, unparsed.
//
// Sending while no channel exists is a defined no-op (the "not yet
// connected" case). Sending while the channel exists but is not open
// returns [ErrChannelNotReady].
package session
