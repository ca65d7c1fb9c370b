// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

// Package signaling performs the HTTP offer/answer handshake against the
// realtime endpoint.
//
// [Exchanger] turns a local session description into a remote one with a
// single POST: the local SDP goes up as the raw request body
// (Content-Type: application/sdp) with the bearer credential in the
// Authorization header, and any 2xx response body comes back as the
// remote description. The exchange is not idempotent at the protocol
// level — each call creates an independent negotiation attempt server
// side — so the Exchanger never retries; retry policy belongs to the
// caller.
//
// All failures are returned as [*SignalingError] carrying the HTTP status
// (when a response was received) and the underlying cause.
package signaling
