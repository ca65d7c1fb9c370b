// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package session

import "errors"

var (
	// ErrAlreadyNegotiating is returned by Connect while a negotiation is
	// in flight. The second call does not create a second transport.
	ErrAlreadyNegotiating = errors.New("session: negotiation already in progress")

	// ErrAlreadyConnected is returned by Connect on a connected session.
	// Reconnecting requires a Disconnect and a fresh negotiation.
	ErrAlreadyConnected = errors.New("session: already connected")

	// ErrNotIdle is returned by Connect after a failed negotiation that
	// has not been cleaned up. Disconnect resets the session to Idle.
	ErrNotIdle = errors.New("session: previous negotiation failed, disconnect before reconnecting")

	// ErrChannelNotReady is returned when sending while the event channel
	// exists but is not open. This is distinct from the "no channel at
	// all" case, which is a silent no-op.
	ErrChannelNotReady = errors.New("session: event channel is not open")
)
