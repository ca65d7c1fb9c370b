// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
)

// ConnectionState describes the transport connection's progress toward
// (or away from) an established peer-to-peer link.
type ConnectionState int

// Connection states, in rough lifecycle order.
const (
	ConnectionNew ConnectionState = iota
	ConnectionConnecting
	ConnectionConnected
	ConnectionDisconnected
	ConnectionFailed
	ConnectionClosed
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionNew:
		return "new"
	case ConnectionConnecting:
		return "connecting"
	case ConnectionConnected:
		return "connected"
	case ConnectionDisconnected:
		return "disconnected"
	case ConnectionFailed:
		return "failed"
	case ConnectionClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ChannelState describes a data channel's readiness. Frames may be sent
// only while the channel is ChannelOpen.
type ChannelState int

// Channel states, in lifecycle order.
const (
	ChannelConnecting ChannelState = iota
	ChannelOpen
	ChannelClosing
	ChannelClosed
)

func (s ChannelState) String() string {
	switch s {
	case ChannelConnecting:
		return "connecting"
	case ChannelOpen:
		return "open"
	case ChannelClosing:
		return "closing"
	case ChannelClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Capability is one negotiable transport connection. A session owns at
// most one Capability at a time and drives it through the strict sequence
// AddLocalAudio (optional) → CreateDataChannel → CreateOffer →
// SetLocalDescription → SetRemoteDescription.
//
// Implementations invoke state handlers on their own goroutines; callers
// must do their own locking in handlers.
type Capability interface {
	// AddLocalAudio creates a local audio source and attaches it as an
	// outbound track. Failure is non-fatal to negotiation: a session
	// without local media is a valid text-only session.
	AddLocalAudio() error

	// CreateDataChannel creates an ordered reliable data channel with the
	// given label. The channel object exists immediately but is not
	// usable until the transport reports it open.
	CreateDataChannel(label string) (DataChannel, error)

	// CreateOffer generates a local session description offer.
	CreateOffer(ctx context.Context) (string, error)

	// SetLocalDescription commits the offer as the local description.
	// Implementations using vanilla ICE block until candidate gathering
	// completes or ctx is done.
	SetLocalDescription(ctx context.Context, sdp string) error

	// LocalDescription returns the committed local description, complete
	// with any gathered candidates. Empty before SetLocalDescription.
	LocalDescription() string

	// SetRemoteDescription commits the answer produced by the signaling
	// exchange. It is consumed exactly once per negotiation.
	SetRemoteDescription(ctx context.Context, sdp string) error

	// OnConnectionStateChange registers the connection state handler.
	// Single slot: registering replaces any previous handler.
	OnConnectionStateChange(handler func(ConnectionState))

	// Close releases the connection and all channels on it.
	Close() error
}

// DataChannel is one ordered reliable bidirectional channel. Handler
// registration is single-slot with replace semantics; no backlog is
// replayed to a newly registered handler.
type DataChannel interface {
	// Label returns the channel's protocol label.
	Label() string

	// ReadyState returns the channel's current state.
	ReadyState() ChannelState

	// SendText transmits text as a single non-binary frame.
	SendText(text string) error

	// OnStateChange registers the channel state handler.
	OnStateChange(handler func(ChannelState))

	// OnMessage registers the inbound frame handler. Frames are delivered
	// as raw bytes; text decoding is the receiver's concern.
	OnMessage(handler func(data []byte))

	// Close closes the channel.
	Close() error
}

// TransportError represents a failed transport operation. Op names the
// operation ("create offer", "set remote description", ...) and Cause is
// the underlying transport engine error.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
