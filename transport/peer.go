// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
)

// Compile-time interface checks.
var (
	_ Capability  = (*PeerTransport)(nil)
	_ DataChannel = (*peerChannel)(nil)
)

// iceGatherTimeout is the maximum time to wait for ICE candidate gathering
// to complete before the local description commit fails.
const iceGatherTimeout = 15 * time.Second

// PeerConfig holds configuration for creating a PeerTransport.
type PeerConfig struct {
	// ICEServers is the STUN/TURN server list for candidate gathering.
	// Empty means host candidates only, the default discovery mode.
	ICEServers []webrtc.ICEServer
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// PeerTransport wraps a pion PeerConnection as a session transport
// capability. One PeerTransport backs exactly one negotiation attempt;
// reconnecting means creating a fresh PeerTransport.
//
// Description commit uses vanilla ICE: SetLocalDescription blocks until
// candidate gathering completes, so LocalDescription returns the complete
// SDP and the signaling exchange needs a single round-trip.
type PeerTransport struct {
	connection *webrtc.PeerConnection
	logger     *slog.Logger

	// mu guards the single-slot state handler.
	mu           sync.Mutex
	stateHandler func(ConnectionState)

	audioTrack *webrtc.TrackLocalStaticSample
}

// NewPeerTransport creates a PeerConnection configured with the given ICE
// servers. The pion API is configured to include loopback candidates so
// same-machine sessions and test environments work without STUN.
func NewPeerTransport(config PeerConfig) (*PeerTransport, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	settingEngine := webrtc.SettingEngine{}
	settingEngine.SetIncludeLoopbackCandidate(true)

	api := webrtc.NewAPI(webrtc.WithSettingEngine(settingEngine))
	connection, err := api.NewPeerConnection(webrtc.Configuration{
		ICEServers: config.ICEServers,
	})
	if err != nil {
		return nil, &TransportError{Op: "create peer connection", Cause: err}
	}

	transport := &PeerTransport{
		connection: connection,
		logger:     logger,
	}

	connection.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		logger.Debug("ICE state change", "state", state.String())
		transport.mu.Lock()
		handler := transport.stateHandler
		transport.mu.Unlock()
		if handler != nil {
			handler(connectionStateFromICE(state))
		}
	})

	return transport, nil
}

// AddLocalAudio creates an Opus audio track and attaches it as an outbound
// track. The track carries the microphone samples the media layer writes
// via AudioTrack.
func (t *PeerTransport) AddLocalAudio() error {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{
			MimeType:  webrtc.MimeTypeOpus,
			ClockRate: 48000,
			Channels:  2,
		},
		"audio",
		"realtime-mic",
	)
	if err != nil {
		return &TransportError{Op: "create audio track", Cause: err}
	}
	if _, err := t.connection.AddTrack(track); err != nil {
		return &TransportError{Op: "add audio track", Cause: err}
	}
	t.audioTrack = track
	return nil
}

// AudioTrack returns the outbound audio track, or nil when AddLocalAudio
// has not succeeded. Media writers push Opus samples here.
func (t *PeerTransport) AudioTrack() *webrtc.TrackLocalStaticSample {
	return t.audioTrack
}

// CreateDataChannel creates an ordered reliable data channel. The channel
// exists immediately but only becomes usable once the transport reports
// it open.
func (t *PeerTransport) CreateDataChannel(label string) (DataChannel, error) {
	ordered := true
	channel, err := t.connection.CreateDataChannel(label, &webrtc.DataChannelInit{
		Ordered: &ordered,
	})
	if err != nil {
		return nil, &TransportError{Op: fmt.Sprintf("create data channel %s", label), Cause: err}
	}
	return newPeerChannel(channel, t.logger), nil
}

// CreateOffer generates the local session description offer.
func (t *PeerTransport) CreateOffer(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &TransportError{Op: "create offer", Cause: err}
	}
	offer, err := t.connection.CreateOffer(nil)
	if err != nil {
		return "", &TransportError{Op: "create offer", Cause: err}
	}
	return offer.SDP, nil
}

// SetLocalDescription commits the offer and blocks until ICE candidate
// gathering completes (vanilla ICE), so the description returned by
// LocalDescription is complete.
func (t *PeerTransport) SetLocalDescription(ctx context.Context, sdp string) error {
	gatherComplete := webrtc.GatheringCompletePromise(t.connection)

	offer := webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  sdp,
	}
	if err := t.connection.SetLocalDescription(offer); err != nil {
		return &TransportError{Op: "set local description", Cause: err}
	}

	select {
	case <-gatherComplete:
		return nil
	case <-time.After(iceGatherTimeout):
		return &TransportError{
			Op:    "set local description",
			Cause: fmt.Errorf("ICE gathering timed out after %s", iceGatherTimeout),
		}
	case <-ctx.Done():
		return &TransportError{Op: "set local description", Cause: ctx.Err()}
	}
}

// LocalDescription returns the committed local description with all
// gathered candidates embedded, or empty before SetLocalDescription.
func (t *PeerTransport) LocalDescription() string {
	description := t.connection.LocalDescription()
	if description == nil {
		return ""
	}
	return description.SDP
}

// SetRemoteDescription commits the answer from the signaling exchange.
func (t *PeerTransport) SetRemoteDescription(ctx context.Context, sdp string) error {
	if err := ctx.Err(); err != nil {
		return &TransportError{Op: "set remote description", Cause: err}
	}
	answer := webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  sdp,
	}
	if err := t.connection.SetRemoteDescription(answer); err != nil {
		return &TransportError{Op: "set remote description", Cause: err}
	}
	return nil
}

// OnConnectionStateChange registers the connection state handler,
// replacing any previous registration.
func (t *PeerTransport) OnConnectionStateChange(handler func(ConnectionState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stateHandler = handler
}

// Close releases the PeerConnection and every channel on it.
func (t *PeerTransport) Close() error {
	if err := t.connection.Close(); err != nil {
		return &TransportError{Op: "close peer connection", Cause: err}
	}
	return nil
}

func connectionStateFromICE(state webrtc.ICEConnectionState) ConnectionState {
	switch state {
	case webrtc.ICEConnectionStateNew:
		return ConnectionNew
	case webrtc.ICEConnectionStateChecking:
		return ConnectionConnecting
	case webrtc.ICEConnectionStateConnected, webrtc.ICEConnectionStateCompleted:
		return ConnectionConnected
	case webrtc.ICEConnectionStateDisconnected:
		return ConnectionDisconnected
	case webrtc.ICEConnectionStateFailed:
		return ConnectionFailed
	case webrtc.ICEConnectionStateClosed:
		return ConnectionClosed
	default:
		return ConnectionNew
	}
}

// peerChannel adapts a pion DataChannel to the DataChannel interface.
// The pion callbacks are registered once at construction and dispatch
// through the single-slot handlers, so replacing a handler takes effect
// immediately without re-registering with pion.
type peerChannel struct {
	channel *webrtc.DataChannel
	logger  *slog.Logger

	mu             sync.Mutex
	stateHandler   func(ChannelState)
	messageHandler func(data []byte)
}

func newPeerChannel(channel *webrtc.DataChannel, logger *slog.Logger) *peerChannel {
	wrapped := &peerChannel{
		channel: channel,
		logger:  logger,
	}

	channel.OnOpen(func() {
		logger.Debug("data channel opened", "label", channel.Label())
		wrapped.dispatchState(ChannelOpen)
	})
	channel.OnClose(func() {
		logger.Debug("data channel closed", "label", channel.Label())
		wrapped.dispatchState(ChannelClosed)
	})
	channel.OnMessage(func(message webrtc.DataChannelMessage) {
		wrapped.mu.Lock()
		handler := wrapped.messageHandler
		wrapped.mu.Unlock()
		if handler != nil {
			handler(message.Data)
		}
	})

	return wrapped
}

func (c *peerChannel) dispatchState(state ChannelState) {
	c.mu.Lock()
	handler := c.stateHandler
	c.mu.Unlock()
	if handler != nil {
		handler(state)
	}
}

func (c *peerChannel) Label() string {
	return c.channel.Label()
}

func (c *peerChannel) ReadyState() ChannelState {
	switch c.channel.ReadyState() {
	case webrtc.DataChannelStateConnecting:
		return ChannelConnecting
	case webrtc.DataChannelStateOpen:
		return ChannelOpen
	case webrtc.DataChannelStateClosing:
		return ChannelClosing
	default:
		return ChannelClosed
	}
}

func (c *peerChannel) SendText(text string) error {
	if err := c.channel.SendText(text); err != nil {
		return &TransportError{Op: fmt.Sprintf("send on channel %s", c.channel.Label()), Cause: err}
	}
	return nil
}

func (c *peerChannel) OnStateChange(handler func(ChannelState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateHandler = handler
}

func (c *peerChannel) OnMessage(handler func(data []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messageHandler = handler
}

func (c *peerChannel) Close() error {
	if err := c.channel.Close(); err != nil {
		return &TransportError{Op: fmt.Sprintf("close channel %s", c.channel.Label()), Cause: err}
	}
	return nil
}
