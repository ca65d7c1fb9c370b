// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"sync"
)

// Compile-time interface checks.
var (
	_ Capability  = (*MemoryTransport)(nil)
	_ DataChannel = (*MemoryChannel)(nil)
)

// MemoryTransport is an in-process Capability for tests. It records every
// lifecycle operation, returns canned descriptions, and lets tests inject
// failures at each negotiation step. Channels created on it are
// [MemoryChannel] values whose state and inbound traffic the test drives
// directly.
type MemoryTransport struct {
	// OfferSDP is returned by CreateOffer. A default is used when empty.
	OfferSDP string

	// Failure injection, one per negotiation step. Nil means success.
	CreateOfferErr   error
	SetLocalErr      error
	SetRemoteErr     error
	AddAudioErr      error
	CreateChannelErr error

	mu           sync.Mutex
	ops          []string
	localSDP     string
	remoteSDP    string
	channels     []*MemoryChannel
	closed       bool
	audioAdded   bool
	stateHandler func(ConnectionState)
}

// NewMemoryTransport creates an in-process transport double.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{}
}

func (t *MemoryTransport) record(op string) {
	t.ops = append(t.ops, op)
}

func (t *MemoryTransport) AddLocalAudio() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("add local audio")
	if t.AddAudioErr != nil {
		return t.AddAudioErr
	}
	t.audioAdded = true
	return nil
}

func (t *MemoryTransport) CreateDataChannel(label string) (DataChannel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("create data channel " + label)
	if t.CreateChannelErr != nil {
		return nil, t.CreateChannelErr
	}
	channel := &MemoryChannel{label: label, state: ChannelConnecting}
	t.channels = append(t.channels, channel)
	return channel, nil
}

func (t *MemoryTransport) CreateOffer(context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("create offer")
	if t.CreateOfferErr != nil {
		return "", t.CreateOfferErr
	}
	if t.OfferSDP != "" {
		return t.OfferSDP, nil
	}
	return "v=0\r\ns=memory-offer\r\n", nil
}

func (t *MemoryTransport) SetLocalDescription(_ context.Context, sdp string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("set local description")
	if t.SetLocalErr != nil {
		return t.SetLocalErr
	}
	t.localSDP = sdp
	return nil
}

func (t *MemoryTransport) LocalDescription() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.localSDP
}

func (t *MemoryTransport) SetRemoteDescription(_ context.Context, sdp string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("set remote description")
	if t.SetRemoteErr != nil {
		return t.SetRemoteErr
	}
	t.remoteSDP = sdp
	return nil
}

func (t *MemoryTransport) OnConnectionStateChange(handler func(ConnectionState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stateHandler = handler
}

func (t *MemoryTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("close")
	t.closed = true
	for _, channel := range t.channels {
		channel.setStateLocked(ChannelClosed)
	}
	return nil
}

// Ops returns the recorded operations in call order.
func (t *MemoryTransport) Ops() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.ops...)
}

// RemoteDescription returns the committed remote description, or empty.
func (t *MemoryTransport) RemoteDescription() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remoteSDP
}

// Closed reports whether Close was called.
func (t *MemoryTransport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// AudioAdded reports whether AddLocalAudio succeeded.
func (t *MemoryTransport) AudioAdded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.audioAdded
}

// Channel returns the index-th created channel, or nil.
func (t *MemoryTransport) Channel(index int) *MemoryChannel {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.channels) {
		return nil
	}
	return t.channels[index]
}

// FireConnectionState invokes the registered connection state handler.
func (t *MemoryTransport) FireConnectionState(state ConnectionState) {
	t.mu.Lock()
	handler := t.stateHandler
	t.mu.Unlock()
	if handler != nil {
		handler(state)
	}
}

// MemoryChannel is an in-process DataChannel for tests. Sent frames are
// recorded; tests drive the channel open/closed and deliver inbound
// frames with the helper methods.
type MemoryChannel struct {
	label string

	mu             sync.Mutex
	state          ChannelState
	sent           []string
	stateHandler   func(ChannelState)
	messageHandler func(data []byte)
}

func (c *MemoryChannel) Label() string {
	return c.label
}

func (c *MemoryChannel) ReadyState() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *MemoryChannel) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

func (c *MemoryChannel) OnStateChange(handler func(ChannelState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateHandler = handler
}

func (c *MemoryChannel) OnMessage(handler func(data []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messageHandler = handler
}

func (c *MemoryChannel) Close() error {
	c.SetState(ChannelClosed)
	return nil
}

// Sent returns the recorded outbound frames in send order.
func (c *MemoryChannel) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

// SetState moves the channel to the given state and fires the state
// handler, mimicking a transport-reported state change.
func (c *MemoryChannel) SetState(state ChannelState) {
	c.mu.Lock()
	c.state = state
	handler := c.stateHandler
	c.mu.Unlock()
	if handler != nil {
		handler(state)
	}
}

// setStateLocked is SetState for callers already holding the transport
// lock; it does not fire the handler to avoid lock-order surprises during
// Close.
func (c *MemoryChannel) setStateLocked(state ChannelState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Deliver hands raw bytes to the registered message handler, mimicking an
// inbound frame. Frames delivered before a handler is registered are
// dropped, matching the no-backlog-replay contract.
func (c *MemoryChannel) Deliver(data []byte) {
	c.mu.Lock()
	handler := c.messageHandler
	c.mu.Unlock()
	if handler != nil {
		handler(data)
	}
}
