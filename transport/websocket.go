// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// Compile-time interface check.
var _ DataChannel = (*WebSocketChannel)(nil)

// WebSocketConfig holds configuration for dialing a WebSocketChannel.
type WebSocketConfig struct {
	// URL is the socket endpoint (e.g., "wss://api.openai.com/v1/realtime").
	URL string
	// ModelID selects the remote model via the query string. Optional when
	// the URL already carries a model parameter.
	ModelID string
	// Credential is the bearer token sent in the Authorization header.
	Credential string
	// Dialer is used for the WebSocket handshake. If nil,
	// websocket.DefaultDialer is used.
	Dialer *websocket.Dialer
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// WebSocketChannel is a DataChannel over a single WebSocket, for the
// protocol's socket mode where the event stream runs without SDP
// negotiation. The channel is open as soon as the dial completes; a state
// handler registered after that point is invoked immediately with
// ChannelOpen so no registrant misses the open notification.
type WebSocketChannel struct {
	conn   *websocket.Conn
	logger *slog.Logger

	// writeMu serializes outbound frames; gorilla permits only one
	// concurrent writer.
	writeMu sync.Mutex

	mu             sync.Mutex
	state          ChannelState
	stateHandler   func(ChannelState)
	messageHandler func(data []byte)
}

// DialWebSocket opens the socket, attaches the bearer credential, and
// starts the read loop. The returned channel is already open.
func DialWebSocket(ctx context.Context, config WebSocketConfig) (*WebSocketChannel, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dialer := config.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	dialURL := config.URL
	if config.ModelID != "" {
		separator := "?"
		if parsed, err := url.Parse(config.URL); err == nil && parsed.RawQuery != "" {
			separator = "&"
		}
		dialURL += separator + url.Values{"model": {config.ModelID}}.Encode()
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+config.Credential)

	conn, response, err := dialer.DialContext(ctx, dialURL, header)
	if err != nil {
		if response != nil {
			return nil, &TransportError{
				Op:    "dial websocket",
				Cause: fmt.Errorf("handshake failed with status %d: %w", response.StatusCode, err),
			}
		}
		return nil, &TransportError{Op: "dial websocket", Cause: err}
	}

	channel := &WebSocketChannel{
		conn:   conn,
		logger: logger,
		state:  ChannelOpen,
	}
	go channel.readLoop()
	return channel, nil
}

// readLoop delivers inbound frames until the connection fails or closes.
func (c *WebSocketChannel) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.Debug("websocket read loop ended", "error", err)
			c.transition(ChannelClosed)
			return
		}

		c.mu.Lock()
		handler := c.messageHandler
		c.mu.Unlock()
		if handler != nil {
			handler(data)
		}
	}
}

func (c *WebSocketChannel) transition(state ChannelState) {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return
	}
	c.state = state
	handler := c.stateHandler
	c.mu.Unlock()
	if handler != nil {
		handler(state)
	}
}

func (c *WebSocketChannel) Label() string {
	return "websocket"
}

func (c *WebSocketChannel) ReadyState() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *WebSocketChannel) SendText(text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return &TransportError{Op: "send on websocket", Cause: err}
	}
	return nil
}

// OnStateChange registers the state handler, replacing any previous one.
// If the channel is already open the handler is invoked immediately with
// ChannelOpen, since the dial-time open transition predates any possible
// registration.
func (c *WebSocketChannel) OnStateChange(handler func(ChannelState)) {
	c.mu.Lock()
	c.stateHandler = handler
	open := c.state == ChannelOpen
	c.mu.Unlock()
	if open && handler != nil {
		handler(ChannelOpen)
	}
}

func (c *WebSocketChannel) OnMessage(handler func(data []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messageHandler = handler
}

func (c *WebSocketChannel) Close() error {
	c.transition(ChannelClosing)
	err := c.conn.Close()
	c.transition(ChannelClosed)
	if err != nil {
		return &TransportError{Op: "close websocket", Cause: err}
	}
	return nil
}
