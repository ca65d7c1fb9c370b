// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketChannelRoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	handshake := make(chan *http.Request, 1)
	received := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		handshake <- request.Clone(context.Background())
		conn, err := upgrader.Upgrade(writer, request, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(data)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong"}`))
		// Keep the connection until the client closes.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	channel, err := DialWebSocket(context.Background(), WebSocketConfig{
		URL:        "ws" + strings.TrimPrefix(server.URL, "http"),
		ModelID:    "gpt-4o-realtime",
		Credential: "sk-test",
		Logger:     testLogger(),
	})
	if err != nil {
		t.Fatalf("DialWebSocket failed: %v", err)
	}
	defer channel.Close()

	request := <-handshake
	if auth := request.Header.Get("Authorization"); auth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want %q", auth, "Bearer sk-test")
	}
	if model := request.URL.Query().Get("model"); model != "gpt-4o-realtime" {
		t.Errorf("model query = %q, want %q", model, "gpt-4o-realtime")
	}

	if state := channel.ReadyState(); state != ChannelOpen {
		t.Errorf("ReadyState() = %v, want %v after dial", state, ChannelOpen)
	}

	// A state handler registered after dial still observes the open.
	states := make(chan ChannelState, 4)
	channel.OnStateChange(func(state ChannelState) { states <- state })
	select {
	case state := <-states:
		if state != ChannelOpen {
			t.Errorf("first state notification = %v, want %v", state, ChannelOpen)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("state handler never fired")
	}

	inbound := make(chan string, 1)
	channel.OnMessage(func(data []byte) { inbound <- string(data) })

	if err := channel.SendText(`{"type":"ping"}`); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	select {
	case frame := <-received:
		if frame != `{"type":"ping"}` {
			t.Errorf("server received %q", frame)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server never received the frame")
	}

	select {
	case frame := <-inbound:
		if frame != `{"type":"pong"}` {
			t.Errorf("client received %q", frame)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("client never received the reply")
	}
}

func TestWebSocketChannelCloseTransitions(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		conn, err := upgrader.Upgrade(writer, request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	channel, err := DialWebSocket(context.Background(), WebSocketConfig{
		URL:    "ws" + strings.TrimPrefix(server.URL, "http"),
		Logger: testLogger(),
	})
	if err != nil {
		t.Fatalf("DialWebSocket failed: %v", err)
	}

	if err := channel.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if state := channel.ReadyState(); state != ChannelClosed {
		t.Errorf("ReadyState() after Close = %v, want %v", state, ChannelClosed)
	}
	// Idempotent enough for the session's teardown path.
	channel.Close()
}

func TestDialWebSocketRefusedConnection(t *testing.T) {
	_, err := DialWebSocket(context.Background(), WebSocketConfig{
		URL:    "ws://127.0.0.1:1/realtime",
		Logger: testLogger(),
	})
	if err == nil {
		t.Fatal("expected dial error, got nil")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error type = %T, want *TransportError", err)
	}
}

func TestDialWebSocketPreservesExistingQuery(t *testing.T) {
	upgrader := websocket.Upgrader{}
	query := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		query <- request.URL.RawQuery
		conn, err := upgrader.Upgrade(writer, request, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer server.Close()

	channel, err := DialWebSocket(context.Background(), WebSocketConfig{
		URL:     "ws" + strings.TrimPrefix(server.URL, "http") + "?intent=conversation",
		ModelID: "gpt-4o-realtime",
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("DialWebSocket failed: %v", err)
	}
	defer channel.Close()

	raw := <-query
	if !strings.Contains(raw, "intent=conversation") || !strings.Contains(raw, "model=gpt-4o-realtime") {
		t.Errorf("query = %q, want both intent and model parameters", raw)
	}
}
