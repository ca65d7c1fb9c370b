// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// socketTestServer upgrades one connection, records the handshake, echoes
// a canned event, and captures inbound frames.
type socketTestServer struct {
	server   *httptest.Server
	auth     chan string
	model    chan string
	received chan string
}

func newSocketTestServer(t *testing.T, firstEvent string) *socketTestServer {
	t.Helper()
	sts := &socketTestServer{
		auth:     make(chan string, 1),
		model:    make(chan string, 1),
		received: make(chan string, 16),
	}

	upgrader := websocket.Upgrader{}
	sts.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		sts.auth <- request.Header.Get("Authorization")
		sts.model <- request.URL.Query().Get("model")

		conn, err := upgrader.Upgrade(writer, request, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		if firstEvent != "" {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(firstEvent)); err != nil {
				return
			}
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			sts.received <- string(data)
		}
	}))
	t.Cleanup(sts.server.Close)
	return sts
}

func (s *socketTestServer) url() string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func TestConnectWebSocket(t *testing.T) {
	const serverEvent = `{"type":"session.created","session":{"id":"sess_1"}}`
	sts := newSocketTestServer(t, serverEvent)

	s := New(Config{
		ModelID:    "gpt-4o-realtime",
		Credential: "sk-test",
		Logger:     testLogger(),
	})
	observer := &recordingObserver{}
	s.SetChannelObserver(observer)

	if err := s.ConnectWebSocket(context.Background(), sts.url()); err != nil {
		t.Fatalf("ConnectWebSocket failed: %v", err)
	}
	defer s.Disconnect()

	if state := s.State(); state != StateConnected {
		t.Errorf("state = %v, want %v", state, StateConnected)
	}
	if auth := <-sts.auth; auth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want %q", auth, "Bearer sk-test")
	}
	if model := <-sts.model; model != "gpt-4o-realtime" {
		t.Errorf("model query = %q, want %q", model, "gpt-4o-realtime")
	}

	// The server's first event reaches the observer verbatim.
	deadline := time.After(5 * time.Second)
	for {
		if messages := observer.Messages(); len(messages) > 0 {
			if messages[0] != serverEvent {
				t.Errorf("received = %q, want %q", messages[0], serverEvent)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("observer never received the server event")
		case <-time.After(time.Millisecond):
		}
	}

	// Outbound events flow through the same send contract.
	if err := s.SendTextInput("hello over socket"); err != nil {
		t.Fatalf("SendTextInput failed: %v", err)
	}
	select {
	case frame := <-sts.received:
		if !strings.Contains(frame, `"hello over socket"`) {
			t.Errorf("server received %q, want the text envelope", frame)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server never received the outbound frame")
	}
}

func TestConnectWebSocketDialFailure(t *testing.T) {
	s := New(Config{
		ModelID:    "gpt-4o-realtime",
		Credential: "sk-test",
		Logger:     testLogger(),
	})

	err := s.ConnectWebSocket(context.Background(), "ws://127.0.0.1:1/realtime")
	if err == nil {
		t.Fatal("expected dial failure, got nil")
	}
	if state := s.State(); state != StateFailed {
		t.Errorf("state = %v, want %v", state, StateFailed)
	}

	s.Disconnect()
	if state := s.State(); state != StateIdle {
		t.Errorf("state after Disconnect = %v, want %v", state, StateIdle)
	}
}
