// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/lekte/realtime/events"
	"github.com/lekte/realtime/transport"
)

// SendEvent serializes the envelope to JSON and transmits it as a single
// text frame. Sending with no channel at all is a defined no-op (the "not
// yet connected" case); sending while the channel exists but is not open
// returns ErrChannelNotReady. No acknowledgment is awaited.
func (s *Session) SendEvent(event events.Event) error {
	s.mu.Lock()
	channel := s.channel
	s.mu.Unlock()

	if channel == nil {
		return nil
	}
	if channel.ReadyState() != transport.ChannelOpen {
		return ErrChannelNotReady
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("session: encoding %q event: %w", event.Type, err)
	}
	return channel.SendText(string(encoded))
}

// SendTextInput sends a "conversation.item.create" event wrapping a single
// user text message. Fire-and-forget: request/response pairing is the
// remote protocol's concern.
func (s *Session) SendTextInput(text string) error {
	return s.SendEvent(events.ConversationItemCreate(text))
}

// RequestResponse sends a "response.create" event asking the model to
// generate a response with the given modalities. With no arguments the
// protocol default, text and audio, is requested.
func (s *Session) RequestResponse(modalities ...string) error {
	return s.SendEvent(events.ResponseCreate(modalities...))
}

// handleChannelState forwards transport-reported channel state changes to
// the observer. On open, if no observer has been registered yet, the
// session installs its internal logging observer so early inbound frames
// are never silently lost; a caller's SetChannelObserver evicts it.
func (s *Session) handleChannelState(state transport.ChannelState) {
	s.mu.Lock()
	if state == transport.ChannelOpen && s.observer == nil {
		s.observer = loggingObserver{logger: s.logger}
	}
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer.ChannelStateChanged(state)
	}
}

// handleChannelMessage decodes an inbound frame as UTF-8 text and hands it
// to the observer verbatim. Frames that fail UTF-8 decoding are protocol
// noise and produce no observer notification. The core never parses the
// JSON structure of inbound events.
func (s *Session) handleChannelMessage(data []byte) {
	if !utf8.Valid(data) {
		s.logger.Debug("dropping non-UTF-8 frame", "bytes", len(data))
		return
	}

	s.mu.Lock()
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer.MessageReceived(string(data))
	}
}

// loggingObserver is the session's default observer, installed at channel
// open when the caller has not registered one.
type loggingObserver struct {
	logger *slog.Logger
}

func (o loggingObserver) ChannelStateChanged(state transport.ChannelState) {
	o.logger.Info("event channel state changed", "state", state.String())
}

func (o loggingObserver) MessageReceived(text string) {
	o.logger.Info("event received", "payload", text)
}
