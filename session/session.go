// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lekte/realtime/audio"
	"github.com/lekte/realtime/transport"
)

// eventChannelLabel is the protocol label of the event data channel.
const eventChannelLabel = "oai-events"

// State is the session lifecycle state. The only transitions are
// Idle → Negotiating → Connected, Negotiating → Failed, and any state
// → Idle via Disconnect.
type State int

// Session states.
const (
	StateIdle State = iota
	StateNegotiating
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNegotiating:
		return "negotiating"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Exchanger turns a local session description into a remote one. The
// production implementation is signaling.Exchanger; tests use stubs.
type Exchanger interface {
	Exchange(ctx context.Context, localDescription, modelID, credential string) (string, error)
}

// TransportFactory acquires a fresh transport capability for one
// negotiation attempt.
type TransportFactory func() (transport.Capability, error)

// ChannelObserver receives event-channel notifications. Exactly one
// observer is active per session; see Session.SetChannelObserver.
type ChannelObserver interface {
	// ChannelStateChanged is invoked on every transport-reported state
	// change of the event channel.
	ChannelStateChanged(state transport.ChannelState)

	// MessageReceived is invoked with each inbound frame decoded as UTF-8
	// text, verbatim and unparsed.
	MessageReceived(text string)
}

// Config holds configuration for creating a Session.
type Config struct {
	// ModelID selects the remote model.
	ModelID string
	// Credential is the bearer token for the signaling exchange and the
	// socket handshake. Write-once at construction.
	Credential string
	// Exchanger performs the offer/answer handshake. Required for Connect.
	Exchanger Exchanger
	// Transport acquires the transport capability. If nil, a pion
	// PeerTransport with default discovery parameters (no ICE server
	// list) is used.
	Transport TransportFactory
	// Audio configures the device audio session at construction. If nil,
	// audio.NullConfigurator is used. Failure is non-fatal and logged.
	Audio audio.Configurator
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Session is one negotiable realtime session. It owns at most one live
// transport and one event channel; both handles and the lifecycle state
// are guarded by a single mutex so the negotiation pipeline and
// caller-invoked send/disconnect never observe a handle mid-construction.
type Session struct {
	modelID    string
	credential string
	exchanger  Exchanger
	factory    TransportFactory
	logger     *slog.Logger

	mu        sync.Mutex
	state     State
	transport transport.Capability
	channel   transport.DataChannel
	observer  ChannelObserver
}

// New creates a Session in the Idle state. Construction never fails:
// audio session configuration errors are logged and ignored, and missing
// configuration surfaces later as Connect errors.
func New(config Config) *Session {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	factory := config.Transport
	if factory == nil {
		factory = func() (transport.Capability, error) {
			return transport.NewPeerTransport(transport.PeerConfig{Logger: logger})
		}
	}

	configurator := config.Audio
	if configurator == nil {
		configurator = audio.NullConfigurator{Logger: logger}
	}
	if err := configurator.ConfigureSession(); err != nil {
		logger.Warn("audio session configuration failed, continuing without device routing",
			"error", err,
		)
	}

	return &Session{
		modelID:    config.ModelID,
		credential: config.Credential,
		exchanger:  config.Exchanger,
		factory:    factory,
		logger:     logger,
		state:      StateIdle,
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect runs the negotiation pipeline. Valid only from Idle; a
// concurrent or repeated call observes ErrAlreadyNegotiating or
// ErrAlreadyConnected and creates no second transport.
//
// The pipeline is strictly sequential: transport acquisition, local audio
// attachment (failure logged, negotiation proceeds), eager event-channel
// creation, offer generation, local description commit, signaling
// exchange, remote description commit. Only after the remote description
// commits cleanly does the session become Connected. Any other step's
// error moves the session to Failed and is returned unchanged; committed
// transport state is left as-is for a caller-driven Disconnect.
func (s *Session) Connect(ctx context.Context) error {
	if err := s.beginNegotiation(); err != nil {
		return err
	}

	if s.exchanger == nil {
		return s.fail(fmt.Errorf("session: no signaling exchanger configured"))
	}

	capability, err := s.factory()
	if err != nil {
		return s.fail(err)
	}
	s.mu.Lock()
	s.transport = capability
	s.mu.Unlock()

	capability.OnConnectionStateChange(func(state transport.ConnectionState) {
		s.logger.Debug("transport connection state changed", "state", state.String())
	})

	if err := capability.AddLocalAudio(); err != nil {
		s.logger.Warn("local audio attachment failed, continuing as text-only session",
			"error", err,
		)
	}

	channel, err := capability.CreateDataChannel(eventChannelLabel)
	if err != nil {
		return s.fail(err)
	}
	channel.OnStateChange(s.handleChannelState)
	channel.OnMessage(s.handleChannelMessage)
	s.mu.Lock()
	s.channel = channel
	s.mu.Unlock()

	offer, err := capability.CreateOffer(ctx)
	if err != nil {
		return s.fail(err)
	}

	if err := capability.SetLocalDescription(ctx, offer); err != nil {
		return s.fail(err)
	}

	// The committed description may carry gathered candidates the raw
	// offer lacks; exchange the complete form.
	localDescription := capability.LocalDescription()
	if localDescription == "" {
		localDescription = offer
	}

	remoteDescription, err := s.exchanger.Exchange(ctx, localDescription, s.modelID, s.credential)
	if err != nil {
		return s.fail(err)
	}

	if err := capability.SetRemoteDescription(ctx, remoteDescription); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	if s.state == StateNegotiating {
		s.state = StateConnected
	}
	s.mu.Unlock()

	s.logger.Info("session connected", "model", s.modelID)
	return nil
}

// ConnectWebSocket establishes the session in socket mode: one WebSocket
// carrying the event stream, no SDP negotiation. The state machine and
// event-protocol contracts are identical to Connect.
func (s *Session) ConnectWebSocket(ctx context.Context, socketURL string) error {
	if err := s.beginNegotiation(); err != nil {
		return err
	}

	channel, err := transport.DialWebSocket(ctx, transport.WebSocketConfig{
		URL:        socketURL,
		ModelID:    s.modelID,
		Credential: s.credential,
		Logger:     s.logger,
	})
	if err != nil {
		return s.fail(err)
	}

	channel.OnMessage(s.handleChannelMessage)
	s.mu.Lock()
	s.channel = channel
	s.mu.Unlock()
	// Registration fires the open notification immediately, installing
	// the default observer if none is present.
	channel.OnStateChange(s.handleChannelState)

	s.mu.Lock()
	if s.state == StateNegotiating {
		s.state = StateConnected
	}
	s.mu.Unlock()

	s.logger.Info("session connected", "model", s.modelID, "mode", "websocket")
	return nil
}

// beginNegotiation claims the Idle → Negotiating transition, rejecting
// callers in any other state.
func (s *Session) beginNegotiation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateNegotiating:
		return ErrAlreadyNegotiating
	case StateConnected:
		return ErrAlreadyConnected
	case StateFailed:
		return ErrNotIdle
	}
	s.state = StateNegotiating
	return nil
}

// fail records a terminal negotiation error and returns it unchanged so
// the caller's completion receives the exact cause. A disconnect that
// raced the pipeline has already reset the state to Idle; that reset wins.
func (s *Session) fail(err error) error {
	s.mu.Lock()
	if s.state == StateNegotiating {
		s.state = StateFailed
	}
	s.mu.Unlock()
	s.logger.Error("negotiation failed", "error", err)
	return err
}

// Disconnect releases the transport and event channel and resets the
// session to Idle. Idempotent and safe from every state. It does not
// cancel an in-flight Connect: that negotiation's completion fires
// against the released transport, a deliberate property of the protocol.
func (s *Session) Disconnect() {
	s.mu.Lock()
	capability := s.transport
	channel := s.channel
	s.transport = nil
	s.channel = nil
	wasActive := s.state != StateIdle
	s.state = StateIdle
	s.mu.Unlock()

	switch {
	case capability != nil:
		// Closing the connection closes every channel on it.
		if err := capability.Close(); err != nil {
			s.logger.Warn("transport close failed", "error", err)
		}
	case channel != nil:
		// Socket mode: no transport, the channel is the connection.
		if err := channel.Close(); err != nil {
			s.logger.Warn("channel close failed", "error", err)
		}
	}

	if wasActive {
		s.logger.Info("session disconnected")
	}
}

// SetChannelObserver registers the channel observer. Single slot:
// replacing takes effect immediately, evicts any previous observer
// (including the session's internal default), and replays no backlog.
func (s *Session) SetChannelObserver(observer ChannelObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}
