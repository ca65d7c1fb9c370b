// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

// Package audio configures the device audio session for realtime voice
// sessions.
//
// This is a side-effect shim with no bearing on negotiation: routing the
// microphone and speaker is best-effort, and a failure here never aborts
// session construction or connection. Failures are reported as
// [*SessionError] so callers that want to can still log them.
package audio

import (
	"fmt"
	"log/slog"
)

// SessionError represents a failed audio session configuration. It is
// non-fatal by contract: callers log it and proceed without local media.
type SessionError struct {
	Cause error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("audio: session configuration failed: %v", e.Cause)
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}

// Configurator prepares the device audio subsystem for a voice session.
// The zero-value default routes nothing and always succeeds, which is the
// correct behavior on platforms without an explicit audio session API.
type Configurator interface {
	// ConfigureSession sets up microphone/speaker routing for full-duplex
	// voice. Returns *SessionError on failure.
	ConfigureSession() error
}

// NullConfigurator is a Configurator that performs no device routing.
// It is the default for text-only sessions and for platforms where the
// OS manages audio routing itself.
type NullConfigurator struct {
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// ConfigureSession logs the request and succeeds.
func (c NullConfigurator) ConfigureSession() error {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("audio session configuration skipped (null configurator)")
	return nil
}
