// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package signaling

import (
	"errors"
	"fmt"
)

// SignalingError represents a failed offer/answer exchange. Callers can
// use errors.As to extract the structured information:
//
//	var signalingErr *signaling.SignalingError
//	if errors.As(err, &signalingErr) {
//	    if signalingErr.StatusCode == http.StatusUnauthorized { ... }
//	}
type SignalingError struct {
	// StatusCode is the HTTP status of the response, or zero when the
	// request never produced one (network failure, bad request build).
	StatusCode int

	// Body is the response body for non-2xx responses, truncated for
	// readability. Empty when no response was received.
	Body string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *SignalingError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("signaling: endpoint returned %d: %s", e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("signaling: endpoint returned %d", e.StatusCode)
	default:
		return fmt.Sprintf("signaling: exchange failed: %v", e.Cause)
	}
}

func (e *SignalingError) Unwrap() error {
	return e.Cause
}

// IsStatus checks whether err is a *SignalingError with the given HTTP status.
func IsStatus(err error, statusCode int) bool {
	var signalingErr *SignalingError
	if errors.As(err, &signalingErr) {
		return signalingErr.StatusCode == statusCode
	}
	return false
}
