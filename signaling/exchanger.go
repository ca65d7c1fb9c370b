// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package signaling

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// maxErrorBodyBytes bounds how much of a non-2xx response body is kept in
// the returned SignalingError.
const maxErrorBodyBytes = 2048

// ExchangerConfig holds configuration for creating an Exchanger.
type ExchangerConfig struct {
	// EndpointURL is the base URL of the realtime signaling endpoint
	// (e.g., "https://api.openai.com/v1/realtime").
	EndpointURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Exchanger performs the offer/answer handshake: one POST per negotiation
// attempt, local SDP in, remote SDP out. It holds the endpoint URL and
// HTTP transport, shared across Sessions.
type Exchanger struct {
	endpointURL string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewExchanger creates an Exchanger for the given endpoint.
func NewExchanger(config ExchangerConfig) (*Exchanger, error) {
	if config.EndpointURL == "" {
		return nil, fmt.Errorf("signaling: EndpointURL is required")
	}
	if _, err := url.Parse(config.EndpointURL); err != nil {
		return nil, fmt.Errorf("signaling: invalid EndpointURL %q: %w", config.EndpointURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Exchanger{
		endpointURL: strings.TrimRight(config.EndpointURL, "/"),
		httpClient:  httpClient,
		logger:      logger,
	}, nil
}

// Exchange posts the local session description to the endpoint and returns
// the remote description from the response body. The credential travels as
// a bearer token; modelID selects the remote model via the query string.
//
// Exchange must be called at most once per negotiation attempt: repeated
// calls create independent negotiation attempts server side. It never
// retries.
func (e *Exchanger) Exchange(ctx context.Context, localDescription, modelID, credential string) (string, error) {
	requestURL := e.endpointURL + "?" + url.Values{"model": {modelID}}.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, strings.NewReader(localDescription))
	if err != nil {
		return "", &SignalingError{Cause: fmt.Errorf("building exchange request: %w", err)}
	}
	request.Header.Set("Authorization", "Bearer "+credential)
	request.Header.Set("Content-Type", "application/sdp")

	response, err := e.httpClient.Do(request)
	if err != nil {
		return "", &SignalingError{Cause: fmt.Errorf("posting offer: %w", err)}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", &SignalingError{
			StatusCode: response.StatusCode,
			Cause:      fmt.Errorf("reading exchange response: %w", err),
		}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", &SignalingError{
			StatusCode: response.StatusCode,
			Body:       truncate(string(body), maxErrorBodyBytes),
		}
	}

	if !utf8.Valid(body) {
		return "", &SignalingError{
			StatusCode: response.StatusCode,
			Cause:      fmt.Errorf("response body is not valid UTF-8"),
		}
	}

	e.logger.Debug("offer exchanged",
		"model", modelID,
		"status", response.StatusCode,
		"answer_bytes", len(body),
	)

	return string(body), nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
