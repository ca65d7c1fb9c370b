// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

// realtime-client is a terminal client for realtime conversational
// sessions. It negotiates a session against the configured endpoint,
// then reads lines from stdin: each line is sent as user text input
// followed by a response generation request, and every inbound event is
// printed to stdout.
//
// Usage:
//
//	realtime-client [--config FILE] [--model MODEL] [--endpoint URL]
//	                [--websocket] [--log-output FILE]
//
// The bearer credential is read from the environment variable named by
// the config (default OPENAI_API_KEY).
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pion/webrtc/v4"
	"github.com/spf13/pflag"

	"github.com/lekte/realtime/config"
	"github.com/lekte/realtime/session"
	"github.com/lekte/realtime/signaling"
	"github.com/lekte/realtime/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var modelFlag string
	var endpointFlag string
	var useWebSocket bool
	var logOutput string

	flagSet := pflag.NewFlagSet("realtime-client", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the YAML config file (default: $REALTIME_CONFIG)")
	flagSet.StringVar(&modelFlag, "model", "", "remote model id (overrides config)")
	flagSet.StringVar(&endpointFlag, "endpoint", "", "signaling or socket endpoint URL (overrides config)")
	flagSet.BoolVar(&useWebSocket, "websocket", false, "use the WebSocket session mode instead of the peer transport")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (default: stderr)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if endpointFlag != "" {
		cfg.Endpoint = endpointFlag
		cfg.SocketEndpoint = endpointFlag
	}

	logWriter := io.Writer(os.Stderr)
	if logOutput != "" {
		file, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log output: %w", err)
		}
		defer file.Close()
		logWriter = file
	}
	logger := slog.New(slog.NewJSONHandler(logWriter, nil))

	credential, err := cfg.Credential()
	if err != nil {
		return err
	}

	exchanger, err := signaling.NewExchanger(signaling.ExchangerConfig{
		EndpointURL: cfg.Endpoint,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	s := session.New(session.Config{
		ModelID:    cfg.Model,
		Credential: credential,
		Exchanger:  exchanger,
		Transport:  peerFactory(cfg, logger),
		Logger:     logger,
	})
	defer s.Disconnect()
	s.SetChannelObserver(printingObserver{out: os.Stdout})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if useWebSocket {
		err = s.ConnectWebSocket(ctx, cfg.SocketEndpoint)
	} else {
		err = s.Connect(ctx)
	}
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	fmt.Fprintf(os.Stderr, "connected to %s; type a message and press enter (ctrl-d to quit)\n", cfg.Model)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := s.SendTextInput(line); err != nil {
			logger.Error("sending text input failed", "error", err)
			continue
		}
		if err := s.RequestResponse(); err != nil {
			logger.Error("requesting response failed", "error", err)
		}
	}
	return scanner.Err()
}

// peerFactory builds the transport factory from the configured ICE
// servers. An empty list means default discovery, host candidates only.
func peerFactory(cfg *config.Config, logger *slog.Logger) session.TransportFactory {
	servers := make([]webrtc.ICEServer, 0, len(cfg.ICEServers))
	for _, server := range cfg.ICEServers {
		servers = append(servers, webrtc.ICEServer{
			URLs:       server.URLs,
			Username:   server.Username,
			Credential: server.Credential,
		})
	}
	return func() (transport.Capability, error) {
		peer, err := transport.NewPeerTransport(transport.PeerConfig{
			ICEServers: servers,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		if !cfg.Audio {
			return textOnlyTransport{peer}, nil
		}
		return peer, nil
	}
}

// textOnlyTransport suppresses local audio attachment when audio capture
// is disabled in the config.
type textOnlyTransport struct {
	transport.Capability
}

func (textOnlyTransport) AddLocalAudio() error {
	return nil
}

// printingObserver writes every inbound event to the terminal.
type printingObserver struct {
	out io.Writer
}

func (o printingObserver) ChannelStateChanged(state transport.ChannelState) {
	fmt.Fprintf(o.out, "-- channel %s\n", state)
}

func (o printingObserver) MessageReceived(text string) {
	fmt.Fprintln(o.out, text)
}
