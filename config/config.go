// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the realtime
// client.
//
// Configuration is loaded from a single file specified by either the
// REALTIME_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file search;
// this keeps configuration deterministic and auditable.
//
// The credential is never stored in the file directly. The Credential
// field names an environment variable (default OPENAI_API_KEY) whose
// value is read at load time.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// envConfigPath is the environment variable naming the config file.
const envConfigPath = "REALTIME_CONFIG"

// defaultCredentialVar is the environment variable read for the bearer
// credential when the config file does not name one.
const defaultCredentialVar = "OPENAI_API_KEY"

// Config is the realtime client configuration.
type Config struct {
	// Endpoint is the signaling endpoint for the SDP exchange.
	// Default: https://api.openai.com/v1/realtime
	Endpoint string `yaml:"endpoint"`

	// SocketEndpoint is the WebSocket endpoint for socket mode.
	// Default: wss://api.openai.com/v1/realtime
	SocketEndpoint string `yaml:"socket_endpoint"`

	// Model selects the remote model.
	// Default: gpt-4o-realtime-preview
	Model string `yaml:"model"`

	// CredentialVar names the environment variable holding the bearer
	// credential. Default: OPENAI_API_KEY
	CredentialVar string `yaml:"credential_var"`

	// ICEServers lists STUN/TURN URLs for candidate gathering. Empty
	// means default discovery: host candidates only, no explicit relay
	// or reflexive servers.
	ICEServers []ICEServerConfig `yaml:"ice_servers"`

	// Audio enables local audio capture and the device audio session.
	Audio bool `yaml:"audio"`
}

// ICEServerConfig is one STUN/TURN server entry.
type ICEServerConfig struct {
	URLs       []string `yaml:"urls"`
	Username   string   `yaml:"username,omitempty"`
	Credential string   `yaml:"credential,omitempty"`
}

// Default returns the default configuration. The defaults make a config
// file optional for the common case: public endpoint, default model,
// credential from OPENAI_API_KEY.
func Default() *Config {
	return &Config{
		Endpoint:       "https://api.openai.com/v1/realtime",
		SocketEndpoint: "wss://api.openai.com/v1/realtime",
		Model:          "gpt-4o-realtime-preview",
		CredentialVar:  defaultCredentialVar,
		Audio:          true,
	}
}

// Load reads the config file named by REALTIME_CONFIG, or returns the
// defaults when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(envConfigPath)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates a config file, applying defaults for
// unset fields.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.CredentialVar == "" {
		return fmt.Errorf("credential_var must not be empty")
	}
	for index, server := range c.ICEServers {
		if len(server.URLs) == 0 {
			return fmt.Errorf("ice_servers[%d] has no urls", index)
		}
	}
	return nil
}

// Credential reads the bearer credential from the configured environment
// variable.
func (c *Config) Credential() (string, error) {
	credential := os.Getenv(c.CredentialVar)
	if credential == "" {
		return "", fmt.Errorf("config: credential variable %s is unset or empty", c.CredentialVar)
	}
	return credential, nil
}
