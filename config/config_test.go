// Copyright 2026 The Lekte Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "realtime.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	config := Default()
	if config.Endpoint != "https://api.openai.com/v1/realtime" {
		t.Errorf("Endpoint = %q", config.Endpoint)
	}
	if config.Model != "gpt-4o-realtime-preview" {
		t.Errorf("Model = %q", config.Model)
	}
	if config.CredentialVar != "OPENAI_API_KEY" {
		t.Errorf("CredentialVar = %q", config.CredentialVar)
	}
	if len(config.ICEServers) != 0 {
		t.Errorf("ICEServers = %v, want none (default discovery)", config.ICEServers)
	}
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "model: gpt-realtime-mini\naudio: false\n")

	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if config.Model != "gpt-realtime-mini" {
		t.Errorf("Model = %q, want override", config.Model)
	}
	if config.Endpoint != "https://api.openai.com/v1/realtime" {
		t.Errorf("Endpoint = %q, want default", config.Endpoint)
	}
	if config.Audio {
		t.Error("Audio = true, want false")
	}
}

func TestLoadFileICEServers(t *testing.T) {
	path := writeConfig(t, `
ice_servers:
  - urls: ["stun:stun.example.net:3478"]
  - urls: ["turn:turn.example.net:3478"]
    username: user
    credential: pass
`)

	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(config.ICEServers) != 2 {
		t.Fatalf("ICEServers = %d, want 2", len(config.ICEServers))
	}
	if config.ICEServers[1].Username != "user" {
		t.Errorf("Username = %q, want %q", config.ICEServers[1].Username, "user")
	}
}

func TestLoadFileRejectsEmptyModel(t *testing.T) {
	path := writeConfig(t, "model: \"\"\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error for empty model")
	}
}

func TestLoadFileRejectsServerWithoutURLs(t *testing.T) {
	path := writeConfig(t, "ice_servers:\n  - username: user\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error for ice server without urls")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCredential(t *testing.T) {
	config := Default()
	config.CredentialVar = "REALTIME_TEST_CREDENTIAL"

	t.Setenv("REALTIME_TEST_CREDENTIAL", "sk-test")
	credential, err := config.Credential()
	if err != nil {
		t.Fatalf("Credential failed: %v", err)
	}
	if credential != "sk-test" {
		t.Errorf("credential = %q, want %q", credential, "sk-test")
	}

	t.Setenv("REALTIME_TEST_CREDENTIAL", "")
	if _, err := config.Credential(); err == nil {
		t.Fatal("expected error for empty credential variable")
	}
}

func TestLoadUsesEnvironmentPath(t *testing.T) {
	path := writeConfig(t, "model: from-env-file\n")
	t.Setenv("REALTIME_CONFIG", path)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Model != "from-env-file" {
		t.Errorf("Model = %q, want %q", config.Model, "from-env-file")
	}
}
