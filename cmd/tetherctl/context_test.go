package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigShowResolvesFlagOverrides(t *testing.T) {
	path := writeTestConfig(t, `
server = "hub-file.example.org"
port = 41000
relay_ports = "8000-8009"
`)

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{
		"config", "show",
		"--config", path,
		"--server", "hub-flag.example.org",
		"--relay-ports", "9000-9009",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}

	rendered := out.String()
	if !strings.Contains(rendered, "server: hub-flag.example.org\n") {
		t.Fatalf("flag did not override file:\n%s", rendered)
	}
	if !strings.Contains(rendered, "port: 41000\n") {
		t.Fatalf("file port lost:\n%s", rendered)
	}
	if !strings.Contains(rendered, "relay_ports: 9000-9009\n") {
		t.Fatalf("relay ports flag not applied:\n%s", rendered)
	}
}

func TestConfigShowRejectsBadRelayPortsFlag(t *testing.T) {
	path := writeTestConfig(t, `server = "hub-file.example.org"`)

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"config", "show",
		"--config", path,
		"--relay-ports", "9009-9000",
	})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for reversed relay ports flag")
	}
}

func TestConfigInitWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if !strings.Contains(string(body), "relay_ports") {
		t.Fatalf("template missing relay_ports:\n%s", body)
	}
}
