package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# tetherctl hub connection
server = "hub.example.org"
port = 39626

# Client identity presented during the TLS handshake.
cert_file = "/etc/tether/client-cert.pem"
key_file = "/etc/tether/client-key.pem"

# Local span the hub connects back to for job output streams.
relay_ports = "7710-7749"

connect_timeout = "5s"
`

// Template returns a commented starter config file.
func Template() string {
	return configTemplate
}

// WriteTemplate writes the starter config to path, creating parent
// directories as needed. An existing file is left alone unless overwrite
// is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(configTemplate), 0o600)
}
