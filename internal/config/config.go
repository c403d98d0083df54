// Package config assembles tetherctl settings from compiled-in defaults,
// an optional TOML file, and TETHER_* environment variables, in that
// order. Command-line flags override all three in the command layer.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"tether/internal/relay"
)

// Environment variables read by Load. TETHER_RELAY_PORTS takes the same
// "<low>-<high>" form as the relay_ports file key.
const (
	EnvServer         = "TETHER_SERVER"
	EnvPort           = "TETHER_PORT"
	EnvCertFile       = "TETHER_CERT_FILE"
	EnvKeyFile        = "TETHER_KEY_FILE"
	EnvRelayPorts     = "TETHER_RELAY_PORTS"
	EnvConnectTimeout = "TETHER_CONNECT_TIMEOUT"
)

// DefaultHubPort is the port hubs listen on unless told otherwise.
const DefaultHubPort = 39626

// Settings is everything tetherctl needs to reach a hub.
type Settings struct {
	Server         string
	Port           int
	CertFile       string
	KeyFile        string
	RelayPorts     relay.PortRange
	ConnectTimeout time.Duration
}

func Defaults() Settings {
	return Settings{
		Server:         "localhost",
		Port:           DefaultHubPort,
		RelayPorts:     relay.DefaultPortRange(),
		ConnectTimeout: 5 * time.Second,
	}
}

// Addr returns the hub dial address.
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Server, strconv.Itoa(s.Port))
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.Server) == "" {
		return fmt.Errorf("config: server required")
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", s.Port)
	}
	return s.RelayPorts.Validate()
}

// Load builds Settings from defaults, then the TOML file at path, then
// the environment. An empty path means the default config file, which
// may be absent; an explicit path must exist. A .env file in the working
// directory is folded into the environment first.
func Load(path string) (Settings, error) {
	s := Defaults()

	required := path != ""
	resolved := path
	if !required {
		resolved = DefaultPath()
	}
	if resolved != "" {
		if _, err := os.Stat(resolved); err == nil {
			if err := s.applyFile(resolved); err != nil {
				return Settings{}, err
			}
		} else if required {
			return Settings{}, fmt.Errorf("load config: %w", err)
		}
	}

	// A missing .env is ordinary; only explicit settings matter.
	_ = godotenv.Load()
	if err := s.applyEnv(); err != nil {
		return Settings{}, err
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// DefaultPath is ~/.config/tether/config.toml, or empty when no home
// directory resolves.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tether", "config.toml")
}

type fileConfig struct {
	Server         string `toml:"server"`
	Port           int    `toml:"port"`
	CertFile       string `toml:"cert_file"`
	KeyFile        string `toml:"key_file"`
	RelayPorts     string `toml:"relay_ports"`
	ConnectTimeout string `toml:"connect_timeout"`
}

func (s *Settings) applyFile(path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if meta.IsDefined("server") {
		s.Server = strings.TrimSpace(raw.Server)
	}
	if meta.IsDefined("port") {
		s.Port = raw.Port
	}
	if meta.IsDefined("cert_file") {
		s.CertFile = raw.CertFile
	}
	if meta.IsDefined("key_file") {
		s.KeyFile = raw.KeyFile
	}
	if meta.IsDefined("relay_ports") {
		ports, err := relay.ParsePortRange(raw.RelayPorts)
		if err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
		s.RelayPorts = ports
	}
	if meta.IsDefined("connect_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ConnectTimeout))
		if err != nil {
			return fmt.Errorf("load config %s: parse connect_timeout: %w", path, err)
		}
		s.ConnectTimeout = d
	}
	return nil
}

func (s *Settings) applyEnv() error {
	if v := os.Getenv(EnvServer); v != "" {
		s.Server = strings.TrimSpace(v)
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: parse %s: %v", EnvPort, err)
		}
		s.Port = port
	}
	if v := os.Getenv(EnvCertFile); v != "" {
		s.CertFile = v
	}
	if v := os.Getenv(EnvKeyFile); v != "" {
		s.KeyFile = v
	}
	if v := os.Getenv(EnvRelayPorts); v != "" {
		ports, err := relay.ParsePortRange(v)
		if err != nil {
			return fmt.Errorf("config: parse %s: %w", EnvRelayPorts, err)
		}
		s.RelayPorts = ports
	}
	if v := os.Getenv(EnvConnectTimeout); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: parse %s: %v", EnvConnectTimeout, err)
		}
		s.ConnectTimeout = d
	}
	return nil
}
