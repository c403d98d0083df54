package session

import (
	"errors"
	"strings"
	"time"

	"tether/internal/protocol/frame"
)

var (
	ErrCertFileRequired = errors.New("session: tls cert file required")
	ErrKeyFileRequired  = errors.New("session: tls key file required")
)

// TLSConfig names the client identity presented to the hub. Trust runs by
// certificate possession in both directions, so no CA bundle appears here.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// Config defines transport bounds for one hub session.
type Config struct {
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	TLS              TLSConfig
	Limits           frame.Limits
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout:   5 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		Limits:           frame.DefaultLimits(),
	}
}

func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.Limits.ChunkSize <= 0 {
		c.Limits.ChunkSize = def.Limits.ChunkSize
	}
	if c.Limits.MaxPayloadBytes <= 0 {
		c.Limits.MaxPayloadBytes = def.Limits.MaxPayloadBytes
	}
	return c
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.TLS.CertFile) == "" {
		return ErrCertFileRequired
	}
	if strings.TrimSpace(c.TLS.KeyFile) == "" {
		return ErrKeyFileRequired
	}
	return nil
}
