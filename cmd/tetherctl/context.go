package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tether/internal/client"
	"tether/internal/config"
	"tether/internal/protocol/session"
	"tether/internal/relay"
)

// commandContext resolves settings once per invocation: defaults, then
// config file, then environment, then whichever persistent flags were set.
type commandContext struct {
	configFlag     string
	serverFlag     string
	portFlag       int
	certFlag       string
	keyFlag        string
	relayPortsFlag string
	logLevelFlag   string

	once     sync.Once
	settings config.Settings
	loadErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureSettings(cmd *cobra.Command) (config.Settings, error) {
	c.once.Do(func() {
		s, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.loadErr = err
			return
		}
		flags := cmd.Root().PersistentFlags()
		if flags.Changed("server") {
			s.Server = strings.TrimSpace(c.serverFlag)
		}
		if flags.Changed("port") {
			s.Port = c.portFlag
		}
		if flags.Changed("cert") {
			s.CertFile = c.certFlag
		}
		if flags.Changed("key") {
			s.KeyFile = c.keyFlag
		}
		if flags.Changed("relay-ports") {
			ports, err := relay.ParsePortRange(c.relayPortsFlag)
			if err != nil {
				c.loadErr = err
				return
			}
			s.RelayPorts = ports
		}
		if err := s.Validate(); err != nil {
			c.loadErr = err
			return
		}
		c.settings = s
	})
	return c.settings, c.loadErr
}

func (c *commandContext) newClient(cmd *cobra.Command) (*client.Client, error) {
	s, err := c.ensureSettings(cmd)
	if err != nil {
		return nil, err
	}
	return client.New(client.Config{
		Addr: s.Addr(),
		Session: session.Config{
			ConnectTimeout: s.ConnectTimeout,
			TLS:            session.TLSConfig{CertFile: s.CertFile, KeyFile: s.KeyFile},
		},
		Ports: s.RelayPorts,
	})
}
