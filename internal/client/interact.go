package client

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"tether/internal/bridge"
	"tether/internal/protocol"
	"tether/internal/relay"
)

// InteractOptions shape a remote console session.
type InteractOptions struct {
	AuthLevel  string
	Workdir    string
	Input      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	Interrupts <-chan os.Signal
}

// Interact opens a remote console on the hub and bridges it to the local
// terminal: remote prompts are answered from Input, remote output lands
// on Stdout and Stderr, and the session ends when the remote side closes
// its streams.
func (c *Client) Interact(ctx context.Context, opts InteractOptions) error {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	level := opts.AuthLevel
	if level == "" {
		level = protocol.AuthRead
	}

	s, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	req := protocol.InteractRequest{Command: protocol.CommandInteract, AuthLevel: level, Path: opts.Workdir}
	if err := s.Communicate(req, nil); err != nil {
		return err
	}

	r, err := relay.Listen(relay.Config{
		Ports:       c.cfg.Ports,
		Interactive: true,
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
	})
	if err != nil {
		return err
	}
	defer r.Stop()

	if err := s.Send(protocol.Advertisement{Port: r.Port()}); err != nil {
		return err
	}
	if err := r.Accept(); err != nil {
		return err
	}
	r.Run()
	log.Debug().Str("server", s.Server()).Msg("console session open")

	return bridge.Run(bridge.Config{
		Prompts:    r.Prompts(),
		Console:    r.Console(),
		Input:      opts.Input,
		Output:     opts.Stdout,
		Interrupts: opts.Interrupts,
	})
}
