// Package client drives hub operations, one fresh control session per
// command.
package client

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"tether/internal/protocol"
	"tether/internal/protocol/session"
	"tether/internal/relay"
)

var ErrAddrRequired = errors.New("client: hub address required")

// Config selects the hub endpoint and the local callback port span.
type Config struct {
	Addr    string
	Session session.Config
	Ports   relay.PortRange
}

type Client struct {
	cfg Config
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, ErrAddrRequired
	}
	cfg.Session = cfg.Session.WithDefaults()
	if cfg.Ports == (relay.PortRange{}) {
		cfg.Ports = relay.DefaultPortRange()
	}
	return &Client{cfg: cfg}, nil
}

func (c *Client) connect(ctx context.Context) (*session.Session, error) {
	return session.Connect(ctx, c.cfg.Addr, c.cfg.Session)
}

// Poll fetches the current state of one job.
func (c *Client) Poll(ctx context.Context, appID int) (protocol.PollReport, error) {
	s, err := c.connect(ctx)
	if err != nil {
		return protocol.PollReport{}, err
	}
	defer s.Close()

	var report protocol.PollReport
	if err := s.Communicate(protocol.PollRequest{Command: protocol.CommandPoll, AppID: appID}, &report); err != nil {
		return protocol.PollReport{}, err
	}
	return report, nil
}

// Kill asks the hub to terminate one job. It always runs on a session of
// its own so an in-flight synchronous wait is never disturbed.
func (c *Client) Kill(ctx context.Context, appID int) (protocol.KillReceipt, error) {
	s, err := c.connect(ctx)
	if err != nil {
		return protocol.KillReceipt{}, err
	}
	defer s.Close()

	var receipt protocol.KillReceipt
	if err := s.Communicate(protocol.KillRequest{Command: protocol.CommandKill, AppID: appID}, &receipt); err != nil {
		return protocol.KillReceipt{}, err
	}
	log.Debug().Int("appid", appID).Str("result", receipt.Result).Msg("kill acknowledged")
	return receipt, nil
}
