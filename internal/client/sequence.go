package client

import (
	"context"

	"github.com/rs/zerolog/log"
	"tether/internal/protocol"
)

// AddSequences registers the schedule text with the hub and reports the
// sequence names it defined.
func (c *Client) AddSequences(ctx context.Context, schedule string) ([]string, error) {
	s, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var receipt protocol.SequenceReceipt
	if err := s.Communicate(protocol.AddRequest{Command: protocol.CommandAdd, Schedule: schedule}, &receipt); err != nil {
		return nil, err
	}
	log.Debug().Strs("sequences", receipt.Sequence).Msg("schedule registered")
	return receipt.Sequence, nil
}

// StartSequences launches the named sequence, or every registered one
// when name is empty.
func (c *Client) StartSequences(ctx context.Context, name string) ([]string, error) {
	return c.toggleSequences(ctx, protocol.CommandStart, name)
}

// StopSequences halts the named sequence, or every registered one when
// name is empty.
func (c *Client) StopSequences(ctx context.Context, name string) ([]string, error) {
	return c.toggleSequences(ctx, protocol.CommandStop, name)
}

func (c *Client) toggleSequences(ctx context.Context, command, name string) ([]string, error) {
	var req protocol.Request
	switch command {
	case protocol.CommandStart:
		req = protocol.StartRequest{Command: command, Sequence: name}
	default:
		req = protocol.StopRequest{Command: command, Sequence: name}
	}

	s, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var receipt protocol.SequenceReceipt
	if err := s.Communicate(req, &receipt); err != nil {
		return nil, err
	}
	return receipt.Sequence, nil
}

// RemoveSequence discards one stopped sequence.
func (c *Client) RemoveSequence(ctx context.Context, name string) error {
	s, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Communicate(protocol.RemoveRequest{Command: protocol.CommandRemove, Sequence: name}, nil); err != nil {
		return err
	}
	log.Debug().Str("sequence", name).Msg("sequence removed")
	return nil
}
