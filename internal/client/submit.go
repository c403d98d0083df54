package client

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"tether/internal/protocol"
	"tether/internal/protocol/session"
	"tether/internal/relay"
)

// Submission describes one job hand-off. Exactly one of Exec and ExecPath
// carries the payload; Workdir is resolved hub-side.
type Submission struct {
	Title     string
	Args      string
	AuthLevel string
	Timeout   time.Duration
	Exec      string
	ExecPath  string
	Workdir   string
}

func (s Submission) request(mode string) protocol.SubmitRequest {
	level := s.AuthLevel
	if level == "" {
		level = protocol.AuthRead
	}
	return protocol.SubmitRequest{
		Command:   protocol.CommandSubmit,
		Title:     s.Title,
		Args:      s.Args,
		AuthLevel: level,
		Timeout:   int(s.Timeout / time.Second),
		Mode:      mode,
		Exec:      s.Exec,
		ExecPath:  s.ExecPath,
		Path:      s.Workdir,
	}
}

// ConfirmFunc decides whether an interrupt during a synchronous wait
// becomes a kill request for the watched job.
type ConfirmFunc func(appID int) bool

// WatchOptions shape the synchronous wait around a submission.
type WatchOptions struct {
	Stdout     io.Writer
	Stderr     io.Writer
	Interrupts <-chan os.Signal
	Confirm    ConfirmFunc
}

// WatchResult pairs the acceptance receipt with the terminal report that
// closed the wait.
type WatchResult struct {
	Receipt  protocol.SubmitReceipt
	Terminal protocol.TerminalReport
}

// Submit hands the job off in asynchronous mode and returns once the hub
// accepts it. The job keeps running hub-side; its id is in the receipt.
func (c *Client) Submit(ctx context.Context, job Submission) (protocol.SubmitReceipt, error) {
	s, err := c.connect(ctx)
	if err != nil {
		return protocol.SubmitReceipt{}, err
	}
	defer s.Close()

	var receipt protocol.SubmitReceipt
	if err := s.Communicate(job.request(protocol.ModeAsynch), &receipt); err != nil {
		return protocol.SubmitReceipt{}, err
	}
	if !s.PeerIsLocal() {
		// A pid is only meaningful when hub and client share a host.
		receipt.PID = 0
	}
	log.Debug().Int("appid", receipt.AppID).Str("title", job.Title).Msg("submission accepted")
	return receipt, nil
}

// SubmitAndWatch hands the job off in synchronous mode, relays its output
// streams until it finishes, and returns the terminal report. Interrupts
// are offered to Confirm; an accepted one turns into a kill request on a
// session of its own, and the wait still ends only on the terminal report.
func (c *Client) SubmitAndWatch(ctx context.Context, job Submission, opts WatchOptions) (WatchResult, error) {
	s, err := c.connect(ctx)
	if err != nil {
		return WatchResult{}, err
	}
	defer s.Close()

	var receipt protocol.SubmitReceipt
	if err := s.Communicate(job.request(protocol.ModeSynch), &receipt); err != nil {
		return WatchResult{}, err
	}
	if !s.PeerIsLocal() {
		receipt.PID = 0
	}
	result := WatchResult{Receipt: receipt}

	r, err := relay.Listen(relay.Config{
		Ports:  c.cfg.Ports,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
	if err != nil {
		return result, err
	}
	defer r.Stop()

	if err := s.Send(protocol.Advertisement{Port: r.Port()}); err != nil {
		return result, err
	}
	if err := r.Accept(); err != nil {
		return result, err
	}
	r.Run()

	terminal, err := c.waitTerminal(ctx, s, receipt.AppID, opts)
	if err != nil {
		return result, err
	}
	// Drain the stream relay before tearing it down so buffered output
	// that raced the terminal report still reaches the sinks.
	r.Wait()
	result.Terminal = terminal
	return result, nil
}

func (c *Client) waitTerminal(ctx context.Context, s *session.Session, appID int, opts WatchOptions) (protocol.TerminalReport, error) {
	type received struct {
		env protocol.Envelope
		err error
	}
	frames := make(chan received, 1)
	go func() {
		env, err := s.Receive()
		frames <- received{env: env, err: err}
	}()

	finished := false
	for {
		select {
		case in := <-frames:
			if in.err != nil {
				return protocol.TerminalReport{}, in.err
			}
			if !in.env.OK() {
				return protocol.TerminalReport{}, &protocol.StatusError{Status: in.env.Status, Content: in.env.Content}
			}
			var terminal protocol.TerminalReport
			if err := in.env.DecodeContent(&terminal); err != nil {
				return protocol.TerminalReport{}, err
			}
			return terminal, nil
		case <-opts.Interrupts:
			if finished || opts.Confirm == nil || !opts.Confirm(appID) {
				continue
			}
			receipt, err := c.Kill(ctx, appID)
			if err != nil {
				log.Warn().Int("appid", appID).Err(err).Msg("kill request failed")
				continue
			}
			if receipt.Result == protocol.KillNoAction {
				// The job beat the kill to the finish line; its terminal
				// report is already on the way.
				log.Info().Int("appid", appID).Str("detail", receipt.Detail).Msg("job already finished")
				finished = true
			}
		}
	}
}
