package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"tether/internal/protocol"
	"tether/internal/relay"
	"tether/internal/testutil/hubtest"
	"tether/internal/testutil/testlog"
)

func TestInteractAnswersPromptsAndRelaysOutput(t *testing.T) {
	testlog.Start(t)

	srv := hubtest.Start(t, func(s *hubtest.Session) error {
		if err := s.Greet("hub-1"); err != nil {
			return err
		}
		cmd, raw, err := s.NextCommand()
		if err != nil {
			return err
		}
		if cmd != protocol.CommandInteract {
			return fmt.Errorf("command %q, want interact", cmd)
		}
		var req protocol.InteractRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return err
		}
		if req.AuthLevel != protocol.AuthWrite {
			return fmt.Errorf("auth_level %q, want write", req.AuthLevel)
		}
		if err := s.Reply(protocol.StatusOK, nil); err != nil {
			return err
		}
		ad, err := s.NextAdvertisement()
		if err != nil {
			return err
		}
		stdout, stderr, err := s.DialStreams(ad.Port)
		if err != nil {
			return err
		}
		console := hubtest.NewConsole(stdout)
		if err := console.Prompt("name? "); err != nil {
			return err
		}
		line, err := console.ReadInput()
		if err != nil {
			return err
		}
		if string(line) != "mers\n" {
			return fmt.Errorf("input %q, want mers terminated", line)
		}
		if _, err := stdout.Write([]byte("hello mers\n")); err != nil {
			return err
		}
		_ = stdout.Close()
		_ = stderr.Close()
		return nil
	})

	var outBuf, errBuf syncBuffer
	c := testClient(t, srv.Addr(), relay.PortRange{Low: 45130, High: 45169})

	done := make(chan error, 1)
	go func() {
		done <- c.Interact(context.Background(), InteractOptions{
			AuthLevel: protocol.AuthWrite,
			Input:     strings.NewReader("mers\n"),
			Stdout:    &outBuf,
			Stderr:    &errBuf,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("interact: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("interact session did not finish")
	}

	// The prompt is displayed before the answer goes out; the echo lands
	// after the hub has read the answer.
	if got := outBuf.String(); got != "name? hello mers\n" {
		t.Fatalf("unexpected console transcript %q", got)
	}
	if got := errBuf.String(); got != "" {
		t.Fatalf("unexpected stderr %q", got)
	}
}

func TestInteractEndsOnLocalEOF(t *testing.T) {
	testlog.Start(t)

	srv := hubtest.Start(t, func(s *hubtest.Session) error {
		if err := s.Greet("hub-1"); err != nil {
			return err
		}
		if _, _, err := s.NextCommand(); err != nil {
			return err
		}
		if err := s.Reply(protocol.StatusOK, nil); err != nil {
			return err
		}
		ad, err := s.NextAdvertisement()
		if err != nil {
			return err
		}
		stdout, stderr, err := s.DialStreams(ad.Port)
		if err != nil {
			return err
		}
		console := hubtest.NewConsole(stdout)
		if err := console.Prompt("more? "); err != nil {
			return err
		}
		line, err := console.ReadInput()
		if err != nil {
			return err
		}
		if len(line) != 0 {
			return fmt.Errorf("expected end-of-input frame, got %q", line)
		}
		if _, err := stdout.Write([]byte("bye\n")); err != nil {
			return err
		}
		_ = stdout.Close()
		_ = stderr.Close()
		return nil
	})

	var outBuf, errBuf syncBuffer
	c := testClient(t, srv.Addr(), relay.PortRange{Low: 45170, High: 45209})

	done := make(chan error, 1)
	go func() {
		done <- c.Interact(context.Background(), InteractOptions{
			Input:  strings.NewReader(""),
			Stdout: &outBuf,
			Stderr: &errBuf,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("interact: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("interact session did not finish")
	}
	if got := outBuf.String(); got != "more? bye\n" {
		t.Fatalf("unexpected console transcript %q", got)
	}
}
