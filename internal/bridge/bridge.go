// Package bridge forwards local input lines to the remote console.
package bridge

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"tether/internal/protocol/frame"
)

// Config wires one bridge run. Prompts comes from the relay and its close
// ends the run; Console is the write side of the stdout callback
// connection, which is bidirectional during interactive sessions.
type Config struct {
	Prompts    <-chan string
	Console    io.Writer
	Input      io.Reader
	Output     io.Writer
	Interrupts <-chan os.Signal
}

// Run answers console prompts with local input lines until the prompt
// channel closes. Each line is framed with its terminator counted; local
// end of input answers with a zero-length frame, a local interrupt with a
// frame holding just a terminator.
func Run(cfg Config) error {
	lines := startLineReader(cfg.Input)
	for {
		var prompt string
		var open bool
		select {
		case prompt, open = <-cfg.Prompts:
			if !open {
				return nil
			}
		case <-cfg.Interrupts:
			if err := sendInterrupt(cfg.Console); err != nil {
				return err
			}
			continue
		}

		// Prompts carry no terminator; show them exactly as sent.
		if _, err := io.WriteString(cfg.Output, prompt); err != nil {
			return fmt.Errorf("bridge: display prompt: %w", err)
		}

		select {
		case line, ok := <-lines:
			if !ok {
				if err := frame.WriteFrame(cfg.Console, nil); err != nil {
					return fmt.Errorf("bridge: send end of input: %w", err)
				}
				continue
			}
			payload := append([]byte(line), '\n')
			if err := frame.WriteFrame(cfg.Console, payload); err != nil {
				return fmt.Errorf("bridge: send input: %w", err)
			}
		case <-cfg.Interrupts:
			if err := sendInterrupt(cfg.Console); err != nil {
				return err
			}
		}
	}
}

func sendInterrupt(console io.Writer) error {
	if err := frame.WriteFrame(console, []byte{'\n'}); err != nil {
		return fmt.Errorf("bridge: send interrupt: %w", err)
	}
	return nil
}

func startLineReader(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
