package relay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"tether/internal/protocol/frame"
)

var ErrNoFreePort = errors.New("relay: no free callback port")

// Config defines one relay run. Zero sinks default to the process streams.
type Config struct {
	Ports       PortRange
	ChunkSize   int
	Interactive bool
	Stdout      io.Writer
	Stderr      io.Writer
}

func (c Config) withDefaults() Config {
	if c.Ports == (PortRange{}) {
		c.Ports = DefaultPortRange()
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = frame.DefaultChunkSize
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	return c
}

// Relay accepts the hub's two stream callback connections and copies them
// to the local sinks line by line.
type Relay struct {
	cfg  Config
	ln   net.Listener
	port int

	stdout net.Conn
	stderr net.Conn

	// flushMu keeps lines from the two streams whole on shared terminals.
	flushMu sync.Mutex
	wg      sync.WaitGroup
	prompts chan string
	done    chan struct{}
	stop    sync.Once
}

// Listen binds the first free port in cfg.Ports.
func Listen(cfg Config) (*Relay, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Ports.Validate(); err != nil {
		return nil, err
	}
	for port := cfg.Ports.Low; port <= cfg.Ports.High; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		r := &Relay{
			cfg:  cfg,
			ln:   ln,
			port: port,
			done: make(chan struct{}),
		}
		if cfg.Interactive {
			r.prompts = make(chan string, 4)
		}
		log.Debug().Int("port", port).Bool("interactive", cfg.Interactive).Msg("relay listening")
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoFreePort, cfg.Ports)
}

// Port returns the bound callback port, advertised to the hub.
func (r *Relay) Port() int {
	return r.port
}

// Accept waits for both callback connections. The hub dials stdout first,
// then stderr; nothing on the wire tags the connections.
func (r *Relay) Accept() error {
	stdout, err := r.ln.Accept()
	if err != nil {
		return fmt.Errorf("relay: accept stdout stream: %w", err)
	}
	stderr, err := r.ln.Accept()
	if err != nil {
		_ = stdout.Close()
		return fmt.Errorf("relay: accept stderr stream: %w", err)
	}
	r.stdout = stdout
	r.stderr = stderr
	return nil
}

// Console returns the stdout connection, which doubles as the input channel
// during interactive sessions.
func (r *Relay) Console() net.Conn {
	return r.stdout
}

// Prompts returns the prompt queue. The channel closes once both streams
// have ended; it is nil for non-interactive relays.
func (r *Relay) Prompts() <-chan string {
	return r.prompts
}

// Run starts one reader per stream. Prompt detection applies to the stdout
// stream only.
func (r *Relay) Run() {
	r.wg.Add(2)
	go r.readStream(r.stdout, r.cfg.Stdout, r.cfg.Interactive)
	go r.readStream(r.stderr, r.cfg.Stderr, false)
	if r.prompts != nil {
		go func() {
			r.wg.Wait()
			close(r.prompts)
		}()
	}
}

// Wait blocks until both streams reach end of stream and their buffers are
// flushed.
func (r *Relay) Wait() {
	r.wg.Wait()
}

// Stop shuts down both connections and the listener, then waits for the
// readers to drain.
func (r *Relay) Stop() {
	r.stop.Do(func() { close(r.done) })
	if r.stdout != nil {
		_ = r.stdout.Close()
	}
	if r.stderr != nil {
		_ = r.stderr.Close()
	}
	if r.ln != nil {
		_ = r.ln.Close()
	}
	r.wg.Wait()
}

// readStream copies one callback connection to sink. Chunks are appended to
// a pending buffer and flushed at line-terminator boundaries. A chunk with
// no terminator that exactly fills the read buffer continues a long line.
// In interactive mode any other terminator-free chunk is a prompt and goes
// to the queue verbatim, never into pending.
func (r *Relay) readStream(conn net.Conn, sink io.Writer, interactive bool) {
	defer r.wg.Done()
	buf := make([]byte, r.cfg.ChunkSize)
	var pending []byte
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if i := bytes.LastIndexByte(chunk, '\n'); i >= 0 {
				pending = append(pending, chunk[:i+1]...)
				r.flush(sink, pending)
				pending = append(pending[:0], chunk[i+1:]...)
			} else if n == len(buf) {
				pending = append(pending, chunk...)
			} else if interactive {
				if !r.sendPrompt(string(chunk)) {
					break
				}
			} else {
				pending = append(pending, chunk...)
			}
		}
		if err != nil {
			break
		}
	}
	if len(pending) > 0 {
		pending = append(pending, '\n')
		r.flush(sink, pending)
	}
}

func (r *Relay) sendPrompt(prompt string) bool {
	select {
	case r.prompts <- prompt:
		return true
	case <-r.done:
		return false
	}
}

func (r *Relay) flush(sink io.Writer, lines []byte) {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()
	_, _ = sink.Write(lines)
}
