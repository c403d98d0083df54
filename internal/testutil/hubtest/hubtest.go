package hubtest

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"

	"tether/internal/protocol"
	"tether/internal/protocol/frame"
	"tether/internal/testutil/tlstest"
)

// Handler scripts the hub side of one accepted control session. It runs on
// the session goroutine; returning closes the session. Errors are reported
// through the test at cleanup.
type Handler func(s *Session) error

// Server is a scripted in-process hub speaking the real wire contract:
// TLS with client-certificate possession, one greeting per session, framed
// JSON exchange, and stream callback dial-back.
type Server struct {
	ln      net.Listener
	handler Handler

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// Start listens on a loopback port with a throwaway identity and serves
// every inbound control connection with handler.
func Start(t testing.TB, handler Handler) *Server {
	t.Helper()

	certPath, keyPath := tlstest.NewIdentity(t, t.TempDir(), "hub")
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{tlstest.LoadIdentity(t, certPath, keyPath)},
		ClientAuth:   tls.RequireAnyClientCert,
	})
	if err != nil {
		t.Fatalf("hubtest listen: %v", err)
	}

	srv := &Server{ln: ln, handler: handler}
	srv.wg.Add(1)
	go srv.acceptLoop()
	t.Cleanup(func() {
		srv.Close()
		for _, err := range srv.takeErrs() {
			t.Errorf("hubtest session: %v", err)
		}
	})
	return srv
}

func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Close stops accepting and waits for in-flight sessions to finish.
func (s *Server) Close() {
	_ = s.ln.Close()
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			sess := &Session{conn: conn, r: frame.NewReader(conn, frame.DefaultLimits())}
			if err := s.handler(sess); err != nil && !errors.Is(err, net.ErrClosed) {
				s.recordErr(err)
			}
		}()
	}
}

func (s *Server) recordErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *Server) takeErrs() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := s.errs
	s.errs = nil
	return errs
}

// Session is the hub side of one control connection.
type Session struct {
	conn net.Conn
	r    *frame.Reader
}

// Greet sends the OK acknowledgment that makes the session usable.
func (s *Session) Greet(server string) error {
	return s.Reply(protocol.StatusOK, protocol.Greeting{Server: server})
}

// Reply sends one response envelope.
func (s *Session) Reply(status string, content any) error {
	payload, err := json.Marshal(struct {
		Status  string `json:"status"`
		Content any    `json:"content,omitempty"`
	}{Status: status, Content: content})
	if err != nil {
		return err
	}
	return frame.WriteFrame(s.conn, payload)
}

// NextCommand reads one request document and returns its command tag with
// the raw payload for shape-specific decoding.
func (s *Session) NextCommand() (string, json.RawMessage, error) {
	payload, err := s.r.ReadFrame()
	if err != nil {
		return "", nil, err
	}
	var probe struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return "", nil, fmt.Errorf("hubtest: decode request %q: %v", payload, err)
	}
	return probe.Command, json.RawMessage(payload), nil
}

// NextAdvertisement reads the client's stream callback advertisement.
func (s *Session) NextAdvertisement() (protocol.Advertisement, error) {
	payload, err := s.r.ReadFrame()
	if err != nil {
		return protocol.Advertisement{}, err
	}
	var ad protocol.Advertisement
	if err := json.Unmarshal(payload, &ad); err != nil {
		return protocol.Advertisement{}, fmt.Errorf("hubtest: decode advertisement %q: %v", payload, err)
	}
	if ad.Port <= 0 {
		return protocol.Advertisement{}, fmt.Errorf("hubtest: advertisement without port: %q", payload)
	}
	return ad, nil
}

// DialStreams connects the stdout and stderr callbacks to the advertised
// port, in that order. The host comes from the control connection peer.
func (s *Session) DialStreams(port int) (net.Conn, net.Conn, error) {
	host, _, err := net.SplitHostPort(s.conn.RemoteAddr().String())
	if err != nil {
		return nil, nil, err
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	stdout, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	stderr, err := net.Dial("tcp", addr)
	if err != nil {
		_ = stdout.Close()
		return nil, nil, err
	}
	return stdout, stderr, nil
}

// Console wraps the bidirectional stdout callback connection of an
// interactive session on the hub side.
type Console struct {
	Conn net.Conn
	r    *frame.Reader
}

func NewConsole(conn net.Conn) *Console {
	return &Console{Conn: conn, r: frame.NewReader(conn, frame.DefaultLimits())}
}

// Prompt writes a terminator-free chunk requesting operator input.
func (c *Console) Prompt(text string) error {
	_, err := c.Conn.Write([]byte(text))
	return err
}

// ReadInput returns the next framed input line payload. A zero-length
// payload is the operator's end-of-input.
func (c *Console) ReadInput() ([]byte, error) {
	return c.r.ReadFrame()
}
