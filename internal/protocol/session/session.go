package session

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"tether/internal/protocol"
	"tether/internal/protocol/frame"
)

// Transport error kinds. Callers discriminate with errors.Is; none of these
// is retried.
var (
	ErrConnect = errors.New("session: connect failed")
	ErrTLS     = errors.New("session: tls handshake failed")
	ErrSend    = errors.New("session: send failed")
	ErrReceive = errors.New("session: receive failed")
)

// Session is one established control connection to the hub.
type Session struct {
	conn     net.Conn
	reader   *frame.Reader
	greeting protocol.Greeting

	// mu serializes Communicate: the wire carries one request at a time.
	mu sync.Mutex
}

// Connect dials addr, completes the TLS handshake presenting the configured
// client identity, and consumes the hub greeting. The session is usable
// only once the greeting arrives with status OK.
func Connect(ctx context.Context, addr string, cfg Config) (*Session, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		_ = rawConn.Close()
		return nil, fmt.Errorf("%w: load client identity: %v", ErrTLS, err)
	}
	conn := tls.Client(rawConn, &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
		// The hub presents no verifiable chain; trust is by possession.
		InsecureSkipVerify: true,
	})
	handshakeCtx, cancel := context.WithTimeout(ctx, cfg.HandshakeTimeout)
	defer cancel()
	if err := conn.HandshakeContext(handshakeCtx); err != nil {
		_ = rawConn.Close()
		return nil, fmt.Errorf("%w: %v", ErrTLS, err)
	}

	s := &Session{
		conn:   conn,
		reader: frame.NewReader(conn, cfg.Limits),
	}
	if err := s.greet(cfg.HandshakeTimeout); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Debug().Str("addr", addr).Str("server", s.greeting.Server).Msg("hub session established")
	return s, nil
}

func (s *Session) greet(timeout time.Duration) error {
	_ = s.conn.SetReadDeadline(time.Now().Add(timeout))
	defer func() { _ = s.conn.SetReadDeadline(time.Time{}) }()
	env, err := s.receive()
	if err != nil {
		return err
	}
	if !env.OK() {
		return &protocol.StatusError{Status: env.Status, Content: env.Content}
	}
	// Greeting content is advisory; a hub that sends none still greets.
	_ = env.DecodeContent(&s.greeting)
	return nil
}

// Server returns the hub identity from the greeting, when one was sent.
func (s *Session) Server() string {
	return s.greeting.Server
}

func (s *Session) Close() error {
	return s.conn.Close()
}

// Send frames one document and writes it in a single call.
func (s *Session) Send(doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	if err := frame.WriteFrame(s.conn, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}

// Receive blocks for the next response envelope. No deadline applies:
// synchronous jobs run arbitrarily long.
func (s *Session) Receive() (protocol.Envelope, error) {
	return s.receive()
}

func (s *Session) receive() (protocol.Envelope, error) {
	payload, err := s.reader.ReadFrame()
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("%w: %v", ErrReceive, err)
	}
	env, err := protocol.DecodeEnvelope(payload)
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("%w: %v", ErrReceive, err)
	}
	return env, nil
}

// Communicate validates and sends req, then decodes the response content
// into content when content is non-nil. A non-OK status comes back as a
// *protocol.StatusError.
func (s *Session) Communicate(req protocol.Request, content any) error {
	if err := req.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Send(req); err != nil {
		return err
	}
	env, err := s.receive()
	if err != nil {
		return err
	}
	if !env.OK() {
		return &protocol.StatusError{Status: env.Status, Content: env.Content}
	}
	if content == nil {
		return nil
	}
	if err := env.DecodeContent(content); err != nil {
		return fmt.Errorf("%w: %v", ErrReceive, err)
	}
	return nil
}

// PeerIsLocal reports whether the hub endpoint is an address owned by this
// host. Submit receipts carry a pid only in that case.
func (s *Session) PeerIsLocal() bool {
	addr, ok := s.conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return false
	}
	return ipIsLocal(addr.IP)
}

func ipIsLocal(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}
	ifaceAddrs, err := net.InterfaceAddrs()
	if err != nil {
		return false
	}
	for _, ifaceAddr := range ifaceAddrs {
		ipNet, ok := ifaceAddr.(*net.IPNet)
		if ok && ipNet.IP.Equal(ip) {
			return true
		}
	}
	return false
}
