package relay

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"tether/internal/testutil/testlog"
)

func dialRelay(t *testing.T, r *Relay) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", r.Port()))
	if err != nil {
		t.Fatalf("dial relay: %v", err)
	}
	return conn
}

func TestListenPicksPortInRange(t *testing.T) {
	testlog.Start(t)
	ports := PortRange{Low: 44710, High: 44749}
	r, err := Listen(Config{Ports: ports})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer r.Stop()
	if r.Port() < ports.Low || r.Port() > ports.High {
		t.Fatalf("port %d outside %s", r.Port(), ports)
	}
}

func TestListenReportsExhaustedRange(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	ports := PortRange{Low: port, High: port}
	_, err = Listen(Config{Ports: ports})
	if !errors.Is(err, ErrNoFreePort) {
		t.Fatalf("expected ErrNoFreePort, got %v", err)
	}
	if !strings.Contains(err.Error(), ports.String()) {
		t.Fatalf("error must name the range %s: %v", ports, err)
	}
}

func TestRelayCopiesStreamsToSinks(t *testing.T) {
	testlog.Start(t)
	var stdout, stderr bytes.Buffer
	r, err := Listen(Config{Ports: PortRange{Low: 44750, High: 44789}, Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer r.Stop()

	hubOut := dialRelay(t, r)
	hubErr := dialRelay(t, r)
	if err := r.Accept(); err != nil {
		t.Fatalf("accept: %v", err)
	}
	r.Run()

	if _, err := hubOut.Write([]byte("alpha\nbeta\n")); err != nil {
		t.Fatalf("write stdout stream: %v", err)
	}
	if _, err := hubErr.Write([]byte("warning: beta skipped\n")); err != nil {
		t.Fatalf("write stderr stream: %v", err)
	}
	_ = hubOut.Close()
	_ = hubErr.Close()
	r.Wait()

	if got := stdout.String(); got != "alpha\nbeta\n" {
		t.Fatalf("stdout sink: got %q", got)
	}
	if got := stderr.String(); got != "warning: beta skipped\n" {
		t.Fatalf("stderr sink: got %q", got)
	}
}

// lockedBuffer stands in for a shared terminal both sinks write to.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConcurrentStreamLinesStayWhole(t *testing.T) {
	testlog.Start(t)
	const perStream = 200
	shared := &lockedBuffer{}
	r, err := Listen(Config{Ports: PortRange{Low: 44790, High: 44829}, Stdout: shared, Stderr: shared})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer r.Stop()

	hubOut := dialRelay(t, r)
	hubErr := dialRelay(t, r)
	if err := r.Accept(); err != nil {
		t.Fatalf("accept: %v", err)
	}
	r.Run()

	var writers sync.WaitGroup
	writers.Add(2)
	write := func(conn net.Conn, stream string) {
		defer writers.Done()
		for i := 0; i < perStream; i++ {
			if _, err := fmt.Fprintf(conn, "%s-%04d\n", stream, i); err != nil {
				return
			}
		}
		_ = conn.Close()
	}
	go write(hubOut, "out")
	go write(hubErr, "err")
	writers.Wait()
	r.Wait()

	lines := strings.Split(strings.TrimSuffix(shared.String(), "\n"), "\n")
	if len(lines) != 2*perStream {
		t.Fatalf("line count: got %d want %d", len(lines), 2*perStream)
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "out-") && !strings.HasPrefix(line, "err-") {
			t.Fatalf("interleaved line %q", line)
		}
		if len(line) != len("out-0000") {
			t.Fatalf("split line %q", line)
		}
	}
}

func TestPartialLineFlushedWithTerminator(t *testing.T) {
	testlog.Start(t)
	var stdout, stderr bytes.Buffer
	r, err := Listen(Config{Ports: PortRange{Low: 44830, High: 44869}, Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer r.Stop()

	hubOut := dialRelay(t, r)
	hubErr := dialRelay(t, r)
	if err := r.Accept(); err != nil {
		t.Fatalf("accept: %v", err)
	}
	r.Run()

	if _, err := hubOut.Write([]byte("done: 3 of 7")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = hubOut.Close()
	_ = hubErr.Close()
	r.Wait()

	if got := stdout.String(); got != "done: 3 of 7\n" {
		t.Fatalf("partial line flush: got %q", got)
	}
}

// pipedRelay wires a relay directly to in-memory connections so chunk
// boundaries match writes exactly.
func pipedRelay(cfg Config) (*Relay, net.Conn, net.Conn) {
	r := &Relay{cfg: cfg.withDefaults(), done: make(chan struct{})}
	if r.cfg.Interactive {
		r.prompts = make(chan string, 4)
	}
	hubOut, stdout := net.Pipe()
	hubErr, stderr := net.Pipe()
	r.stdout = stdout
	r.stderr = stderr
	return r, hubOut, hubErr
}

func waitPrompt(t *testing.T, prompts <-chan string) string {
	t.Helper()
	select {
	case prompt, ok := <-prompts:
		if !ok {
			t.Fatalf("prompt queue closed early")
		}
		return prompt
	case <-time.After(2 * time.Second):
		t.Fatalf("no prompt within deadline")
		return ""
	}
}

func TestInteractivePromptDeliveredVerbatim(t *testing.T) {
	testlog.Start(t)
	var stdout, stderr bytes.Buffer
	r, hubOut, hubErr := pipedRelay(Config{ChunkSize: 8, Interactive: true, Stdout: &stdout, Stderr: &stderr})
	r.Run()

	if _, err := hubOut.Write([]byte("ready\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := hubOut.Write([]byte("user? ")); err != nil {
		t.Fatalf("write prompt: %v", err)
	}
	if got := waitPrompt(t, r.Prompts()); got != "user? " {
		t.Fatalf("prompt: got %q", got)
	}

	_ = hubOut.Close()
	_ = hubErr.Close()
	r.Wait()

	if got := stdout.String(); got != "ready\n" {
		t.Fatalf("prompt leaked into buffered output: %q", got)
	}
	if _, ok := <-r.Prompts(); ok {
		t.Fatalf("prompt queue must close at end of stream")
	}
}

func TestFullChunkWithoutTerminatorContinuesLine(t *testing.T) {
	testlog.Start(t)
	var stdout, stderr bytes.Buffer
	r, hubOut, hubErr := pipedRelay(Config{ChunkSize: 8, Interactive: true, Stdout: &stdout, Stderr: &stderr})
	r.Run()

	// Exactly ChunkSize bytes, then the rest of the line.
	if _, err := hubOut.Write([]byte("01234567")); err != nil {
		t.Fatalf("write full chunk: %v", err)
	}
	if _, err := hubOut.Write([]byte("89\n")); err != nil {
		t.Fatalf("write tail: %v", err)
	}
	_ = hubOut.Close()
	_ = hubErr.Close()
	r.Wait()

	if got := stdout.String(); got != "0123456789\n" {
		t.Fatalf("continuation: got %q", got)
	}
	select {
	case prompt, ok := <-r.Prompts():
		if ok {
			t.Fatalf("full chunk misread as prompt %q", prompt)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("prompt queue did not close")
	}
}

func TestStopReturnsWithoutPeerClose(t *testing.T) {
	testlog.Start(t)
	var stdout, stderr bytes.Buffer
	r, err := Listen(Config{Ports: PortRange{Low: 44870, High: 44909}, Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	hubOut := dialRelay(t, r)
	hubErr := dialRelay(t, r)
	if err := r.Accept(); err != nil {
		t.Fatalf("accept: %v", err)
	}
	r.Run()

	finished := make(chan struct{})
	go func() {
		r.Stop()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("stop did not drain readers")
	}
	_ = hubOut.Close()
	_ = hubErr.Close()
}
