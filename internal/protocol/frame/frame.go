package frame

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Wire form of one frame: ASCII decimal payload length, one space, payload
// bytes. No trailing terminator. A zero-length payload encodes as "0 ".

const (
	// DefaultChunkSize is the read granularity on the wire.
	DefaultChunkSize = 2048

	// maxLengthDigits bounds the length prefix before the separating space.
	maxLengthDigits = 20
)

var (
	ErrLengthPrefix    = errors.New("frame: malformed length prefix")
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrTruncated       = errors.New("frame: stream ended mid-frame")
)

// Limits constrains frame decode memory use.
type Limits struct {
	ChunkSize       int
	MaxPayloadBytes int
}

func DefaultLimits() Limits {
	return Limits{
		ChunkSize:       DefaultChunkSize,
		MaxPayloadBytes: 8 * 1024 * 1024,
	}
}

func (l Limits) withDefaults() Limits {
	if l.ChunkSize <= 0 {
		l.ChunkSize = DefaultChunkSize
	}
	if l.MaxPayloadBytes <= 0 {
		l.MaxPayloadBytes = DefaultLimits().MaxPayloadBytes
	}
	return l
}

// Encode returns the wire form of one payload.
func Encode(payload []byte) []byte {
	buf := strconv.AppendInt(nil, int64(len(payload)), 10)
	buf = append(buf, ' ')
	return append(buf, payload...)
}

// WriteFrame frames payload and writes it with a single Write call.
func WriteFrame(w io.Writer, payload []byte) error {
	_, err := w.Write(Encode(payload))
	return err
}

// Reader decodes frames from a chunked byte stream. Length digits, the
// separating space, and payload bytes may arrive split across reads at any
// boundary; surplus bytes beyond the current frame are kept for the next one.
type Reader struct {
	src     io.Reader
	limits  Limits
	pending []byte
	scratch []byte
}

func NewReader(src io.Reader, limits Limits) *Reader {
	limits = limits.withDefaults()
	return &Reader{
		src:     src,
		limits:  limits,
		scratch: make([]byte, limits.ChunkSize),
	}
}

// ReadFrame returns the next complete payload. It returns io.EOF only on a
// clean end of stream between frames; an end mid-frame is ErrTruncated.
func (r *Reader) ReadFrame() ([]byte, error) {
	length, err := r.readLength()
	if err != nil {
		return nil, err
	}
	if length > r.limits.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, length)
	}
	for len(r.pending) < length {
		if err := r.fill(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrTruncated
			}
			return nil, err
		}
	}
	payload := make([]byte, length)
	copy(payload, r.pending)
	r.pending = append(r.pending[:0], r.pending[length:]...)
	return payload, nil
}

func (r *Reader) readLength() (int, error) {
	for {
		if i := bytes.IndexByte(r.pending, ' '); i >= 0 {
			length, err := parseLength(r.pending[:i])
			if err != nil {
				return 0, err
			}
			r.pending = append(r.pending[:0], r.pending[i+1:]...)
			return length, nil
		}
		if len(r.pending) > maxLengthDigits {
			return 0, fmt.Errorf("%w: no separator within %d bytes", ErrLengthPrefix, len(r.pending))
		}
		if err := r.fill(); err != nil {
			if errors.Is(err, io.EOF) {
				if len(r.pending) == 0 {
					return 0, io.EOF
				}
				return 0, ErrTruncated
			}
			return 0, err
		}
	}
}

func (r *Reader) fill() error {
	n, err := r.src.Read(r.scratch)
	if n > 0 {
		r.pending = append(r.pending, r.scratch[:n]...)
		return nil
	}
	if err == nil {
		err = io.EOF
	}
	return err
}

func parseLength(digits []byte) (int, error) {
	if len(digits) == 0 {
		return 0, fmt.Errorf("%w: empty length", ErrLengthPrefix)
	}
	var n int
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrLengthPrefix, string(digits))
		}
		n = n*10 + int(c-'0')
		if n > 1<<31 {
			return 0, fmt.Errorf("%w: length prefix %q", ErrPayloadTooLarge, string(digits))
		}
	}
	return n, nil
}
