package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StatusOK marks a successful hub response; any other status tag is a
// hub-reported failure elaborated by the envelope content.
const StatusOK = "OK"

var ErrInvalidEnvelope = errors.New("protocol: invalid response envelope")

// Envelope is one hub->client response document.
type Envelope struct {
	Status  string          `json:"status"`
	Content json.RawMessage `json:"content"`
}

func (e Envelope) OK() bool {
	return e.Status == StatusOK
}

// DecodeContent unmarshals the envelope content into v. Absent content is
// left as the zero value.
func (e Envelope) DecodeContent(v any) error {
	if len(e.Content) == 0 || string(e.Content) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Content, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	return nil
}

// DecodeEnvelope parses one response payload.
func DecodeEnvelope(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if env.Status == "" {
		return Envelope{}, fmt.Errorf("%w: missing status", ErrInvalidEnvelope)
	}
	return env, nil
}

// StatusError is a hub response whose status tag is not OK. The tag and
// content are preserved verbatim for the caller.
type StatusError struct {
	Status  string
	Content json.RawMessage
}

func (e *StatusError) Error() string {
	detail := contentText(e.Content)
	if detail == "" {
		return fmt.Sprintf("hub status %s", e.Status)
	}
	return fmt.Sprintf("hub status %s: %s", e.Status, detail)
}

// contentText renders envelope content for error messages: JSON strings are
// unquoted, anything else stays raw JSON.
func contentText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
