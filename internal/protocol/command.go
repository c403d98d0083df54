package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Command tags accepted by the hub.
const (
	CommandPoll     = "poll"
	CommandKill     = "kill"
	CommandAdd      = "add"
	CommandStart    = "start"
	CommandStop     = "stop"
	CommandRemove   = "remove"
	CommandSubmit   = "submit"
	CommandInteract = "interact"
)

// Submit modes.
const (
	ModeSynch  = "synch"
	ModeAsynch = "asynch"
)

// Access levels a submission may request.
const (
	AuthRead  = "read"
	AuthWrite = "write"
)

var ErrInvalidRequest = errors.New("protocol: invalid request")

// Request is one client->hub command document.
type Request interface {
	Validate() error
}

// PollRequest asks for the state of one job.
type PollRequest struct {
	Command string `json:"command"`
	AppID   int    `json:"appid"`
}

func (r PollRequest) Validate() error {
	if r.Command != CommandPoll {
		return fmt.Errorf("%w: command %q", ErrInvalidRequest, r.Command)
	}
	if r.AppID <= 0 {
		return fmt.Errorf("%w: missing appid", ErrInvalidRequest)
	}
	return nil
}

// KillRequest asks the hub to terminate one job.
type KillRequest struct {
	Command string `json:"command"`
	AppID   int    `json:"appid"`
}

func (r KillRequest) Validate() error {
	if r.Command != CommandKill {
		return fmt.Errorf("%w: command %q", ErrInvalidRequest, r.Command)
	}
	if r.AppID <= 0 {
		return fmt.Errorf("%w: missing appid", ErrInvalidRequest)
	}
	return nil
}

// AddRequest registers sequences from one schedule definition source.
type AddRequest struct {
	Command  string `json:"command"`
	Schedule string `json:"schedule"`
}

func (r AddRequest) Validate() error {
	if r.Command != CommandAdd {
		return fmt.Errorf("%w: command %q", ErrInvalidRequest, r.Command)
	}
	if strings.TrimSpace(r.Schedule) == "" {
		return fmt.Errorf("%w: missing schedule", ErrInvalidRequest)
	}
	return nil
}

// StartRequest starts one named sequence, or all when Sequence is empty.
type StartRequest struct {
	Command  string `json:"command"`
	Sequence string `json:"sequence,omitempty"`
}

func (r StartRequest) Validate() error {
	if r.Command != CommandStart {
		return fmt.Errorf("%w: command %q", ErrInvalidRequest, r.Command)
	}
	return nil
}

// StopRequest stops one named sequence, or all when Sequence is empty.
type StopRequest struct {
	Command  string `json:"command"`
	Sequence string `json:"sequence,omitempty"`
}

func (r StopRequest) Validate() error {
	if r.Command != CommandStop {
		return fmt.Errorf("%w: command %q", ErrInvalidRequest, r.Command)
	}
	return nil
}

// RemoveRequest deletes one named sequence.
type RemoveRequest struct {
	Command  string `json:"command"`
	Sequence string `json:"sequence"`
}

func (r RemoveRequest) Validate() error {
	if r.Command != CommandRemove {
		return fmt.Errorf("%w: command %q", ErrInvalidRequest, r.Command)
	}
	if strings.TrimSpace(r.Sequence) == "" {
		return fmt.Errorf("%w: missing sequence", ErrInvalidRequest)
	}
	return nil
}

// SubmitRequest schedules one job. Exactly one of Exec (inline payload text)
// and ExecPath (path the hub resolves) carries the execution payload.
type SubmitRequest struct {
	Command   string `json:"command"`
	Title     string `json:"title"`
	Args      string `json:"args"`
	AuthLevel string `json:"auth_level"`
	Timeout   int    `json:"timeout"`
	Mode      string `json:"mode"`
	Exec      string `json:"exec,omitempty"`
	ExecPath  string `json:"exec_path,omitempty"`
	Path      string `json:"path,omitempty"`
}

func (r SubmitRequest) Validate() error {
	if r.Command != CommandSubmit {
		return fmt.Errorf("%w: command %q", ErrInvalidRequest, r.Command)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidRequest)
	}
	if r.Mode != ModeSynch && r.Mode != ModeAsynch {
		return fmt.Errorf("%w: mode %q", ErrInvalidRequest, r.Mode)
	}
	if r.AuthLevel != AuthRead && r.AuthLevel != AuthWrite {
		return fmt.Errorf("%w: auth_level %q", ErrInvalidRequest, r.AuthLevel)
	}
	if r.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidRequest)
	}
	hasExec := strings.TrimSpace(r.Exec) != ""
	hasExecPath := strings.TrimSpace(r.ExecPath) != ""
	if hasExec == hasExecPath {
		return fmt.Errorf("%w: exactly one of exec and exec_path required", ErrInvalidRequest)
	}
	return nil
}

// InteractRequest opens a remote console session.
type InteractRequest struct {
	Command   string `json:"command"`
	AuthLevel string `json:"auth_level"`
	Path      string `json:"path,omitempty"`
}

func (r InteractRequest) Validate() error {
	if r.Command != CommandInteract {
		return fmt.Errorf("%w: command %q", ErrInvalidRequest, r.Command)
	}
	if r.AuthLevel != AuthRead && r.AuthLevel != AuthWrite {
		return fmt.Errorf("%w: auth_level %q", ErrInvalidRequest, r.AuthLevel)
	}
	return nil
}

// Advertisement tells the hub which local port accepts its stream callback
// connections. The hub derives the host from the control connection peer.
type Advertisement struct {
	Port int `json:"port"`
}
