package protocol

// Job status names reported by the hub. Done is the only success terminal.
const (
	StatusNew      = "new"
	StatusAssigned = "assigned"
	StatusRun      = "run"
	StatusDone     = "done"
	StatusFailed   = "failed"
	StatusKilled   = "killed"
)

// Kill results.
const (
	KillOK       = "ok"
	KillNoAction = "noaction"
)

// Greeting is the initial acknowledgment content sent once per session
// before any request is accepted.
type Greeting struct {
	Server string `json:"server"`
}

// PollReport is the poll response content.
type PollReport struct {
	AppID        int    `json:"appid"`
	WriteRequest bool   `json:"write_request"`
	UserName     string `json:"user_name"`
	Title        string `json:"title"`
	Path         string `json:"path"`
	Args         string `json:"args"`
	Status       string `json:"status"`
	ExitCode     int    `json:"exit_code"`
	Server       string `json:"server"`
}

// KillReceipt is the kill response content. Result noaction means the job
// had already finished when the kill arrived.
type KillReceipt struct {
	Detail string `json:"detail"`
	Result string `json:"result"`
}

// SequenceReceipt is the add/start/stop response content.
type SequenceReceipt struct {
	Sequence []string `json:"sequence"`
}

// SubmitReceipt is the submit accept content. PID is populated only when
// the hub runs on the local host.
type SubmitReceipt struct {
	AppID int    `json:"appid"`
	Path  string `json:"path"`
	PID   int    `json:"pid,omitempty"`
}

// TerminalReport is the final frame of a synchronous submission.
type TerminalReport struct {
	Status   string `json:"status"`
	ExitCode int    `json:"exit_code"`
}

// Finished reports whether status names a terminal job state.
func Finished(status string) bool {
	switch status {
	case StatusDone, StatusFailed, StatusKilled:
		return true
	}
	return false
}
