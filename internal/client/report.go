package client

import (
	"fmt"
	"io"

	"tether/internal/protocol"
)

// WritePollReport prints one labeled field per line, in the fixed order
// operators read them in.
func WritePollReport(w io.Writer, report protocol.PollReport) error {
	_, err := fmt.Fprintf(w,
		"appid: %d\nwrite_request: %t\nuser: %s\ntitle: %s\npath: %s\nargs: %s\nstatus: %s\nexit_code: %d\nserver: %s\n",
		report.AppID,
		report.WriteRequest,
		report.UserName,
		report.Title,
		report.Path,
		report.Args,
		report.Status,
		report.ExitCode,
		report.Server,
	)
	return err
}

// WriteSubmitReceipt prints the acceptance receipt. The pid line only
// appears when the hub runs on this host.
func WriteSubmitReceipt(w io.Writer, receipt protocol.SubmitReceipt) error {
	if _, err := fmt.Fprintf(w, "appid: %d\npath: %s\n", receipt.AppID, receipt.Path); err != nil {
		return err
	}
	if receipt.PID != 0 {
		if _, err := fmt.Fprintf(w, "pid: %d\n", receipt.PID); err != nil {
			return err
		}
	}
	return nil
}
