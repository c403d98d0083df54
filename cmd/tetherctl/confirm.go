package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"tether/internal/client"
)

// killConfirmer asks the operator before an interrupt becomes a kill.
// Anything but an explicit yes keeps the job running and the wait going.
func killConfirmer(in io.Reader, out io.Writer) client.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(appID int) bool {
		fmt.Fprintf(out, "kill job %d? [y/N] ", appID)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
