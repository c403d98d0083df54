package main

import (
	"errors"
	"fmt"
	"os"
)

// exitStatus carries a specific process exit code through cobra. Exit 1
// means the submitted job itself failed; exit 2 means the operation did.
type exitStatus struct {
	code int
}

func (e *exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var status *exitStatus
		if errors.As(err, &status) {
			os.Exit(status.code)
		}
		fmt.Fprintln(os.Stderr, "tetherctl:", err)
		os.Exit(2)
	}
}
