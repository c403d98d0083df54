package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"tether/internal/client"
	"tether/internal/protocol"
)

func newInteractCommand(ctx *commandContext) *cobra.Command {
	var (
		write   bool
		workdir string
	)

	cmd := &cobra.Command{
		Use:   "interact",
		Short: "Open an interactive console on the hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.newClient(cmd)
			if err != nil {
				return err
			}

			// An interrupt answers the current prompt with a bare
			// terminator; end the session with end-of-input instead.
			interrupts := make(chan os.Signal, 1)
			signal.Notify(interrupts, os.Interrupt)
			defer signal.Stop(interrupts)

			opts := client.InteractOptions{
				Workdir:    workdir,
				Input:      cmd.InOrStdin(),
				Stdout:     cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
				Interrupts: interrupts,
			}
			if write {
				opts.AuthLevel = protocol.AuthWrite
			}
			return c.Interact(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Request write-level console access")
	cmd.Flags().StringVar(&workdir, "workdir", "", "Working directory for the console")

	return cmd
}
