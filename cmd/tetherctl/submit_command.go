package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tether/internal/client"
	"tether/internal/protocol"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		title   string
		jobArgs string
		write   bool
		timeout time.Duration
		hubPath string
		workdir string
		detach  bool
	)

	cmd := &cobra.Command{
		Use:   "submit [script]",
		Short: "Hand a job to the hub and watch it run",
		Long: "Submit a job for execution on the hub. The script argument names a " +
			"local file whose contents are shipped with the request; --hub-path " +
			"names an executable the hub resolves itself. Without --detach the " +
			"command relays the job's output until it finishes.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job := client.Submission{
				Title:   title,
				Args:    jobArgs,
				Timeout: timeout,
				Workdir: workdir,
			}
			if write {
				job.AuthLevel = protocol.AuthWrite
			}
			switch {
			case len(args) == 1 && hubPath != "":
				return fmt.Errorf("pass a local script or --hub-path, not both")
			case len(args) == 1:
				payload, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				job.Exec = string(payload)
			case hubPath != "":
				job.ExecPath = hubPath
			default:
				return fmt.Errorf("a local script or --hub-path is required")
			}

			c, err := ctx.newClient(cmd)
			if err != nil {
				return err
			}

			if detach {
				receipt, err := c.Submit(cmd.Context(), job)
				if err != nil {
					return err
				}
				return client.WriteSubmitReceipt(cmd.OutOrStdout(), receipt)
			}

			interrupts := make(chan os.Signal, 1)
			signal.Notify(interrupts, os.Interrupt)
			defer signal.Stop(interrupts)

			confirm := client.ConfirmFunc(func(int) bool { return true })
			if isatty.IsTerminal(os.Stdin.Fd()) {
				confirm = killConfirmer(os.Stdin, cmd.ErrOrStderr())
			}

			result, err := c.SubmitAndWatch(cmd.Context(), job, client.WatchOptions{
				Stdout:     cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
				Interrupts: interrupts,
				Confirm:    confirm,
			})
			if err != nil {
				return err
			}

			// Receipt and terminal lines go to stderr so stdout stays pure
			// job output.
			errOut := cmd.ErrOrStderr()
			if result.Receipt.PID != 0 {
				fmt.Fprintf(errOut, "job %d finished: %s (exit %d, local pid %d)\n",
					result.Receipt.AppID, result.Terminal.Status, result.Terminal.ExitCode, result.Receipt.PID)
			} else {
				fmt.Fprintf(errOut, "job %d finished: %s (exit %d)\n",
					result.Receipt.AppID, result.Terminal.Status, result.Terminal.ExitCode)
			}
			if result.Terminal.Status != protocol.StatusDone {
				return &exitStatus{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Job title (required)")
	cmd.Flags().StringVar(&jobArgs, "args", "", "Argument string passed to the job")
	cmd.Flags().BoolVar(&write, "write", false, "Request write-level execution")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Hub-side run time limit")
	cmd.Flags().StringVar(&hubPath, "hub-path", "", "Executable path resolved on the hub")
	cmd.Flags().StringVar(&workdir, "workdir", "", "Working directory for the job")
	cmd.Flags().BoolVar(&detach, "detach", false, "Return after acceptance instead of watching")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}
