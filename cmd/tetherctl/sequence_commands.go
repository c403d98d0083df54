package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newSequenceCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Manage scheduled job sequences on the hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newSequenceAddCommand(ctx))
	cmd.AddCommand(newSequenceStartCommand(ctx))
	cmd.AddCommand(newSequenceStopCommand(ctx))
	cmd.AddCommand(newSequenceRemoveCommand(ctx))
	return cmd
}

func newSequenceAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <schedule-file>",
		Short: "Register sequences from a schedule definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := readSchedule(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			c, err := ctx.newClient(cmd)
			if err != nil {
				return err
			}
			names, err := c.AddSequences(cmd.Context(), schedule)
			if err != nil {
				return err
			}
			writeSequenceList(cmd.OutOrStdout(), "registered", names)
			return nil
		},
	}
}

func newSequenceStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start [name]",
		Short: "Start one sequence, or all without a name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.newClient(cmd)
			if err != nil {
				return err
			}
			names, err := c.StartSequences(cmd.Context(), optionalName(args))
			if err != nil {
				return err
			}
			writeSequenceList(cmd.OutOrStdout(), "started", names)
			return nil
		},
	}
}

func newSequenceStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop [name]",
		Short: "Stop one sequence, or all without a name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.newClient(cmd)
			if err != nil {
				return err
			}
			names, err := c.StopSequences(cmd.Context(), optionalName(args))
			if err != nil {
				return err
			}
			writeSequenceList(cmd.OutOrStdout(), "stopped", names)
			return nil
		},
	}
}

func newSequenceRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Discard one stopped sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.newClient(cmd)
			if err != nil {
				return err
			}
			if err := c.RemoveSequence(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

// readSchedule loads the definition text; "-" means standard input.
func readSchedule(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(body), nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func optionalName(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSpace(args[0])
}

func writeSequenceList(w io.Writer, verb string, names []string) {
	if len(names) == 0 {
		fmt.Fprintf(w, "%s none\n", verb)
		return
	}
	fmt.Fprintf(w, "%s %s\n", verb, strings.Join(names, ", "))
}
