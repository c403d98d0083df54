package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tether/internal/protocol"
)

func newKillCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "kill <appid>",
		Short: "Terminate one running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			c, err := ctx.newClient(cmd)
			if err != nil {
				return err
			}
			receipt, err := c.Kill(cmd.Context(), appID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if receipt.Result == protocol.KillNoAction {
				fmt.Fprintf(out, "job %d already finished: %s\n", appID, receipt.Detail)
				return nil
			}
			fmt.Fprintf(out, "job %d killed: %s\n", appID, receipt.Detail)
			return nil
		},
	}
}
