package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"tether/internal/client"
)

func newPollCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "poll <appid>",
		Short: "Report the current state of one job",
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
			report, err := c.Poll(cmd.Context(), appID)
			if err != nil {
				return err
			}
			return client.WritePollReport(cmd.OutOrStdout(), report)
		},
	}
}
