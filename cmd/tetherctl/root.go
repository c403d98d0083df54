package main

import (
	"github.com/spf13/cobra"

	"tether/internal/logging"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "tetherctl",
		Short:         "Submit and manage jobs on a tether hub",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.ConfigureRuntime()
			if ctx.logLevelFlag != "" {
				logging.SetLevel(ctx.logLevelFlag)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.serverFlag, "server", "", "Hub host name")
	flags.IntVar(&ctx.portFlag, "port", 0, "Hub port")
	flags.StringVar(&ctx.certFlag, "cert", "", "Client certificate file")
	flags.StringVar(&ctx.keyFlag, "key", "", "Client key file")
	flags.StringVar(&ctx.relayPortsFlag, "relay-ports", "", "Callback port span as low-high")
	flags.StringVar(&ctx.logLevelFlag, "log-level", "", "Log level override")

	rootCmd.AddCommand(newPollCommand(ctx))
	rootCmd.AddCommand(newKillCommand(ctx))
	rootCmd.AddCommand(newSubmitCommand(ctx))
	rootCmd.AddCommand(newSequenceCommand(ctx))
	rootCmd.AddCommand(newInteractCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
