package run

import (
	"github.com/spf13/cobra"
)

func NewRunCommand() *cobra.Command {
	var debug bool
	var envFile string

	cmd := &cobra.Command{
		Use:     "run",
		Aliases: []string{"r"},
		Short:   "Start forwarding media to the target channel",
		Args:    cobra.NoArgs,
		Example: `  mediafwd run
  mediafwd run --debug
  mediafwd run --env-file /etc/mediafwd.env`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return runCmd(debug, envFile)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load variables from this file (default: .env if present)")

	return cmd
}
