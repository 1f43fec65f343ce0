package check

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/mediafwd/cmd/mediafwd/internal"
	"github.com/tinyland-inc/mediafwd/pkg/config"
	"github.com/tinyland-inc/mediafwd/pkg/forward"
	"github.com/tinyland-inc/mediafwd/pkg/transport/mtproto"
)

func NewCheckCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration without connecting to Telegram",
		Args:  cobra.NoArgs,
		Example: `  mediafwd check
  mediafwd check --env-file /etc/mediafwd.env`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := internal.LoadConfig(envFile)
			if err != nil {
				return err
			}
			return checkConfig(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Load variables from this file (default: .env if present)")

	return cmd
}

func checkConfig(w io.Writer, cfg *config.Config) error {
	redacted := cfg.Redacted()
	keys := make([]string, 0, len(redacted))
	for k := range redacted {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	fmt.Fprintln(w, "Configuration:")
	for _, k := range keys {
		fmt.Fprintf(w, "  %-22s %s\n", k, redacted[k])
	}

	ref, err := forward.ParseTargetRef(cfg.TargetInvite)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTarget: %s (%s)\n", ref, ref.Kind)

	senders := forward.NewSenderSet(cfg.Senders)
	fmt.Fprintf(w, "Senders: %s\n", strings.Join(senders.Entries(), ", "))

	if cfg.Transport == config.TransportMTProto {
		if _, err := mtproto.DecodeSession(cfg.SessionFormat, cfg.SessionString); err != nil {
			return fmt.Errorf("SESSION_STRING: %w", err)
		}
		fmt.Fprintf(w, "Session: %s session decoded\n", cfg.SessionFormat)
	}

	fmt.Fprintln(w, "\n✓ Configuration is valid")
	return nil
}
