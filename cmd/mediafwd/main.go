// mediafwd - Telegram media forwarder
// Copies media from monitored Telegram chats into one target channel.
// License: MIT
//
// Copyright (c) 2026 mediafwd contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/mediafwd/cmd/mediafwd/internal"
	"github.com/tinyland-inc/mediafwd/cmd/mediafwd/internal/check"
	"github.com/tinyland-inc/mediafwd/cmd/mediafwd/internal/run"
	"github.com/tinyland-inc/mediafwd/cmd/mediafwd/internal/version"
)

func NewMediafwdCommand() *cobra.Command {
	short := fmt.Sprintf("%s mediafwd - Telegram Media Forwarder v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "mediafwd",
		Short:   short,
		Example: "mediafwd run --env-file .env",
	}

	cmd.AddCommand(
		run.NewRunCommand(),
		check.NewCheckCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewMediafwdCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
