package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm/minazuki/internal/cli"
	"github.com/pthm/minazuki/internal/update"
	"github.com/pthm/minazuki/internal/version"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, version.Info())
		if !versionCheck {
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		info, err := update.CheckWithCache(ctx)
		if err != nil {
			return cli.GeneralError("checking for updates", err)
		}
		if info.UpdateAvailable {
			_, _ = fmt.Fprintf(out, "A newer release is available: %s (current %s)\n", info.LatestVersion, info.CurrentVersion)
			if info.ReleaseURL != "" {
				_, _ = fmt.Fprintf(out, "  %s\n", info.ReleaseURL)
			}
		} else {
			_, _ = fmt.Fprintln(out, "You are running the latest release.")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}
