package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studiowebux/restforge/internal/version"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "restforge %s\n", appVersion)
		if !versionCheck {
			return nil
		}

		update, err := version.NewChecker().Check(contextOf(cmd), appVersion)
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}
		if update.Available {
			fmt.Fprintf(cmd.OutOrStdout(), "A newer version is available: %s\n%s\n", update.Latest, update.URL)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "You are running the latest version")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check for a newer release")
}
