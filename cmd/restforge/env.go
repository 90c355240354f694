package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studiowebux/restforge/internal/cli"
	"github.com/studiowebux/restforge/internal/types"
)

var (
	envOutput     string
	envShowValues bool
)

var envCmd = &cobra.Command{
	Use:               "env",
	Short:             "Manage environments used for {{variable}} substitution",
	PersistentPreRunE: openStore,
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List environments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list := app.environments.List()
		if envOutput != cli.FormatText {
			return printValue(cmd, list, envOutput)
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No environments")
			return nil
		}

		active := app.session.Settings().ActiveEnvironment
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\tID\tNAME\tVARIABLES")
		for _, env := range list {
			marker := ""
			if env.ID == active || env.Name == active {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", marker, env.ID, env.Name, len(env.Variables))
		}
		return w.Flush()
	},
}

var envShowCmd = &cobra.Command{
	Use:   "show <env>",
	Short: "Show the variables of an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.environments.Get(args[0])
		if err != nil {
			return err
		}
		if envOutput != cli.FormatText {
			return printValue(cmd, env, envOutput)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, v := range env.Variables {
			state := ""
			if !v.Enabled {
				state = "(disabled)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", v.Key, maskValue(v.Value, envShowValues), state)
		}
		return w.Flush()
	},
}

var envAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.environments.Add(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created environment %s (%s)\n", env.Name, env.ID)
		return nil
	},
}

var envSetCmd = &cobra.Command{
	Use:   "set <env> <key=value>...",
	Short: "Set variables in an environment",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.environments.Get(args[0])
		if err != nil {
			return err
		}
		pairs, err := cli.ParseExtraVars(args[1:])
		if err != nil {
			return err
		}
		for _, p := range pairs {
			if err := app.environments.SetVariable(env.ID, p.Key, p.Value); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Updated %d variables in %s\n", len(pairs), env.Name)
		return nil
	},
}

var envUseCmd = &cobra.Command{
	Use:   "use [env]",
	Short: "Select the active environment (no argument clears it)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		active := ""
		if len(args) == 1 {
			env, err := app.environments.Get(args[0])
			if err != nil {
				return err
			}
			active = env.ID
		}

		if _, err := app.session.UpdateSettings(func(s *types.AppSettings) {
			s.ActiveEnvironment = active
		}); err != nil {
			return err
		}
		if active == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Active environment cleared")
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Active environment: %s\n", args[0])
		}
		return nil
	},
}

var envDeleteCmd = &cobra.Command{
	Use:   "delete <env>",
	Short: "Delete an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := app.environments.Get(args[0])
		if err != nil {
			return err
		}
		if err := app.environments.Delete(env.ID); err != nil {
			return err
		}

		if active := app.session.Settings().ActiveEnvironment; active == env.ID {
			if _, err := app.session.UpdateSettings(func(s *types.AppSettings) {
				s.ActiveEnvironment = ""
			}); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted environment %s\n", env.Name)
		return nil
	},
}

func init() {
	envCmd.PersistentFlags().StringVarP(&envOutput, "output", "o", cli.FormatText, "Output format (text, json, yaml)")
	envShowCmd.Flags().BoolVar(&envShowValues, "show-values", false, "Print variable values instead of masking them")

	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envShowCmd)
	envCmd.AddCommand(envAddCmd)
	envCmd.AddCommand(envSetCmd)
	envCmd.AddCommand(envUseCmd)
	envCmd.AddCommand(envDeleteCmd)
}

// maskValue hides all but the first two characters
func maskValue(value string, show bool) string {
	if show || len(value) <= 2 {
		return value
	}
	return value[:2] + strings.Repeat("*", min(len(value)-2, 8))
}
