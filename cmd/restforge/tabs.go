package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studiowebux/restforge/internal/cli"
	"github.com/studiowebux/restforge/internal/types"
)

var (
	tabsOutput  string
	tabsRequest string
)

var tabsCmd = &cobra.Command{
	Use:               "tabs",
	Short:             "Manage open request tabs",
	PersistentPreRunE: openStore,
}

var tabsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open tabs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tabs := app.session.Tabs()
		if tabsOutput != cli.FormatText {
			return printValue(cmd, tabs, tabsOutput)
		}
		if len(tabs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No open tabs")
			return nil
		}

		active, _ := app.session.ActiveTab()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\tID\tMETHOD\tNAME\tURL\tSTATUS")
		for _, tab := range tabs {
			marker := ""
			if tab.ID == active.ID {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", marker, tab.ID,
				tab.Request.EffectiveMethod(), tab.Request.Name, tab.Request.URL, statusOf(tab.Response))
		}
		return w.Flush()
	},
}

var tabsOpenCmd = &cobra.Command{
	Use:   "open [file]",
	Short: "Open a tab, empty or loaded from a request file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req *types.RequestConfig
		if len(args) == 1 {
			loaded, err := requestFromFile(args[0], tabsRequest)
			if err != nil {
				return err
			}
			req = loaded
		}

		tab, err := app.session.OpenTab(req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opened tab %s\n", tab.ID)
		return nil
	},
}

var tabsDuplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Duplicate a tab",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, err := app.session.DuplicateTab(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opened tab %s\n", tab.ID)
		return nil
	},
}

var tabsSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Make a tab the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.session.SetActive(args[0])
	},
}

var tabsCloseCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a tab",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.session.CloseTab(args[0]); err != nil {
			return err
		}
		if active, ok := app.session.ActiveTab(); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "Active tab: %s\n", active.ID)
		}
		return nil
	},
}

var tabsSendCmd = &cobra.Command{
	Use:   "send [id]",
	Short: "Send the request of a tab (the active one by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, ok := app.session.ActiveTab()
		if len(args) == 1 {
			ok = false
			for _, t := range app.session.Tabs() {
				if t.ID == args[0] {
					tab, ok = t, true
				}
			}
		}
		if !ok {
			return fmt.Errorf("no such tab")
		}

		var vars []types.KeyValuePair
		if env := app.activeEnvironment(""); env != "" {
			envVars, err := app.environments.Variables(env)
			if err != nil {
				return fmt.Errorf("failed to load environment: %w", err)
			}
			vars = envVars
		}

		if err := app.session.SetLoading(tab.ID, true); err != nil {
			return err
		}
		resp := app.executor().Execute(contextOf(cmd), &tab.Request, vars)
		if err := app.session.SetResponse(tab.ID, resp); err != nil {
			return err
		}
		if _, err := app.history.Record(&tab.Request, resp); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to save history: %v\n", err)
		}

		out, err := cli.FormatResponse(resp, cli.FormatOptions{
			Format:      cli.FormatText,
			Color:       app.color(cli.IsTerminal()),
			Highlighter: app.highlighter(),
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	tabsCmd.PersistentFlags().StringVarP(&tabsOutput, "output", "o", cli.FormatText, "Output format (text, json, yaml)")
	tabsOpenCmd.Flags().StringVarP(&tabsRequest, "request", "r", "", "Request id or name when the file holds several")

	tabsCmd.AddCommand(tabsListCmd)
	tabsCmd.AddCommand(tabsOpenCmd)
	tabsCmd.AddCommand(tabsDuplicateCmd)
	tabsCmd.AddCommand(tabsSelectCmd)
	tabsCmd.AddCommand(tabsCloseCmd)
	tabsCmd.AddCommand(tabsSendCmd)
}
