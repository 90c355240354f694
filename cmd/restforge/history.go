package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/studiowebux/restforge/internal/analytics"
	"github.com/studiowebux/restforge/internal/cli"
	"github.com/studiowebux/restforge/internal/request"
	"github.com/studiowebux/restforge/internal/types"
)

var (
	historyLimit  int
	historyOutput string
	historyFull   bool
)

var historyCmd = &cobra.Command{
	Use:               "history",
	Short:             "Inspect and manage sent requests",
	PersistentPreRunE: openStore,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items := app.history.Items()
		if historyLimit > 0 && len(items) > historyLimit {
			items = items[:historyLimit]
		}

		if historyOutput != cli.FormatText {
			return printValue(cmd, items, historyOutput)
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No history")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tMETHOD\tURL\tSTATUS")
		for _, item := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				item.ID,
				time.UnixMilli(item.Timestamp).Format(time.DateTime),
				item.Request.EffectiveMethod(),
				item.Request.URL,
				statusOf(item.Response))
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a history entry and its response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := app.history.Get(args[0])
		if err != nil {
			return err
		}

		if historyOutput != cli.FormatText {
			return printValue(cmd, item, historyOutput)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", item.Request.EffectiveMethod(), item.Request.URL)
		fmt.Fprintf(cmd.OutOrStdout(), "Sent: %s\n\n", time.UnixMilli(item.Timestamp).Format(time.DateTime))
		if item.Response == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No response recorded")
			return nil
		}

		out, err := cli.FormatResponse(item.Response, cli.FormatOptions{
			Format:      cli.FormatText,
			ShowFull:    historyFull,
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

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.history.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted %s\n", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every history entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.history.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "History cleared")
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-endpoint call statistics computed from history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats := analytics.Compute(app.history.Items())
		if historyOutput != cli.FormatText {
			return printValue(cmd, stats, historyOutput)
		}
		if len(stats) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No history")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tCALLS\tSUCCESS\tERRORS\tAVG\tMIN\tMAX\tLAST")
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%s\t%d\t%.0f%%\t%d\t%s\t%s\t%s\t%s\n",
				s.Method, s.NormalizedPath, s.TotalCalls, s.SuccessRate()*100,
				s.ErrorCount+s.NetworkErrors,
				request.FormatTime(s.AvgDurationMs),
				request.FormatTime(s.MinDurationMs),
				request.FormatTime(s.MaxDurationMs),
				s.LastCalled.Format(time.DateTime))
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.PersistentFlags().StringVarP(&historyOutput, "output", "o", cli.FormatText, "Output format (text, json, yaml)")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to list (0 for all)")
	historyShowCmd.Flags().BoolVarP(&historyFull, "full", "f", false, "Show response headers")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatsCmd)
}

// statusOf renders a response status for listings
func statusOf(resp *types.ResponseData) string {
	if resp == nil {
		return "-"
	}
	if resp.Status == 0 {
		return "error"
	}
	return fmt.Sprintf("%d (%s)", resp.Status, request.FormatTime(resp.Time))
}

// printValue writes v as json or yaml
func printValue(cmd *cobra.Command, v any, format string) error {
	out, err := cli.FormatValue(v, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
	return nil
}
