package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studiowebux/restforge/internal/cli"
	"github.com/studiowebux/restforge/internal/collections"
	"github.com/studiowebux/restforge/internal/converter"
	"github.com/studiowebux/restforge/internal/request"
	"github.com/studiowebux/restforge/internal/runner"
)

var (
	collectionsOutput     string
	collectionDescription string
	harName               string
	harFilter             string
	harImportHeaders      bool
	runEnv                string
	runConcurrency        int
	runVars               []string
	runNoHistory          bool
	runRate               float64
)

var collectionsCmd = &cobra.Command{
	Use:               "collections",
	Aliases:           []string{"col"},
	Short:             "Manage request collections",
	PersistentPreRunE: openStore,
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list := app.collections.List()
		if collectionsOutput != cli.FormatText {
			return printValue(cmd, list, collectionsOutput)
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No collections")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tREQUESTS\tDESCRIPTION")
		for _, c := range list {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.ID, c.Name, len(collections.AllRequests(c)), c.Description)
		}
		return w.Flush()
	},
}

var collectionsShowCmd = &cobra.Command{
	Use:   "show <collection>",
	Short: "Show a collection and its requests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.collections.Get(args[0])
		if err != nil {
			return err
		}
		if collectionsOutput != cli.FormatText {
			return printValue(cmd, c, collectionsOutput)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", c.Name, c.ID)
		if c.Description != "" {
			fmt.Fprintln(cmd.OutOrStdout(), c.Description)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, r := range collections.AllRequests(c) {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", r.ID, r.EffectiveMethod(), r.Name, r.URL)
		}
		return w.Flush()
	},
}

var collectionsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an empty collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.collections.Add(args[0], collectionDescription)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created collection %s (%s)\n", c.Name, c.ID)
		return nil
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <collection>",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.collections.Get(args[0])
		if err != nil {
			return err
		}
		if err := app.collections.Delete(c.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted collection %s\n", c.Name)
		return nil
	},
}

var collectionsRemoveCmd = &cobra.Command{
	Use:   "remove <collection> <request>",
	Short: "Remove a request from a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.collections.Get(args[0])
		if err != nil {
			return err
		}
		req, err := pickRequest(collections.AllRequests(c), args[1])
		if err != nil {
			return err
		}
		return app.collections.RemoveRequest(c.ID, req.ID)
	},
}

var collectionsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search collection and request names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results := app.collections.Search(args[0])
		if collectionsOutput != cli.FormatText {
			return printValue(cmd, results, collectionsOutput)
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matches")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.CollectionName, r.RequestName, r.RequestID)
		}
		return w.Flush()
	},
}

var collectionsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import collections from a JSON, JSONC or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imported, err := app.collections.Import(args[0])
		if err != nil {
			return err
		}
		for _, c := range imported {
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d requests)\n", c.Name, len(collections.AllRequests(c)))
		}
		return nil
	},
}

var collectionsImportHARCmd = &cobra.Command{
	Use:   "import-har <file>",
	Short: "Import the requests of a HAR capture as a collection",
	Long: `Import the requests of a HAR capture as a collection.

Cookies and credential headers are dropped unless --import-headers is set.

Examples:
  restforge collections import-har session.har --name "Checkout flow"
  restforge collections import-har session.har --filter api.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read HAR file: %w", err)
		}

		converted, skipped, err := converter.FromHAR(data, converter.HAROptions{
			Name:          harName,
			Filter:        harFilter,
			ImportHeaders: harImportHeaders,
		})
		if err != nil {
			return err
		}
		if len(converted.Requests) == 0 {
			return errors.New("no requests matched in HAR file")
		}

		c, err := app.collections.AddCollection(converted)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d requests into %s (%s)\n", len(c.Requests), c.Name, c.ID)
		if skipped > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d entries\n", skipped)
		}
		return nil
	},
}

var collectionsExportCmd = &cobra.Command{
	Use:   "export <collection> <file>",
	Short: "Export a collection to JSON or YAML",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.collections.Get(args[0])
		if err != nil {
			return err
		}
		if err := app.collections.Export(c.ID, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", c.Name, args[1])
		return nil
	},
}

var collectionsRunCmd = &cobra.Command{
	Use:   "run <collection>",
	Short: "Send every request of a collection",
	Long: `Send every request of a collection with a bounded number in flight.

Results are printed in collection order. Ctrl+C stops the run; requests not
yet started are reported as skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := app.collections.Get(args[0])
		if err != nil {
			return err
		}

		vars, err := cli.ParseExtraVars(runVars)
		if err != nil {
			return err
		}
		if env := app.activeEnvironment(runEnv); env != "" {
			envVars, err := app.environments.Variables(env)
			if err != nil {
				return fmt.Errorf("failed to load environment: %w", err)
			}
			vars = append(vars, envVars...)
		}

		concurrency := runConcurrency
		if concurrency <= 0 {
			concurrency = app.settings.RunnerConcurrency
		}

		ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
		defer stop()

		results := runner.Run(ctx, app.executor(), collections.AllRequests(c), vars, concurrency, runner.WithRateLimit(runRate))

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, r := range results {
			if !r.Skipped && !runNoHistory {
				if _, err := app.history.Record(&r.Request, r.Response); err != nil {
					app.logger.Warn("failed to record history", "request", r.Request.Name, "error", err)
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", resultStatus(r), r.Request.EffectiveMethod(), r.Request.Name, r.Request.URL)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		summary := runner.Summarize(results)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d requests: %d succeeded, %d failed, %d skipped in %s\n",
			summary.Total, summary.Succeeded, summary.Failed, summary.Skipped,
			request.FormatTime(float64(summary.TotalTime.Milliseconds())))

		if summary.Failed > 0 {
			return fmt.Errorf("%w: %d of %d requests", cli.ErrRequestFailed, summary.Failed, summary.Total)
		}
		return nil
	},
}

func init() {
	collectionsCmd.PersistentFlags().StringVarP(&collectionsOutput, "output", "o", cli.FormatText, "Output format (text, json, yaml)")
	collectionsAddCmd.Flags().StringVarP(&collectionDescription, "description", "d", "", "Collection description")

	collectionsImportHARCmd.Flags().StringVarP(&harName, "name", "n", "", "Collection name (defaults to the HAR creator)")
	collectionsImportHARCmd.Flags().StringVar(&harFilter, "filter", "", "Only import entries whose URL contains this text")
	collectionsImportHARCmd.Flags().BoolVar(&harImportHeaders, "import-headers", false, "Keep cookies and credential headers")

	collectionsRunCmd.Flags().StringVarP(&runEnv, "env", "e", "", "Environment (id or name); defaults to the active one")
	collectionsRunCmd.Flags().IntVarP(&runConcurrency, "concurrency", "c", 0, "Requests in flight (defaults to runner.concurrency)")
	collectionsRunCmd.Flags().StringArrayVar(&runVars, "var", nil, "Set a variable (key=value), repeatable")
	collectionsRunCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Do not record the requests in history")
	collectionsRunCmd.Flags().Float64Var(&runRate, "rate", 0, "Maximum requests started per second (0 = unlimited)")

	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsShowCmd)
	collectionsCmd.AddCommand(collectionsAddCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	collectionsCmd.AddCommand(collectionsRemoveCmd)
	collectionsCmd.AddCommand(collectionsSearchCmd)
	collectionsCmd.AddCommand(collectionsImportCmd)
	collectionsCmd.AddCommand(collectionsImportHARCmd)
	collectionsCmd.AddCommand(collectionsExportCmd)
	collectionsCmd.AddCommand(collectionsRunCmd)
}

func resultStatus(r runner.Result) string {
	if r.Skipped {
		return "SKIP"
	}
	return statusOf(r.Response)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
