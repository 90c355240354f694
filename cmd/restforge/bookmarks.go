package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/studiowebux/restforge/internal/bookmarks"
	"github.com/studiowebux/restforge/internal/filter"
)

var bookmarksCmd = &cobra.Command{
	Use:               "bookmarks",
	Aliases:           []string{"bm"},
	Short:             "Save JMESPath queries for reuse with --filter @id and --query @id",
	PersistentPreRunE: openStore,
}

var bookmarksListCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List saved queries, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var list []bookmarks.Bookmark
		if len(args) == 1 {
			list = app.bookmarks.Search(args[0])
		} else {
			list = app.bookmarks.List()
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, b := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, time.UnixMilli(b.CreatedAt).Format(time.DateOnly), b.Expression)
		}
		return w.Flush()
	},
}

var bookmarksAddCmd = &cobra.Command{
	Use:   "add <expression>",
	Short: "Save a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !filter.IsValidJMESPath(args[0]) {
			return fmt.Errorf("invalid JMESPath expression: %s", args[0])
		}
		added, err := app.bookmarks.Save(args[0])
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintln(cmd.ErrOrStderr(), "Already bookmarked")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved as @%s\n", app.bookmarks.List()[0].ID)
		return nil
	},
}

var bookmarksDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.bookmarks.Delete(args[0])
	},
}

func init() {
	bookmarksCmd.AddCommand(bookmarksListCmd)
	bookmarksCmd.AddCommand(bookmarksAddCmd)
	bookmarksCmd.AddCommand(bookmarksDeleteCmd)
}
