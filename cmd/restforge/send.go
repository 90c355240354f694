package main

import (
	"github.com/spf13/cobra"

	"github.com/studiowebux/restforge/internal/cli"
	"github.com/studiowebux/restforge/internal/filter"
)

// send flags
var (
	sendRequest   string
	sendEnv       string
	sendVars      []string
	sendBody      string
	sendOutput    string
	sendSave      string
	sendFull      bool
	sendFilter    string
	sendQuery     string
	sendNoHistory bool
	sendNoPrompt  bool
	sendExtract   []string
	sendExtractTo string
)

var sendCmd = &cobra.Command{
	Use:   "send <file>",
	Short: "Send a request defined in a JSON, YAML or .http file",
	Long: `Send a request defined in a JSON, YAML or .http file.

The file may hold a single request, a list of requests or a collection.
Files are looked up as given, with .json/.yaml/.yml/.http appended, and in
the requests directory of the configuration home.

Examples:
  restforge send get-user.json
  restforge send api.yaml --request "Create user" -e dev --var id=42
  restforge send get-user --filter 'items[?active]' --query '[].name' -o json
  restforge send login.json -e dev --extract token=data.access_token
  restforge send list-users --query @<bookmark-id>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.open(); err != nil {
			return err
		}

		filterExpr, err := app.bookmarks.Resolve(sendFilter)
		if err != nil {
			return err
		}
		queryExpr, err := app.bookmarks.Resolve(sendQuery)
		if err != nil {
			return err
		}
		rules, err := filter.ParseRules(sendExtract)
		if err != nil {
			return err
		}

		_, err = cli.Send(cmd.Context(), cli.Deps{
			Executor:     app.executor(),
			History:      app.history,
			Environments: app.environments,
			Highlighter:  app.highlighter(),
			Stdin:        cmd.InOrStdin(),
			Stdout:       cmd.OutOrStdout(),
			Stderr:       cmd.ErrOrStderr(),
			Interactive:  !sendNoPrompt && cli.IsInteractive(),
		}, cli.SendOptions{
			FilePath:     args[0],
			Request:      sendRequest,
			Environment:  app.activeEnvironment(sendEnv),
			ExtraVars:    sendVars,
			BodyOverride: sendBody,
			OutputFormat: sendOutput,
			SavePath:     sendSave,
			ShowFull:     sendFull,
			Color:        app.color(cli.IsTerminal()),
			Filter:       filterExpr,
			Query:        queryExpr,
			NoHistory:    sendNoHistory,
			Extract:      rules,
			ExtractTo:    app.activeEnvironment(firstNonEmpty(sendExtractTo, sendEnv)),
		})
		return err
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendRequest, "request", "r", "", "Request id or name when the file holds several")
	sendCmd.Flags().StringVarP(&sendEnv, "env", "e", "", "Environment (id or name); defaults to the active one")
	sendCmd.Flags().StringArrayVar(&sendVars, "var", nil, "Set a variable (key=value), repeatable")
	sendCmd.Flags().StringVarP(&sendBody, "body", "b", "", "Override the request body")
	sendCmd.Flags().StringVarP(&sendOutput, "output", "o", cli.FormatText, "Output format (text, json, yaml, body)")
	sendCmd.Flags().StringVarP(&sendSave, "save", "s", "", "Write the response to a file")
	sendCmd.Flags().BoolVarP(&sendFull, "full", "f", false, "Show response headers")
	sendCmd.Flags().StringVar(&sendFilter, "filter", "", "JMESPath filter applied to the body")
	sendCmd.Flags().StringVarP(&sendQuery, "query", "q", "", "JMESPath query or $(shell command) applied after the filter")
	sendCmd.Flags().BoolVar(&sendNoHistory, "no-history", false, "Do not record the request in history")
	sendCmd.Flags().StringArrayVarP(&sendExtract, "extract", "x", nil, "Save a value from the JSON body into the environment (name=jmespath), repeatable")
	sendCmd.Flags().StringVar(&sendExtractTo, "extract-to", "", "Environment receiving extracted values (defaults to --env or the active one)")
	sendCmd.Flags().BoolVar(&sendNoPrompt, "no-prompt", false, "Never prompt for missing variables or request selection")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
