package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/studiowebux/restforge/internal/cli"
	"github.com/studiowebux/restforge/internal/collections"
	"github.com/studiowebux/restforge/internal/config"
	"github.com/studiowebux/restforge/internal/converter"
	"github.com/studiowebux/restforge/internal/curl"
	"github.com/studiowebux/restforge/internal/keybinds"
	"github.com/studiowebux/restforge/internal/tui"
	"github.com/studiowebux/restforge/internal/types"
)

var curlCmd = &cobra.Command{
	Use:   "curl",
	Short: "Import and export cURL commands",
}

// curl parse flags
var (
	parseSave        bool
	parseCollection  string
	parseDecodeBasic bool
	parseOutput      string
	parseName        string
)

var curlParseCmd = &cobra.Command{
	Use:   "parse [command]",
	Short: "Parse a cURL command into a request definition",
	Long: `Parse a cURL command into a request definition.

The command is read from the argument or, when omitted, from stdin.

Examples:
  restforge curl parse "curl -X POST https://api.example.com/users -d '{\"a\":1}'"
  pbpaste | restforge curl parse -o yaml
  restforge curl parse --save "curl https://api.example.com/health"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := commandInput(cmd, args)
		if err != nil {
			return err
		}

		req, err := importCurl(input, parseDecodeBasic, parseName)
		if err != nil {
			return err
		}

		if parseSave || parseCollection != "" {
			if err := saveParsed(cmd, req); err != nil {
				return err
			}
		}

		out, err := cli.FormatValue(req, parseOutput)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
		return nil
	},
}

// curl generate flags
var (
	generateCopy       bool
	generateOutput     string
	generateHistory    string
	generateCollection string
	generateRequest    string
)

var curlGenerateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate a cURL command from a request",
	Long: `Generate a cURL command from a request file, a history entry or a collection request.

Examples:
  restforge curl generate get-user.json
  restforge curl generate --from-history 3f2c... --copy
  restforge curl generate --from-collection "My API" --request "List users" -o users.curl`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := resolveSource(args, requestSource{
			historyID:  generateHistory,
			collection: generateCollection,
			request:    generateRequest,
		})
		if err != nil {
			return err
		}

		command := curl.GenerateCurlCommand(req)

		if generateOutput != "" {
			if err := converter.EnsureOutputDir(generateOutput); err != nil {
				return err
			}
			if err := os.WriteFile(generateOutput, []byte(command+"\n"), config.FilePermissions); err != nil {
				return fmt.Errorf("failed to write %s: %w", generateOutput, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "cURL command saved to %s\n", generateOutput)
		}

		if generateCopy {
			if err := clipboard.WriteAll(command); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to copy to clipboard: %v\n", err)
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), "cURL command copied to clipboard")
			}
		}

		if generateOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), command)
		}
		return nil
	},
}

// curl dialog flags
var (
	dialogExport      bool
	dialogDecodeBasic bool
)

var curlDialogCmd = &cobra.Command{
	Use:   "dialog",
	Short: "Open the interactive cURL import/export dialog",
	Long: `Open the interactive cURL dialog.

Import mode parses a pasted command into the active tab (a new tab is opened
when none exists). Export mode shows the active tab as a cURL command that
can be copied or written to the exports directory.

Keys:
  import  ctrl+s import, ctrl+v paste, ctrl+k clear
  export  c copy, d download
  tab switches mode, esc closes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cli.IsTerminal() {
			return errors.New("the dialog requires an interactive terminal")
		}
		if err := app.open(); err != nil {
			return err
		}

		mode := tui.ModeImport
		if dialogExport {
			mode = tui.ModeExport
		}

		var source *types.RequestConfig
		if tab, ok := app.session.ActiveTab(); ok {
			source = &tab.Request
		}

		keys, err := keybinds.LoadOrDefault(config.ConfigDir)
		if err != nil {
			return err
		}

		imported, err := tui.Run(tui.Options{
			Mode:       mode,
			Source:     source,
			Parser:     app.parser(dialogDecodeBasic),
			ExportPath: exportPathFor(source),
			Keys:       keys,
			OnImport:   applyToActiveTab,
		})
		if err != nil {
			return err
		}

		if imported != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s %s\n", imported.EffectiveMethod(), imported.URL)
		}
		return nil
	},
}

func init() {
	curlParseCmd.Flags().BoolVar(&parseSave, "save", false, "Open the parsed request in a new tab")
	curlParseCmd.Flags().StringVar(&parseCollection, "collection", "", "Add the parsed request to a collection (id or name)")
	curlParseCmd.Flags().BoolVar(&parseDecodeBasic, "decode-basic", false, "Decode 'Authorization: Basic' headers into username and password")
	curlParseCmd.Flags().StringVarP(&parseOutput, "output", "o", cli.FormatJSON, "Output format (json, yaml)")
	curlParseCmd.Flags().StringVarP(&parseName, "name", "n", "", "Name of the imported request")

	curlGenerateCmd.Flags().BoolVarP(&generateCopy, "copy", "c", false, "Copy the command to the clipboard")
	curlGenerateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write the command to a file")
	curlGenerateCmd.Flags().StringVar(&generateHistory, "from-history", "", "Use a history entry (id)")
	curlGenerateCmd.Flags().StringVar(&generateCollection, "from-collection", "", "Use a collection request (collection id or name)")
	curlGenerateCmd.Flags().StringVarP(&generateRequest, "request", "r", "", "Request id or name within the file or collection")

	curlDialogCmd.Flags().BoolVar(&dialogExport, "export", false, "Start in export mode")
	curlDialogCmd.Flags().BoolVar(&dialogDecodeBasic, "decode-basic", false, "Decode 'Authorization: Basic' headers into username and password")

	curlCmd.AddCommand(curlParseCmd)
	curlCmd.AddCommand(curlGenerateCmd)
	curlCmd.AddCommand(curlDialogCmd)
}

// commandInput returns the single argument or everything on stdin
func commandInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if cli.IsTerminal() {
		return "", errors.New("no cURL command given (pass it as an argument or pipe it on stdin)")
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// importCurl validates and parses input
func importCurl(input string, decodeBasic bool, name string) (*types.RequestConfig, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errors.New("empty cURL command")
	}
	if !curl.IsValidCurlCommand(input) {
		return nil, errors.New("this doesn't look like a cURL command")
	}

	opts := []curl.Option{curl.WithBasicAuthDecoding(decodeBasic || app.settings.DecodeBasicAuth)}
	if name != "" {
		opts = append(opts, curl.WithName(name))
	}

	req, err := curl.NewParser(opts...).Parse(input)
	if err != nil {
		app.logger.Debug("curl parse failed", "error", err)
		return nil, fmt.Errorf("failed to parse cURL command, check the format: %w", err)
	}
	return req, nil
}

func saveParsed(cmd *cobra.Command, req *types.RequestConfig) error {
	if err := app.open(); err != nil {
		return err
	}

	if parseCollection != "" {
		c, err := app.collections.Get(parseCollection)
		if err != nil {
			return err
		}
		if _, err := app.collections.AddRequest(c.ID, req); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Added to collection %s\n", c.Name)
	}

	if parseSave {
		tab, err := app.session.OpenTab(req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Opened in tab %s\n", tab.ID)
	}
	return nil
}

// applyToActiveTab replaces the active tab's request, opening a tab when none is active
func applyToActiveTab(req *types.RequestConfig) error {
	if tab, ok := app.session.ActiveTab(); ok {
		return app.session.UpdateRequest(tab.ID, req)
	}
	_, err := app.session.OpenTab(req)
	return err
}

// requestSource selects where an exported request comes from
type requestSource struct {
	historyID  string
	collection string
	request    string
}

// resolveSource loads a request from history, a collection, a file or the active tab, in that order
func resolveSource(args []string, src requestSource) (*types.RequestConfig, error) {
	switch {
	case src.historyID != "":
		if err := app.open(); err != nil {
			return nil, err
		}
		item, err := app.history.Get(src.historyID)
		if err != nil {
			return nil, err
		}
		return &item.Request, nil

	case src.collection != "":
		if err := app.open(); err != nil {
			return nil, err
		}
		return collectionRequest(src.collection, src.request)

	case len(args) == 1:
		return requestFromFile(args[0], src.request)

	default:
		if err := app.open(); err != nil {
			return nil, err
		}
		tab, ok := app.session.ActiveTab()
		if !ok {
			return nil, errors.New("no request given and no tab is open")
		}
		return &tab.Request, nil
	}
}

// requestFromFile loads one request from a definition file
func requestFromFile(path, want string) (*types.RequestConfig, error) {
	resolved, err := cli.ResolveFilePath(path)
	if err != nil {
		return nil, err
	}
	requests, err := cli.LoadRequests(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	return pickRequest(requests, want)
}

// collectionRequest finds a request by id or name inside a collection
func collectionRequest(collection, want string) (*types.RequestConfig, error) {
	c, err := app.collections.Get(collection)
	if err != nil {
		return nil, err
	}
	return pickRequest(collections.AllRequests(c), want)
}

func pickRequest(requests []types.RequestConfig, want string) (*types.RequestConfig, error) {
	if len(requests) == 0 {
		return nil, errors.New("no requests found")
	}
	if want == "" {
		if len(requests) > 1 {
			return nil, fmt.Errorf("%d requests found, pick one with --request", len(requests))
		}
		return &requests[0], nil
	}
	for i := range requests {
		if requests[i].ID == want || requests[i].Name == want {
			return &requests[i], nil
		}
	}
	return nil, fmt.Errorf("request %q not found", want)
}

// exportPathFor names the dialog download after the request URL
func exportPathFor(req *types.RequestConfig) string {
	name := tui.DefaultExportFile
	if req != nil {
		name = strings.TrimSuffix(converter.SuggestFilename(req.URL), ".http") + ".curl"
	}
	return filepath.Join(config.ExportsDir, name)
}
