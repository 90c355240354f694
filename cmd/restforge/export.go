package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/studiowebux/restforge/internal/config"
	"github.com/studiowebux/restforge/internal/converter"
)

var (
	exportOutput    string
	exportMask      bool
	exportVariables bool
	exportRequest   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export requests to other formats",
}

var exportHTTPCmd = &cobra.Command{
	Use:   "http [file]",
	Short: "Export a request as a .http file",
	Long: `Export a request as a .http file.

Without a file argument the active tab is exported. The output file defaults
to a name derived from the URL inside the exports directory.

Examples:
  restforge export http get-user.json
  restforge export http --mask --suggest-vars -O api/users.http`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := resolveSource(args, requestSource{request: exportRequest})
		if err != nil {
			return err
		}

		path := exportOutput
		if path == "" {
			path = filepath.Join(config.ExportsDir, converter.SuggestFilename(req.URL))
		}

		if err := converter.WriteFile(req, path, converter.Options{
			MaskSecrets:      exportMask,
			SuggestVariables: exportVariables,
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	},
}

func init() {
	exportHTTPCmd.Flags().StringVarP(&exportOutput, "output", "O", "", "Output file")
	exportHTTPCmd.Flags().BoolVar(&exportMask, "mask", false, "Replace credential header values with placeholders")
	exportHTTPCmd.Flags().BoolVar(&exportVariables, "suggest-vars", false, "Add variable suggestions for the base URL and path ids")
	exportHTTPCmd.Flags().StringVarP(&exportRequest, "request", "r", "", "Request id or name when the file holds several")

	exportCmd.AddCommand(exportHTTPCmd)
}
