package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/studiowebux/restforge/internal/bookmarks"
	"github.com/studiowebux/restforge/internal/collections"
	"github.com/studiowebux/restforge/internal/config"
	"github.com/studiowebux/restforge/internal/curl"
	"github.com/studiowebux/restforge/internal/environments"
	"github.com/studiowebux/restforge/internal/executor"
	"github.com/studiowebux/restforge/internal/history"
	"github.com/studiowebux/restforge/internal/jsonview"
	"github.com/studiowebux/restforge/internal/session"
	"github.com/studiowebux/restforge/internal/storage"
)

// appVersion is overridden at build time with -ldflags "-X main.appVersion=..."
var appVersion = "0.1.0"

func main() {
	defer app.close()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		app.close()
		os.Exit(1)
	}
}

// Global flags
var (
	flagVerbose bool
	flagNoColor bool
	flagEnvFile string
)

var rootCmd = &cobra.Command{
	Use:   "restforge",
	Short: "restforge - REST client with cURL import and export",
	Long: `restforge builds, sends and stores HTTP requests.

Requests are stored as JSON or YAML definitions and can be imported from or
exported to cURL commands, grouped into collections and sent with variables
taken from named environments.

Examples:
  restforge curl parse "curl -X POST https://api.example.com -d '{}'"
  restforge curl generate request.json --copy
  restforge curl dialog
  restforge send get-user --env dev --query 'data.name'
  restforge collections run "My API" --env staging`,
	Version:       appVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.init()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Load process environment from a .env file (default .env)")

	rootCmd.AddCommand(curlCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(tabsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(bookmarksCmd)
	rootCmd.AddCommand(versionCmd)
}

// application holds the configuration and the lazily opened stores
type application struct {
	settings *config.Settings
	logger   *slog.Logger

	store        storage.Store
	history      *history.Manager
	collections  *collections.Manager
	environments *environments.Manager
	session      *session.Manager
	bookmarks    *bookmarks.Manager
}

var app = &application{}

// init loads configuration and sets up logging
func (a *application) init() error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	settings, err := config.Load(config.ConfigFile)
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger = config.NewLogger(os.Stderr, settings.LogLevel, flagVerbose)
	slog.SetDefault(a.logger)
	return nil
}

// openStore is the pre-run hook of commands that need persisted state
func openStore(cmd *cobra.Command, args []string) error {
	if err := app.init(); err != nil {
		return err
	}
	return app.open()
}

// open opens the database and loads every store. Load failures are logged, not fatal.
func (a *application) open() error {
	if a.store != nil {
		return nil
	}

	store, err := storage.NewSQLiteStore(config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.store = store

	a.history = history.NewManager(store,
		history.WithMaxItems(a.settings.HistoryMaxItems),
		history.WithLogger(a.logger))
	a.collections = collections.NewManager(store, collections.WithLogger(a.logger))
	a.environments = environments.NewManager(store, environments.WithLogger(a.logger))
	a.session = session.NewManager(store, session.WithLogger(a.logger))
	a.bookmarks = bookmarks.NewManager(store, bookmarks.WithLogger(a.logger))

	loaders := []func() error{
		a.history.Load,
		a.collections.Load,
		a.environments.Load,
		a.session.Load,
		a.bookmarks.Load,
	}
	for _, load := range loaders {
		if err := load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return nil
}

func (a *application) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
	a.store = nil
}

func (a *application) executor() *executor.Executor {
	return executor.New(
		executor.WithTimeout(a.settings.HTTPTimeout),
		executor.WithLogger(a.logger),
	)
}

func (a *application) parser(decodeBasic bool) *curl.Parser {
	return curl.NewParser(curl.WithBasicAuthDecoding(decodeBasic || a.settings.DecodeBasicAuth))
}

func (a *application) highlighter() *jsonview.Highlighter {
	return jsonview.NewHighlighter(jsonview.DefaultStyle)
}

// color reports whether output may use ANSI colors
func (a *application) color(flag bool) bool {
	return flag && !flagNoColor && a.settings.Color
}

// activeEnvironment returns the environment named by flag or, failing that, the one in settings
func (a *application) activeEnvironment(flag string) string {
	if flag != "" {
		return flag
	}
	if a.session != nil {
		return a.session.Settings().ActiveEnvironment
	}
	return ""
}
