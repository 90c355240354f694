package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// HomeEnv overrides the configuration directory
	HomeEnv = "RESTFORGE_HOME"
	// EnvPrefix is the prefix of environment variables that override config keys
	EnvPrefix = "RESTFORGE"
)

// Config keys
const (
	KeyHTTPTimeout       = "http.timeout"
	KeyHistoryMaxItems   = "history.max_items"
	KeyRunnerConcurrency = "runner.concurrency"
	KeyDecodeBasicAuth   = "curl.decode_basic_auth"
	KeyOutputColor       = "output.color"
	KeyLogLevel          = "log.level"
)

var (
	// ConfigDir is the global configuration directory (~/.restforge)
	ConfigDir string

	// DatabasePath is the SQLite database holding history, collections, environments and tabs
	DatabasePath string

	// ConfigFile is the YAML configuration file
	ConfigFile string

	// ExportsDir is where generated .curl and .http files go by default
	ExportsDir string
)

// DefaultConfigYAML is written to ConfigFile on first run
const DefaultConfigYAML = `http:
  timeout: 30s
history:
  max_items: 100
runner:
  concurrency: 4
curl:
  decode_basic_auth: false
output:
  color: true
log:
  level: info
`

// Initialize sets up the configuration directories and files.
// It creates ~/.restforge/ (or $RESTFORGE_HOME) if it doesn't exist.
func Initialize() error {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".restforge")
	}
	return InitializeAt(dir)
}

// InitializeAt sets the global paths relative to dir and creates them
func InitializeAt(dir string) error {
	ConfigDir = dir
	DatabasePath = filepath.Join(ConfigDir, "restforge.db")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	ExportsDir = filepath.Join(ConfigDir, "exports")

	for _, d := range []string{ConfigDir, ExportsDir} {
		if err := os.MkdirAll(d, DirPermissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	if _, err := os.Stat(ConfigFile); os.IsNotExist(err) {
		if err := os.WriteFile(ConfigFile, []byte(DefaultConfigYAML), FilePermissions); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return nil
}

// Settings is the resolved configuration
type Settings struct {
	HTTPTimeout       time.Duration
	HistoryMaxItems   int
	RunnerConcurrency int
	DecodeBasicAuth   bool
	Color             bool
	LogLevel          string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	v.SetDefault(KeyHistoryMaxItems, 100)
	v.SetDefault(KeyRunnerConcurrency, 4)
	v.SetDefault(KeyDecodeBasicAuth, false)
	v.SetDefault(KeyOutputColor, true)
	v.SetDefault(KeyLogLevel, "info")
}

// Load reads configFile (a missing file is not an error) and applies
// RESTFORGE_* environment overrides, e.g. RESTFORGE_HTTP_TIMEOUT=5s.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	settings := &Settings{
		HTTPTimeout:       v.GetDuration(KeyHTTPTimeout),
		HistoryMaxItems:   v.GetInt(KeyHistoryMaxItems),
		RunnerConcurrency: v.GetInt(KeyRunnerConcurrency),
		DecodeBasicAuth:   v.GetBool(KeyDecodeBasicAuth),
		Color:             v.GetBool(KeyOutputColor),
		LogLevel:          v.GetString(KeyLogLevel),
	}

	if settings.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid %s: must be positive", KeyHTTPTimeout)
	}
	if settings.HistoryMaxItems < 1 {
		return nil, fmt.Errorf("invalid %s: must be at least 1", KeyHistoryMaxItems)
	}
	if settings.RunnerConcurrency < 1 {
		settings.RunnerConcurrency = 1
	}

	return settings, nil
}

// LoadDotEnv loads variables from a .env file. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// NewLogger creates the diagnostic logger. verbose forces debug level.
func NewLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
