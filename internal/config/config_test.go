package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitializeAt(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")

	if err := InitializeAt(dir); err != nil {
		t.Fatalf("InitializeAt failed: %v", err)
	}

	if DatabasePath != filepath.Join(dir, "restforge.db") {
		t.Errorf("Unexpected database path %s", DatabasePath)
	}
	if _, err := os.Stat(ExportsDir); err != nil {
		t.Errorf("Expected exports dir to exist: %v", err)
	}

	data, err := os.ReadFile(ConfigFile)
	if err != nil {
		t.Fatalf("Expected config file: %v", err)
	}
	if string(data) != DefaultConfigYAML {
		t.Error("Expected default config content")
	}

	// existing config is not overwritten
	os.WriteFile(ConfigFile, []byte("http:\n  timeout: 5s\n"), FilePermissions)
	if err := InitializeAt(dir); err != nil {
		t.Fatalf("Second InitializeAt failed: %v", err)
	}
	data, _ = os.ReadFile(ConfigFile)
	if !strings.Contains(string(data), "5s") {
		t.Error("Expected existing config to be kept")
	}
}

func TestInitialize_HomeEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if ConfigDir != dir {
		t.Errorf("Expected config dir %s, got %s", dir, ConfigDir)
	}
}

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if settings.HTTPTimeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", settings.HTTPTimeout)
	}
	if settings.HistoryMaxItems != 100 {
		t.Errorf("Expected 100 history items, got %d", settings.HistoryMaxItems)
	}
	if settings.RunnerConcurrency != 4 {
		t.Errorf("Expected concurrency 4, got %d", settings.RunnerConcurrency)
	}
	if settings.DecodeBasicAuth {
		t.Error("Expected basic auth decoding off by default")
	}
	if !settings.Color {
		t.Error("Expected color on by default")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "http:\n  timeout: 5s\ncurl:\n  decode_basic_auth: true\nrunner:\n  concurrency: 8\n"
	if err := os.WriteFile(path, []byte(content), FilePermissions); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESTFORGE_RUNNER_CONCURRENCY", "2")

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if settings.HTTPTimeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", settings.HTTPTimeout)
	}
	if !settings.DecodeBasicAuth {
		t.Error("Expected decode_basic_auth from file")
	}
	if settings.RunnerConcurrency != 2 {
		t.Errorf("Expected env override 2, got %d", settings.RunnerConcurrency)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("history:\n  max_items: 0\n"), FilePermissions)

	if _, err := Load(path); err == nil {
		t.Error("Expected error for max_items 0")
	}

	os.WriteFile(path, []byte("http: [unclosed\n"), FilePermissions)
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("Expected missing .env to be ignored, got %v", err)
	}

	path := filepath.Join(dir, ".env")
	os.WriteFile(path, []byte("RESTFORGE_TEST_DOTENV=loaded\n"), FilePermissions)
	t.Setenv("RESTFORGE_TEST_DOTENV", "")
	os.Unsetenv("RESTFORGE_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("RESTFORGE_TEST_DOTENV"); got != "loaded" {
		t.Errorf("Expected loaded, got %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(&buf, "info", false)
	logger.Debug("hidden")
	logger.Info("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected debug message to be filtered at info level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("Unexpected log output: %s", out)
	}

	buf.Reset()
	NewLogger(&buf, "error", true).Debug("verbose")
	if !strings.Contains(buf.String(), "verbose") {
		t.Error("Expected verbose to force debug level")
	}
}
