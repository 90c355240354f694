package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// FileName is the keybinding file looked up in the configuration directory
const FileName = "keybinds.json"

// Config is the user's keybinding file. Each section maps an action to a
// comma-separated list of keys, e.g. {"import": {"paste": "ctrl+v,ctrl+y"}}.
// Comments and trailing commas are allowed.
type Config struct {
	Version string            `json:"version,omitempty"`
	Global  map[string]string `json:"global,omitempty"`
	Import  map[string]string `json:"import,omitempty"`
	Export  map[string]string `json:"export,omitempty"`
}

// LoadConfig reads a keybinding file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", FileName, err)
	}
	return &config, nil
}

// ApplyConfig replaces the default keys of every action named in config
func ApplyConfig(registry *Registry, config *Config) error {
	sections := map[Context]map[string]string{
		ContextGlobal: config.Global,
		ContextImport: config.Import,
		ContextExport: config.Export,
	}

	for _, context := range Contexts {
		for actionName, keyList := range sections[context] {
			action := Action(actionName)
			if !IsKnown(context, action) {
				return fmt.Errorf("unknown action %q in %s section", actionName, context)
			}

			keys := splitKeys(keyList)
			if len(keys) == 0 {
				return fmt.Errorf("no keys given for %s.%s", context, actionName)
			}
			registry.Unbind(context, action)
			registry.RegisterMultiple(context, keys, action)
		}
	}
	return nil
}

// LoadOrDefault returns the default registry with the file at dir/keybinds.json
// applied on top. A missing file yields the defaults.
func LoadOrDefault(dir string) (*Registry, error) {
	registry := NewDefaultRegistry()
	if dir == "" {
		return registry, nil
	}

	config, err := LoadConfig(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return registry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", FileName, err)
	}

	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}

	if result := NewValidator().ValidateRegistry(registry); result.HasErrors() {
		return nil, fmt.Errorf("invalid keybindings:\n%s", result.String())
	}
	return registry, nil
}

func splitKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
