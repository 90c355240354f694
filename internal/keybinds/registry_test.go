package keybinds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name    string
		context Context
		key     string
		want    Action
		found   bool
	}{
		{"import action", ContextImport, "ctrl+s", ActionImport, true},
		{"export action", ContextExport, "y", ActionCopy, true},
		{"global fallback", ContextExport, "esc", ActionCloseModal, true},
		{"global from import", ContextImport, "tab", ActionSwitchMode, true},
		{"not bound in import", ContextImport, "c", "", false},
		{"unknown key", ContextExport, "z", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			if ok != tt.found || got != tt.want {
				t.Errorf("Match(%s, %q) = %q, %v, expected %q, %v", tt.context, tt.key, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestRegistry_GetBindingString(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.GetBindingString(ContextExport, ActionDownload); got != "d/s" {
		t.Errorf("Expected 'd/s', got %q", got)
	}
	if got := r.GetBindingString(ContextImport, ActionCloseModal); got != "esc" {
		t.Errorf("Expected global fallback 'esc', got %q", got)
	}
	if got := r.GetBindingString(ContextImport, ActionCopy); got != "unbound" {
		t.Errorf("Expected 'unbound', got %q", got)
	}
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	r := NewDefaultRegistry()
	clone := r.Clone()
	clone.Register(ContextExport, "x", ActionCopy)

	if _, ok := r.Match(ContextExport, "x"); ok {
		t.Error("Expected original registry to be unchanged")
	}
}

func TestRegistry_ListBindings(t *testing.T) {
	bindings := NewDefaultRegistry().ListBindings(ContextExport)
	if len(bindings) == 0 {
		t.Fatal("Expected bindings")
	}
	if bindings[0].Context != ContextExport {
		t.Errorf("Expected context bindings first, got %s", bindings[0].Context)
	}
	if last := bindings[len(bindings)-1]; last.Context != ContextGlobal {
		t.Errorf("Expected global bindings last, got %s", last.Context)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return dir
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		r, err := LoadOrDefault(t.TempDir())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if a, _ := r.Match(ContextImport, "ctrl+s"); a != ActionImport {
			t.Errorf("Expected default binding, got %q", a)
		}
	})

	t.Run("override replaces defaults", func(t *testing.T) {
		dir := writeConfig(t, `{
			// rebinding
			"export": {"download": "w, W"},
		}`)
		r, err := LoadOrDefault(dir)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if a, _ := r.Match(ContextExport, "W"); a != ActionDownload {
			t.Errorf("Expected W to download, got %q", a)
		}
		if _, ok := r.Match(ContextExport, "d"); ok {
			t.Error("Expected default key d to be unbound")
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		dir := writeConfig(t, `{"import": {"copy": "c"}}`)
		if _, err := LoadOrDefault(dir); err == nil || !strings.Contains(err.Error(), "unknown action") {
			t.Errorf("Expected unknown action error, got %v", err)
		}
	})

	t.Run("reserved key", func(t *testing.T) {
		dir := writeConfig(t, `{"import": {"paste": "ctrl+c"}}`)
		if _, err := LoadOrDefault(dir); err == nil || !strings.Contains(err.Error(), "reserved") {
			t.Errorf("Expected reserved key error, got %v", err)
		}
	})

	t.Run("close key lost", func(t *testing.T) {
		dir := writeConfig(t, `{"global": {"switch_mode": "esc"}}`)
		if _, err := LoadOrDefault(dir); err == nil {
			t.Error("Expected error when no key closes the dialog")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		dir := writeConfig(t, `{"import": `)
		if _, err := LoadOrDefault(dir); err == nil {
			t.Error("Expected parse error")
		}
	})
}

func TestValidator_Shadowing(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(ContextExport, "tab", ActionCopy)

	result := NewValidator().ValidateRegistry(r)
	if result.HasErrors() {
		t.Errorf("Unexpected errors: %s", result.String())
	}
	if !result.HasWarnings() || result.Warnings[0].Key != "tab" {
		t.Errorf("Expected shadowing warning for tab, got %s", result.String())
	}
}

func TestValidationResult_StringEmpty(t *testing.T) {
	if got := (&ValidationResult{}).String(); got != "No issues found" {
		t.Errorf("Expected 'No issues found', got %q", got)
	}
}
