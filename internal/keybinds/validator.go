package keybinds

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a keybinding validation error
type ValidationError struct {
	Type    string // "conflict", "reserved", "warning"
	Context Context
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s in context '%s': %s", e.Type, e.Key, e.Context, e.Message)
}

// ValidationResult contains all validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of validation results
func (r *ValidationResult) String() string {
	var sb strings.Builder

	if len(r.Errors) > 0 {
		fmt.Fprintf(&sb, "Errors (%d):\n", len(r.Errors))
		for _, err := range r.Errors {
			fmt.Fprintf(&sb, "  - %s\n", err.Error())
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&sb, "Warnings (%d):\n", len(r.Warnings))
		for _, warn := range r.Warnings {
			fmt.Fprintf(&sb, "  - %s\n", warn.Error())
		}
	}

	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}

	return sb.String()
}

// Validator checks a registry for unusable bindings
type Validator struct {
	// reservedKeys must keep their default action
	reservedKeys map[string]Action
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	return &Validator{
		reservedKeys: map[string]Action{
			"ctrl+c": ActionQuitForce,
		},
	}
}

// ValidateRegistry validates an entire registry
func (v *Validator) ValidateRegistry(registry *Registry) *ValidationResult {
	result := &ValidationResult{}

	v.checkReservedKeys(registry, result)
	v.checkRequiredActions(registry, result)
	v.checkShadowing(registry, result)

	return result
}

// checkReservedKeys reports reserved keys rebound to another action
func (v *Validator) checkReservedKeys(registry *Registry, result *ValidationResult) {
	for _, context := range Contexts {
		for key, want := range v.reservedKeys {
			action, ok := registry.bindings[context][key]
			if ok && action != want {
				result.Errors = append(result.Errors, ValidationError{
					Type:    "reserved",
					Context: context,
					Key:     key,
					Message: fmt.Sprintf("reserved for %s, cannot be bound to %s", want, action),
				})
			}
		}
	}
}

// checkRequiredActions reports dialog modes that could not be left
func (v *Validator) checkRequiredActions(registry *Registry, result *ValidationResult) {
	for _, context := range []Context{ContextImport, ContextExport} {
		if len(registry.GetBinding(context, ActionCloseModal)) == 0 {
			result.Errors = append(result.Errors, ValidationError{
				Type:    "conflict",
				Context: context,
				Message: "no key closes the dialog",
			})
		}
	}
}

// checkShadowing warns when a mode binding hides a global one
func (v *Validator) checkShadowing(registry *Registry, result *ValidationResult) {
	for _, context := range []Context{ContextImport, ContextExport} {
		var keys []string
		for key := range registry.bindings[context] {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			global, ok := registry.bindings[ContextGlobal][key]
			if !ok || global == registry.bindings[context][key] {
				continue
			}
			result.Warnings = append(result.Warnings, ValidationError{
				Type:    "warning",
				Context: context,
				Key:     key,
				Message: fmt.Sprintf("shadows global binding for %s", global),
			})
		}
	}
}
