package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal Context = "global" // Available in every dialog mode
	ContextImport Context = "import" // cURL import textarea
	ContextExport Context = "export" // cURL export preview
)

// Contexts lists every context in lookup-independent order
var Contexts = []Context{ContextGlobal, ContextImport, ContextExport}

const (
	// Global actions
	ActionQuitForce  Action = "quit_force"  // ctrl+c
	ActionCloseModal Action = "close_modal" // Close the dialog
	ActionSwitchMode Action = "switch_mode" // Toggle import/export

	// Import actions
	ActionImport Action = "import" // Parse the pasted command
	ActionPaste  Action = "paste"  // Insert clipboard contents
	ActionClear  Action = "clear"  // Clear the textarea

	// Export actions
	ActionCopy     Action = "copy"     // Copy the command to the clipboard
	ActionDownload Action = "download" // Write the command to the export file
	ActionQuit     Action = "quit"     // Close from the preview
)

// knownActions maps each context to the actions valid in it
var knownActions = map[Context][]Action{
	ContextGlobal: {ActionQuitForce, ActionCloseModal, ActionSwitchMode},
	ContextImport: {ActionImport, ActionPaste, ActionClear, ActionCloseModal, ActionSwitchMode},
	ContextExport: {ActionCopy, ActionDownload, ActionQuit, ActionCloseModal, ActionSwitchMode},
}

// IsKnown reports whether action can be bound in context
func IsKnown(context Context, action Action) bool {
	for _, a := range knownActions[context] {
		if a == action {
			return true
		}
	}
	return false
}
