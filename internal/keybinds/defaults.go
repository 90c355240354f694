package keybinds

// NewDefaultRegistry creates a registry with the default dialog keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextGlobal, "esc", ActionCloseModal)
	r.RegisterMultiple(ContextGlobal, []string{"tab", "shift+tab"}, ActionSwitchMode)

	r.Register(ContextImport, "ctrl+s", ActionImport)
	r.RegisterMultiple(ContextImport, []string{"ctrl+v", "shift+insert", "super+v"}, ActionPaste)
	r.Register(ContextImport, "ctrl+k", ActionClear)

	r.RegisterMultiple(ContextExport, []string{"c", "y"}, ActionCopy)
	r.RegisterMultiple(ContextExport, []string{"d", "s"}, ActionDownload)
	r.Register(ContextExport, "q", ActionQuit)

	return r
}
