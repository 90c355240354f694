package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/restforge/internal/config"
	"github.com/studiowebux/restforge/internal/converter"
	"github.com/studiowebux/restforge/internal/curl"
	"github.com/studiowebux/restforge/internal/keybinds"
	"github.com/studiowebux/restforge/internal/types"
)

// Mode is the active dialog tab
type Mode int

const (
	ModeImport Mode = iota
	ModeExport
)

// User-facing messages
const (
	MsgNotCurl     = "This doesn't look like a cURL command"
	MsgParseFailed = "Failed to parse cURL command, check the format"
	MsgNoRequest   = "No request to export"
	MsgEmptyInput  = "Paste a cURL command first"
)

// DefaultExportFile is used when no export path is configured
const DefaultExportFile = "request.curl"

// Options configures the dialog
type Options struct {
	Mode Mode
	// Source is the request shown in export mode
	Source *types.RequestConfig
	Parser *curl.Parser
	// Clipboard defaults to the system clipboard
	Clipboard Clipboard
	// ExportPath is where the download action writes the generated command
	ExportPath string
	// Keys defaults to keybinds.NewDefaultRegistry
	Keys *keybinds.Registry
	// OnImport receives a successfully parsed request. Returning an error keeps the dialog open.
	OnImport func(*types.RequestConfig) error
}

type statusMsg struct {
	text    string
	isError bool
}

// Model is the cURL dialog state
type Model struct {
	mode       Mode
	input      textarea.Model
	preview    viewport.Model
	parser     *curl.Parser
	clipboard  Clipboard
	source     *types.RequestConfig
	command    string
	exportPath string
	onImport   func(*types.RequestConfig) error
	keys       *keybinds.Registry

	imported *types.RequestConfig
	status   string
	isError  bool
	width    int
	height   int
	quitting bool
}

// New creates the dialog model
func New(opts Options) Model {
	input := textarea.New()
	input.Placeholder = "curl -X POST 'https://api.example.com/users' -H 'Content-Type: application/json' -d '{\"name\":\"ada\"}'"
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetWidth(80)
	input.SetHeight(8)

	m := Model{
		mode:       opts.Mode,
		input:      input,
		preview:    viewport.New(80, 8),
		parser:     opts.Parser,
		clipboard:  opts.Clipboard,
		source:     opts.Source,
		exportPath: opts.ExportPath,
		onImport:   opts.OnImport,
		keys:       opts.Keys,
	}
	if m.keys == nil {
		m.keys = keybinds.NewDefaultRegistry()
	}
	if m.parser == nil {
		m.parser = curl.NewParser()
	}
	if m.clipboard == nil {
		m.clipboard = SystemClipboard{}
	}
	if m.exportPath == "" {
		m.exportPath = DefaultExportFile
	}
	if m.source != nil {
		m.command = curl.Generate(m.source)
		m.preview.SetContent(m.command)
	}
	if m.mode == ModeExport && m.source == nil {
		m.mode = ModeImport
		m.status, m.isError = MsgNoRequest, true
	}
	if m.mode == ModeImport {
		m.input.Focus()
	}
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case statusMsg:
		m.status, m.isError = msg.text, msg.isError
		return m, nil

	case tea.KeyMsg:
		action, _ := m.keys.Match(m.context(), msg.String())
		switch action {
		case keybinds.ActionQuitForce, keybinds.ActionCloseModal:
			m.quitting = true
			return m, tea.Quit
		case keybinds.ActionSwitchMode:
			m.switchMode()
			return m, nil
		}

		if m.mode == ModeExport {
			return m.handleExportKeys(action, msg)
		}
		return m.handleImportKeys(action, msg)
	}

	var cmd tea.Cmd
	if m.mode == ModeImport {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.preview, cmd = m.preview.Update(msg)
	}
	return m, cmd
}

func (m Model) context() keybinds.Context {
	if m.mode == ModeExport {
		return keybinds.ContextExport
	}
	return keybinds.ContextImport
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	w := max(MinDialogWidth, width-DialogWidthMargin)
	h := max(3, height-DialogHeightOffset)
	m.input.SetWidth(w - 4)
	m.input.SetHeight(h)
	m.preview.Width = w - 4
	m.preview.Height = h
}

func (m *Model) switchMode() {
	if m.mode == ModeImport {
		if m.source == nil {
			m.status, m.isError = MsgNoRequest, true
			return
		}
		m.mode = ModeExport
		m.input.Blur()
	} else {
		m.mode = ModeImport
		m.input.Focus()
	}
	m.status, m.isError = "", false
}

func (m Model) handleImportKeys(action keybinds.Action, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch action {
	case keybinds.ActionImport:
		return m.importCommand()

	case keybinds.ActionPaste:
		if text, err := m.clipboard.ReadAll(); err == nil {
			m.input.InsertString(text)
		} else {
			m.status, m.isError = fmt.Sprintf("Failed to read clipboard: %v", err), true
		}
		return m, nil

	case keybinds.ActionClear:
		m.input.Reset()
		m.status, m.isError = "", false
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// importCommand validates and parses the input. The typed text is kept on failure.
func (m Model) importCommand() (tea.Model, tea.Cmd) {
	text := m.input.Value()

	if strings.TrimSpace(text) == "" {
		m.status, m.isError = MsgEmptyInput, true
		return m, nil
	}
	if !curl.IsValidCurlCommand(text) {
		m.status, m.isError = MsgNotCurl, true
		return m, nil
	}

	cfg, err := m.parser.Parse(text)
	if err != nil {
		m.status, m.isError = MsgParseFailed, true
		return m, nil
	}

	if m.onImport != nil {
		if err := m.onImport(cfg); err != nil {
			m.status, m.isError = fmt.Sprintf("Failed to import request: %v", err), true
			return m, nil
		}
	}

	m.imported = cfg
	m.quitting = true
	return m, tea.Quit
}

func (m Model) handleExportKeys(action keybinds.Action, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch action {
	case keybinds.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case keybinds.ActionCopy:
		return m, m.copyCommand()
	case keybinds.ActionDownload:
		return m, m.downloadCommand()
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

// copyCommand copies the generated command to the clipboard
func (m Model) copyCommand() tea.Cmd {
	command, cb := m.command, m.clipboard
	return func() tea.Msg {
		if err := cb.WriteAll(command); err != nil {
			return statusMsg{text: fmt.Sprintf("Failed to copy to clipboard: %v", err), isError: true}
		}
		return statusMsg{text: "Copied to clipboard"}
	}
}

// downloadCommand writes the generated command to the export path
func (m Model) downloadCommand() tea.Cmd {
	command, path := m.command, m.exportPath
	return func() tea.Msg {
		if err := converter.EnsureOutputDir(path); err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		if err := os.WriteFile(path, []byte(command+"\n"), config.FilePermissions); err != nil {
			return statusMsg{text: fmt.Sprintf("Failed to write file: %v", err), isError: true}
		}
		return statusMsg{text: "Saved to " + path}
	}
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(styleTitle.Render("cURL"))
	sb.WriteString("\n\n")
	sb.WriteString(m.renderTabs())
	sb.WriteString("\n\n")

	if m.mode == ModeImport {
		sb.WriteString(m.input.View())
	} else {
		sb.WriteString(m.preview.View())
	}
	sb.WriteString("\n\n")

	if m.status != "" {
		style := styleSuccess
		if m.isError {
			style = styleError
		}
		sb.WriteString(style.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString(styleSubtle.Render(m.footer()))

	box := styleBox
	if m.width > 0 {
		box = box.Width(max(MinDialogWidth, m.width-DialogWidthMargin))
	}
	return box.Render(sb.String())
}

func (m Model) renderTabs() string {
	importTab, exportTab := styleTabInactive, styleTabInactive
	if m.mode == ModeImport {
		importTab = styleTabActive
	} else {
		exportTab = styleTabActive
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		importTab.Render("Import"),
		"   ",
		exportTab.Render("Export"),
	)
}

func (m Model) footer() string {
	ctx := m.context()
	hint := func(action keybinds.Action, label string) string {
		return m.keys.GetBindingString(ctx, action) + ": " + label
	}

	if m.mode == ModeImport {
		return strings.Join([]string{
			hint(keybinds.ActionImport, "import"),
			hint(keybinds.ActionPaste, "paste"),
			hint(keybinds.ActionClear, "clear"),
			hint(keybinds.ActionSwitchMode, "export"),
			hint(keybinds.ActionCloseModal, "close"),
		}, " • ")
	}
	return strings.Join([]string{
		hint(keybinds.ActionCopy, "copy"),
		hint(keybinds.ActionDownload, "save to "+m.exportPath),
		hint(keybinds.ActionSwitchMode, "import"),
		hint(keybinds.ActionCloseModal, "close"),
	}, " • ")
}

// Imported returns the request parsed in import mode, nil when the dialog was closed
func (m Model) Imported() *types.RequestConfig {
	return m.imported
}

// Status returns the current status line and whether it reports an error
func (m Model) Status() (string, bool) {
	return m.status, m.isError
}

// Run opens the dialog and returns the imported request, if any
func Run(opts Options) (*types.RequestConfig, error) {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run dialog: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, errors.New("unexpected dialog model")
	}
	return m.Imported(), nil
}
