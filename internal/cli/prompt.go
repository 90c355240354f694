package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/restforge/internal/types"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

// promptForVariable asks for the value of a variable on w and reads one line
func promptForVariable(r *bufio.Reader, w io.Writer, name string) (string, error) {
	fmt.Fprintf(w, "Enter value for '%s': ", name)
	value, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || value == "") {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// requestItem is one row of the request selector
type requestItem struct {
	name   string
	method string
	url    string
	index  int
}

func (i requestItem) FilterValue() string {
	return i.name + " " + i.url
}

func (i requestItem) Title() string {
	name := i.name
	if name == "" {
		name = i.url
	}
	return fmt.Sprintf("%-7s %s %s", i.method, name, subtleStyle.Render(i.url))
}

func (i requestItem) Description() string { return "" }

type selectorModel struct {
	list     list.Model
	choice   int
	quitting bool
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.choice = -1
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(requestItem); ok {
				m.choice = i.index
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • /: filter • enter: select • esc: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

func newSelector(requests []types.RequestConfig) selectorModel {
	items := make([]list.Item, 0, len(requests))
	for i, r := range requests {
		items = append(items, requestItem{
			name:   r.Name,
			method: r.EffectiveMethod(),
			url:    r.URL,
			index:  i,
		})
	}

	const defaultWidth = 80
	listHeight := min(len(items)+4, 14)

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = fmt.Sprintf("Select a request (%d)", len(items))
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return selectorModel{list: l, choice: -1}
}

// promptForRequest shows an interactive list and returns the chosen index
func promptForRequest(requests []types.RequestConfig) (int, error) {
	p := tea.NewProgram(newSelector(requests))
	finalModel, err := p.Run()
	if err != nil {
		return -1, fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(selectorModel)
	if result.choice < 0 {
		return -1, fmt.Errorf("selection cancelled")
	}
	return result.choice, nil
}

// itemDelegate renders one line per request
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(requestItem)
	if !ok {
		return
	}

	line := fmt.Sprintf("%d. %s", index+1, i.Title())
	if index == m.Index() {
		fmt.Fprint(w, selectedItemStyle.Render("> "+line))
		return
	}
	fmt.Fprint(w, itemStyle.Render(line))
}
