package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restforge/internal/jsonview"
	"github.com/studiowebux/restforge/internal/request"
	"github.com/studiowebux/restforge/internal/types"
)

// Output formats accepted by -o
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatBody = "body"
)

var (
	successStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	redirectStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	subtleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// FormatOptions controls response rendering
type FormatOptions struct {
	Format      string
	ShowFull    bool
	Color       bool
	Highlighter *jsonview.Highlighter
}

// FormatResponse renders resp in the requested format
func FormatResponse(resp *types.ResponseData, opts FormatOptions) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response to format")
	}

	switch opts.Format {
	case FormatJSON, FormatYAML:
		return FormatValue(resp, opts.Format)

	case FormatBody:
		return resp.Body, nil

	case FormatText, "":
		return formatText(resp, opts), nil

	default:
		return "", fmt.Errorf("unknown output format: %s (expected text, json, yaml or body)", opts.Format)
	}
}

// FormatValue encodes v as indented JSON or YAML
func FormatValue(v any, format string) (string, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return string(data), nil
	case FormatJSON, "":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(data) + "\n", nil
	default:
		return "", fmt.Errorf("unknown output format: %s (expected json or yaml)", format)
	}
}

func formatText(resp *types.ResponseData, opts FormatOptions) string {
	render := func(style lipgloss.Style, s string) string {
		if !opts.Color {
			return s
		}
		return style.Render(s)
	}

	var sb strings.Builder

	status := fmt.Sprintf("%d %s", resp.Status, resp.StatusText)
	sb.WriteString(render(statusStyle(resp.Status), status))
	sb.WriteString("\n")
	sb.WriteString(render(subtleStyle, fmt.Sprintf("Duration: %s | Size: %s",
		request.FormatTime(resp.Time), request.FormatBytes(resp.Size))))
	sb.WriteString("\n")

	if opts.ShowFull && len(resp.Headers) > 0 {
		sb.WriteString("\nHeaders:\n")
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", render(headerKeyStyle, k), resp.Headers[k]))
		}
	}

	if resp.Body != "" {
		if opts.ShowFull {
			sb.WriteString("\nBody:\n")
		} else {
			sb.WriteString("\n")
		}

		body := resp.Body
		if opts.Highlighter != nil {
			body = opts.Highlighter.Render(body, contentType(resp.Headers), opts.Color)
		}
		sb.WriteString(body)
		sb.WriteString("\n")
	}

	return sb.String()
}

func statusStyle(status int) lipgloss.Style {
	switch request.StatusClass(status) {
	case request.StatusSuccess:
		return successStyle
	case request.StatusRedirect:
		return redirectStyle
	default:
		return errorStyle
	}
}

func contentType(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "Content-Type") {
			return v
		}
	}
	return ""
}
