// Package jsonview formats response bodies for terminal display.
package jsonview

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/studiowebux/restforge/internal/request"
)

const (
	// DefaultStyle is the chroma style used when none is configured
	DefaultStyle = "monokai"
	// DefaultFormatter targets 256-color terminals
	DefaultFormatter = "terminal256"
)

// Highlighter colors text with chroma
type Highlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
}

// NewHighlighter returns a highlighter for the named style, falling back to DefaultStyle
func NewHighlighter(styleName string) *Highlighter {
	style := styles.Get(styleName)
	if styleName == "" || style == styles.Fallback {
		style = styles.Get(DefaultStyle)
	}
	return &Highlighter{
		style:     style,
		formatter: formatters.Get(DefaultFormatter),
	}
}

// Highlight colors source with the lexer for contentType. Unknown content types
// are analysed from the source, and plain text is returned unchanged.
func (h *Highlighter) Highlight(source, contentType string) (string, error) {
	lexer := lexerFor(source, contentType)
	if lexer == nil {
		return source, nil
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise body: %w", err)
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", fmt.Errorf("failed to format body: %w", err)
	}
	return buf.String(), nil
}

// Render pretty-prints JSON bodies and optionally colors the result
func (h *Highlighter) Render(body, contentType string, color bool) string {
	if isJSON(contentType) || (contentType == "" && request.IsValidJSON(body)) {
		body = request.TryFormatJSON(body)
		contentType = "application/json"
	}
	if !color {
		return body
	}

	out, err := h.Highlight(body, contentType)
	if err != nil {
		return body
	}
	return out
}

func lexerFor(source, contentType string) chroma.Lexer {
	if mediaType := mediaTypeOf(contentType); mediaType != "" {
		if isJSON(mediaType) {
			return lexers.Get("json")
		}
		if l := lexers.MatchMimeType(mediaType); l != nil {
			return l
		}
	}
	return lexers.Analyse(source)
}

func mediaTypeOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

func isJSON(contentType string) bool {
	mediaType := mediaTypeOf(contentType)
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
