// Package request holds helpers for building and displaying request definitions.
package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/studiowebux/restforge/internal/ids"
	"github.com/studiowebux/restforge/internal/types"
)

// DefaultName is the name of a request created from scratch
const DefaultName = "New Request"

// NewEmptyRequest creates a GET request with no body and no auth.
// TLS verification and redirect defaults come from settings when provided.
func NewEmptyRequest(gen ids.Generator, settings *types.AppSettings) *types.RequestConfig {
	defaults := types.DefaultSettings()
	if settings != nil {
		defaults = *settings
	}

	return &types.RequestConfig{
		ID:              ids.OrDefault(gen).NewID(),
		Name:            DefaultName,
		Method:          types.MethodGet,
		Headers:         []types.KeyValuePair{},
		QueryParams:     []types.KeyValuePair{},
		BodyType:        types.BodyNone,
		Auth:            types.AuthConfig{Type: types.AuthNone},
		SSLVerify:       defaults.SSLVerifyDefault,
		FollowRedirects: defaults.FollowRedirectsDefault,
	}
}

// NewKeyValuePair creates a pair with a fresh id
func NewKeyValuePair(gen ids.Generator, key, value string, enabled bool) types.KeyValuePair {
	return types.KeyValuePair{
		ID:      ids.OrDefault(gen).NewID(),
		Key:     key,
		Value:   value,
		Enabled: enabled,
	}
}

// ReplaceVariables substitutes {{key}} with the value of each enabled variable, in order
func ReplaceVariables(text string, vars []types.KeyValuePair) string {
	for _, v := range vars {
		if !v.Enabled || v.Key == "" {
			continue
		}
		text = strings.ReplaceAll(text, "{{"+v.Key+"}}", v.Value)
	}
	return text
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes formats a byte count with a binary unit, rounded to two decimals
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}

	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}

	value := math.Round(float64(n)/math.Pow(1024, float64(i))*100) / 100
	return fmt.Sprintf("%s %s", formatFloat(value), sizeUnits[i])
}

// formatFloat drops trailing zeros the way a JavaScript number prints
func formatFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatTime formats a duration in milliseconds
func FormatTime(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", int64(math.Round(ms)))
	}
	return fmt.Sprintf("%.2fs", ms/1000)
}

// TryFormatJSON indents text when it is valid JSON and returns it unchanged otherwise
func TryFormatJSON(text string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(text), "", "  "); err != nil {
		return text
	}
	return buf.String()
}

// IsValidJSON reports whether text parses as JSON
func IsValidJSON(text string) bool {
	return json.Valid([]byte(text))
}

// Status classes returned by StatusClass
const (
	StatusSuccess     = "success"
	StatusRedirect    = "redirect"
	StatusClientError = "client-error"
	StatusServerError = "server-error"
	StatusUnknown     = "unknown"
)

// StatusClass buckets an HTTP status code for display
func StatusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return StatusSuccess
	case status >= 300 && status < 400:
		return StatusRedirect
	case status >= 400 && status < 500:
		return StatusClientError
	case status >= 500:
		return StatusServerError
	default:
		return StatusUnknown
	}
}
