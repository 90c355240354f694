package curl

import (
	"regexp"
	"strings"
)

// continuationPattern matches a backslash line continuation and the whitespace around it
var continuationPattern = regexp.MustCompile(`\\\s*\n\s*`)

// plausibleSignals are the literal tokens that mark text as a likely cURL command
var plausibleSignals = []string{"http", "-X ", "--request ", "-H ", "--header ", "--url "}

// IsValidCurlCommand reports whether command looks like a cURL command.
// The check is deliberately permissive: Parse is the real gate.
func IsValidCurlCommand(command string) bool {
	trimmed := strings.TrimSpace(continuationPattern.ReplaceAllString(strings.TrimSpace(command), " "))

	if strings.HasPrefix(strings.ToLower(trimmed), "curl") {
		return true
	}

	for _, signal := range plausibleSignals {
		if strings.Contains(trimmed, signal) {
			return true
		}
	}

	return false
}

// IsPlausible is the dialog-facing name for IsValidCurlCommand
func IsPlausible(text string) bool {
	return IsValidCurlCommand(text)
}
