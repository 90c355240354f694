package tui

import "github.com/atotto/clipboard"

// Clipboard reads and writes the system clipboard
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// SystemClipboard uses the platform clipboard
type SystemClipboard struct{}

// ReadAll returns the clipboard text
func (SystemClipboard) ReadAll() (string, error) {
	return clipboard.ReadAll()
}

// WriteAll replaces the clipboard text
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}
