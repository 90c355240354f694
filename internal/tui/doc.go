/*
Package tui implements the terminal cURL dialog.

# Architecture

The dialog follows the Bubble Tea Model-Update-View pattern:
  - dialog.go: Model, key handling and rendering
  - styles.go: colors and lipgloss styles
  - clipboard.go: clipboard access behind an interface

# Modes

Import mode holds a textarea where a cURL command is typed or pasted.
ctrl+s validates the text, parses it and hands the resulting request to the
caller. A rejected or unparsable command keeps the typed text and shows an
error in the status line.

Export mode shows the cURL command generated from the current request.
c copies it to the clipboard and d writes it to the export file.

tab switches modes when a request is available to export.
*/
package tui
