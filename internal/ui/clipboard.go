package ui

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when no clipboard utility is installed
var ErrClipboardUnavailable = errors.New("clipboard is not available on this system")

// Clipboard copies text for the user to paste elsewhere
type Clipboard interface {
	Copy(text string) error
}

// SystemClipboard uses the platform clipboard
type SystemClipboard struct{}

// Copy writes text to the system clipboard
func (SystemClipboard) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

// MemoryClipboard keeps the last copied text; used when no terminal is attached
type MemoryClipboard struct {
	Text string
}

// Copy stores text
func (c *MemoryClipboard) Copy(text string) error {
	c.Text = text
	return nil
}

// NoopClipboard discards copied text
type NoopClipboard struct{}

// Copy does nothing
func (NoopClipboard) Copy(string) error {
	return nil
}
