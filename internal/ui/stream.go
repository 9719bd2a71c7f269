package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// ExecutionStats holds statistics about a generation run
type ExecutionStats struct {
	StartTime        time.Time
	EndTime          time.Time
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Attempts         int
}

// Duration returns the execution duration
func (s *ExecutionStats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// StreamPrinterOption is a functional option for StreamPrinter
type StreamPrinterOption func(*StreamPrinter)

// WithColor enables or disables color output
func WithColor(enabled bool) StreamPrinterOption {
	return func(p *StreamPrinter) {
		p.colorEnabled = enabled
	}
}

// WithVerbose enables or disables verbose mode
func WithVerbose(verbose bool) StreamPrinterOption {
	return func(p *StreamPrinter) {
		p.verbose = verbose
	}
}

// StreamPrinter handles streaming output to the terminal
type StreamPrinter struct {
	writer       io.Writer
	colorEnabled bool
	verbose      bool
}

// NewStreamPrinter creates a new StreamPrinter
func NewStreamPrinter(writer io.Writer, opts ...StreamPrinterOption) *StreamPrinter {
	p := &StreamPrinter{
		writer:       writer,
		colorEnabled: true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Verbose reports whether verbose output is enabled
func (p *StreamPrinter) Verbose() bool {
	return p.verbose
}

func (p *StreamPrinter) printf(attr color.Attribute, format string, args ...interface{}) error {
	if p.colorEnabled {
		_, err := color.New(attr).Fprintf(p.writer, format, args...)
		return err
	}
	_, err := fmt.Fprintf(p.writer, format, args...)
	return err
}

// Flusher is an interface for writers that support flushing
type Flusher interface {
	Flush() error
}

func (p *StreamPrinter) flush() {
	if f, ok := p.writer.(Flusher); ok {
		_ = f.Flush()
	}
}

// PrintToolCall prints information about a tool being called
func (p *StreamPrinter) PrintToolCall(name string) error {
	return p.printf(color.FgCyan, "\n🔧 Calling tool: %s\n", name)
}

// PrintProgress prints a progress message
func (p *StreamPrinter) PrintProgress(message string) error {
	return p.printf(color.FgYellow, "⏳ %s\n", message)
}

// PrintInfo prints an info message
func (p *StreamPrinter) PrintInfo(message string) error {
	return p.printf(color.FgCyan, "ℹ️  %s\n", message)
}

// PrintWarning prints a warning message
func (p *StreamPrinter) PrintWarning(message string) error {
	return p.printf(color.FgYellow, "⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func (p *StreamPrinter) PrintSuccess(message string) error {
	return p.printf(color.FgGreen, "✅ %s\n", message)
}

// PrintError prints an error message
func (p *StreamPrinter) PrintError(message string) error {
	return p.printf(color.FgRed, "❌ Error: %s\n", message)
}

// PrintRetry reports a failed attempt that will be retried
func (p *StreamPrinter) PrintRetry(attempt int, err error, backoff time.Duration) error {
	return p.printf(color.FgYellow, "\n🔁 Attempt %d failed (%v), retrying in %s\n", attempt, err, formatDuration(backoff))
}

// PrintLLMContent prints streamed model content and flushes the writer when possible
func (p *StreamPrinter) PrintLLMContent(content string) error {
	err := p.printf(color.FgWhite, "%s", content)
	p.flush()
	return err
}

// PrintToolArgStart prints the start of tool arguments display
func (p *StreamPrinter) PrintToolArgStart() error {
	return p.printf(color.FgHiBlack, "   └─ ")
}

// PrintToolArgChunk prints a chunk of tool call arguments as it streams in
func (p *StreamPrinter) PrintToolArgChunk(chunk string) error {
	err := p.printf(color.FgHiBlack, "%s", chunk)
	p.flush()
	return err
}

// PrintToolArgEnd prints the end of tool arguments display
func (p *StreamPrinter) PrintToolArgEnd() error {
	return p.Newline()
}

// PrintStats prints execution statistics
func (p *StreamPrinter) PrintStats(stats *ExecutionStats) error {
	if stats == nil {
		return nil
	}

	return p.printf(color.FgHiBlack, "\n📊 Stats: %d tokens (prompt: %d, completion: %d) | Attempts: %d | Time: %s\n",
		stats.TotalTokens, stats.PromptTokens, stats.CompletionTokens, stats.Attempts, formatDuration(stats.Duration()))
}

// Newline prints a newline
func (p *StreamPrinter) Newline() error {
	_, err := fmt.Fprintln(p.writer)
	return err
}

// formatDuration formats a duration in a human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
