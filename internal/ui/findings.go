package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/huimingz/commitguard/internal/secrets"
)

// MaskSecret keeps a short prefix of a matched secret so it can be recognized
// without being disclosed again.
func MaskSecret(s string) string {
	runes := []rune(s)
	if len(runes) <= 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:4]) + strings.Repeat("*", 8)
}

// LineOf returns the 1-based line of a byte offset in text
func LineOf(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	return strings.Count(text[:offset], "\n") + 1
}

// ShowFindings lists matches found in text with masked excerpts
func ShowFindings(source, text string, matches []secrets.Match, output io.Writer) error {
	if len(matches) == 0 {
		green := color.New(color.FgGreen)
		_, err := green.Fprintf(output, "✅ No secrets found in %s\n", source)
		return err
	}

	red := color.New(color.FgRed, color.Bold)
	dim := color.New(color.FgHiBlack)

	if _, err := red.Fprintf(output, "🔒 %d potential secret(s) in %s\n", len(matches), source); err != nil {
		return err
	}
	for _, m := range matches {
		if _, err := fmt.Fprintf(output, "  line %-5d %-32s ", LineOf(text, m.Start), m.RuleID); err != nil {
			return err
		}
		if _, err := dim.Fprintln(output, MaskSecret(m.Text)); err != nil {
			return err
		}
	}
	return nil
}
