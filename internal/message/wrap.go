// Package message reflows and validates commit messages.
package message

import (
	"strings"
	"unicode/utf8"
)

// DefaultWidth is the maximum line length of a commit message
const DefaultWidth = 100

// BulletMarkers are the line prefixes that start a bullet item
var BulletMarkers = []string{"- ", "* ", "+ "}

// Wrap reflows message so that no line is longer than width runes, except a
// line holding a single word that is itself too long. A bare bullet marker
// inside a paragraph ("-", "*" or "+") stays on the line of the word before
// it, so a word followed by a run of markers counts as one word for this
// rule. Blank lines are kept
// one for one. Bullets keep their marker and indentation and wrap with a
// hanging indent. Wrapping already wrapped text returns it unchanged.
//
// A width of zero or less selects DefaultWidth.
func Wrap(message string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	if message == "" {
		return ""
	}

	var out []string
	var para []string

	flush := func() {
		if len(para) > 0 {
			out = append(out, wrapParagraph(para, width)...)
			para = nil
		}
	}

	for _, line := range strings.Split(message, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			out = append(out, "")
			continue
		}
		if isBulletLine(line) {
			flush()
		}
		para = append(para, line)
	}
	flush()

	return strings.Join(out, "\n")
}

// isBulletLine reports whether line starts a bullet. A marker alone on its
// line counts too, otherwise it would join the paragraph above when wrapped
// a second time.
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, marker := range BulletMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return isMarker(strings.TrimRight(trimmed, " \t"))
}

// isMarker reports whether word is a bullet marker on its own
func isMarker(word string) bool {
	for _, marker := range BulletMarkers {
		if word == strings.TrimSpace(marker) {
			return true
		}
	}
	return false
}

func wrapParagraph(lines []string, width int) []string {
	words := strings.Fields(strings.Join(lines, " "))

	if len(words) > 1 && isMarker(words[0]) {
		indent := leadingSpace(lines[0])
		if runeLen(indent)+2 >= width {
			indent = ""
		}
		first := indent + words[0] + " "
		rest := indent + strings.Repeat(" ", runeLen(words[0])+1)
		return fill(units(words[1:]), first, rest, width)
	}

	return fill(units(words), "", "", width)
}

// units groups words into the pieces placed on lines. A bare marker is glued
// to the word before it so that no wrapped line can start with one and be
// read back as a new bullet.
func units(words []string) []string {
	out := make([]string, 0, len(words))
	for i, word := range words {
		if i > 0 && isMarker(word) {
			out[len(out)-1] += " " + word
			continue
		}
		out = append(out, word)
	}
	return out
}

// fill lays units out greedily. A unit that does not fit on an empty line is
// emitted alone.
func fill(units []string, first, rest string, width int) []string {
	var lines []string

	var b strings.Builder
	b.WriteString(first)
	length := runeLen(first)
	empty := true

	for _, unit := range units {
		n := runeLen(unit)
		switch {
		case empty:
			b.WriteString(unit)
			length += n
			empty = false
		case length+1+n <= width:
			b.WriteByte(' ')
			b.WriteString(unit)
			length += 1 + n
		default:
			lines = append(lines, b.String())
			b.Reset()
			b.WriteString(rest)
			b.WriteString(unit)
			length = runeLen(rest) + n
		}
	}

	return append(lines, b.String())
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
