package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// SelectOption shows a numbered list and returns the zero-based index the user
// picked. Empty input selects defaultIndex, which falls back to 0 when out of range.
func SelectOption(message string, options []string, defaultIndex int, input io.Reader, output io.Writer) (int, error) {
	if len(options) == 0 {
		return -1, errors.New("no options to select from")
	}
	if defaultIndex < 0 || defaultIndex >= len(options) {
		defaultIndex = 0
	}

	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	if _, err := bold.Fprintln(output, message); err != nil {
		return -1, err
	}
	for i, option := range options {
		marker := " "
		if i == defaultIndex {
			marker = "*"
		}
		if _, err := fmt.Fprintf(output, " %s %d) %s\n", marker, i+1, option); err != nil {
			return -1, err
		}
	}

	scanner := bufio.NewScanner(input)
	for {
		if _, err := dim.Fprintf(output, "Select [1-%d] (default %d): ", len(options), defaultIndex+1); err != nil {
			return -1, err
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return -1, err
			}
			return -1, io.EOF
		}

		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			return defaultIndex, nil
		}

		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}

		if _, err := fmt.Fprintf(output, "Please enter a number between 1 and %d\n", len(options)); err != nil {
			return -1, err
		}
	}
}
