package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const rule = "─────────────────────────────────────────────"

// Confirm asks the user for a yes/no confirmation
// Default is no (returns false on empty input)
func Confirm(message string, input io.Reader, output io.Writer) (bool, error) {
	return ConfirmWithDefault(message, false, input, output)
}

// ConfirmWithDefault asks the user for a yes/no confirmation with a specified default
func ConfirmWithDefault(message string, defaultYes bool, input io.Reader, output io.Writer) (bool, error) {
	scanner := bufio.NewScanner(input)

	prompt := fmt.Sprintf("%s [y/N]: ", message)
	if defaultYes {
		prompt = fmt.Sprintf("%s [Y/n]: ", message)
	}

	for {
		if _, err := fmt.Fprint(output, prompt); err != nil {
			return false, err
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return false, err
			}
			return false, io.EOF
		}

		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			if _, err := fmt.Fprintln(output, "Please enter 'y' or 'n'"); err != nil {
				return false, err
			}
		}
	}
}

// ShowCommitMessage displays a formatted commit message
func ShowCommitMessage(message string, output io.Writer) error {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	if _, err := bold.Fprintln(output, "\n📝 Generated Commit Message:"); err != nil {
		return err
	}
	if _, err := cyan.Fprintln(output, rule); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(output, message); err != nil {
		return err
	}
	_, err := cyan.Fprintln(output, rule)
	return err
}

// ShowRemark displays the model's free-form note that accompanies a message.
// Nothing is printed for an empty remark.
func ShowRemark(remark string, output io.Writer) error {
	remark = strings.TrimSpace(remark)
	if remark == "" {
		return nil
	}

	dim := color.New(color.FgHiBlack)
	_, err := dim.Fprintf(output, "💬 %s\n", remark)
	return err
}
