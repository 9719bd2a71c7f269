package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/huimingz/commitguard/internal/message"
)

var (
	wrapWidth         int
	wrapCheck         bool
	wrapInPlace       bool
	wrapStripComments bool
)

var wrapCmd = &cobra.Command{
	Use:   "wrap [file]",
	Short: "Reflow a commit message to the line width",
	Long: `Reflow a commit message so that no line exceeds the configured width.

Paragraphs are filled, bullet items ("-", "*", "+", "1.") keep a hanging indent,
and blank lines are preserved. Reflowing an already wrapped message is a no-op.
Reads stdin when no file is given.

It can be used as a commit-msg hook:
  commitguard wrap --in-place --strip-comments "$1"

Examples:
  commitguard wrap msg.txt
  commitguard wrap --width 72 < msg.txt
  commitguard wrap --check .git/COMMIT_EDITMSG`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWrap,
}

func init() {
	wrapCmd.Flags().IntVarP(&wrapWidth, "width", "w", 0, "Maximum line length (default: message.max_line_length or 100)")
	wrapCmd.Flags().BoolVar(&wrapCheck, "check", false, "Only report whether every line fits, do not reflow")
	wrapCmd.Flags().BoolVarP(&wrapInPlace, "in-place", "i", false, "Rewrite the file instead of printing")
	wrapCmd.Flags().BoolVar(&wrapStripComments, "strip-comments", false, "Drop lines starting with '#' before wrapping")
	rootCmd.AddCommand(wrapCmd)
}

// stripComments drops git comment lines
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func runWrap(cmd *cobra.Command, args []string) error {
	if wrapWidth < 0 {
		return errors.New("--width must be positive")
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	if wrapInPlace && (name == "" || name == "-") {
		return errors.New("--in-place requires a file argument")
	}

	width := wrapWidth
	if width == 0 {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		width = cfg.GetMessageConfig().MaxLineLength
	}

	text, err := readInput(name, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if wrapStripComments {
		text = stripComments(text)
	}

	out := cmd.OutOrStdout()

	if wrapCheck {
		if err := message.Validate(strings.TrimRight(text, " \t\r\n"), width); err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ All lines fit within %d characters\n", width)
		return nil
	}

	wrapped, finalizeErr := message.Finalize(text, width)
	if wrapInPlace {
		if err := os.WriteFile(name, []byte(wrapped+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	} else {
		fmt.Fprintln(out, wrapped)
	}

	return withHint(finalizeErr)
}
