package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/huimingz/commitguard/internal/git"
	"github.com/huimingz/commitguard/internal/secrets"
	"github.com/huimingz/commitguard/internal/ui"
)

var (
	scanFail      bool
	scanRedact    bool
	scanPatterns  string
	scanThreshold string
)

var scanCmd = &cobra.Command{
	Use:   "scan [file...]",
	Short: "Scan files or changes for secrets",
	Long: `Scan text for secrets with the same rules used before every LLM request.

Without arguments the diff piped on stdin is scanned, or the staged changes
when stdin is a terminal. Use "-" to read stdin explicitly.

No model configuration is required.

Examples:
  commitguard scan
  commitguard scan --fail config/prod.env
  git diff | commitguard scan --redact > safe.diff`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanFail, "fail", false, "Exit with status 2 when secrets are found")
	scanCmd.Flags().BoolVar(&scanRedact, "redact", false, "Print the input with secrets replaced by "+secrets.Placeholder)
	scanCmd.Flags().StringVar(&scanPatterns, "patterns", "", "Secret patterns YAML file (overrides config)")
	scanCmd.Flags().StringVar(&scanThreshold, "threshold", "", "Minimum rule confidence: low, medium, high or 0-1 (overrides config)")
	rootCmd.AddCommand(scanCmd)
}

type scanSource struct {
	name string
	text string
}

func scanSources(cmd *cobra.Command, args []string) ([]scanSource, error) {
	in := cmd.InOrStdin()

	if len(args) == 0 {
		if !stdinIsTerminal() {
			text, err := readInput("-", in)
			if err != nil {
				return nil, err
			}
			return []scanSource{{name: "stdin", text: text}}, nil
		}

		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		gitExec := git.NewExecutor(cwd)
		diff, err := gitExec.DiffCached(cmd.Context())
		if err != nil {
			return nil, fmt.Errorf("failed to get staged changes: %w", err)
		}
		return []scanSource{{name: "staged changes", text: diff}}, nil
	}

	sources := make([]scanSource, 0, len(args))
	for _, arg := range args {
		text, err := readInput(arg, in)
		if err != nil {
			return nil, err
		}
		name := arg
		if arg == "-" {
			name = "stdin"
		}
		sources = append(sources, scanSource{name: name, text: text})
	}
	return sources, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cfg)
	if err != nil {
		return err
	}

	guard, err := buildGuard(cfg, guardOverrides{
		PatternsFile: scanPatterns,
		Threshold:    scanThreshold,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to set up secret detection: %w", err)
	}

	sources, err := scanSources(cmd, args)
	if err != nil {
		return err
	}

	// With --redact stdout carries the redacted text, so findings go to stderr
	var report io.Writer = cmd.OutOrStdout()
	if scanRedact {
		report = cmd.ErrOrStderr()
	}

	total := 0
	for _, src := range sources {
		matches := guard.ScanText(src.text)
		total += len(matches)

		if err := ui.ShowFindings(src.name, src.text, matches, report); err != nil {
			return err
		}
		if scanRedact {
			redacted := secrets.Redact(src.text, matches)
			if _, err := io.WriteString(cmd.OutOrStdout(), redacted); err != nil {
				return err
			}
			if !strings.HasSuffix(redacted, "\n") && redacted != "" {
				fmt.Fprintln(cmd.OutOrStdout())
			}
		}
	}

	if scanFail && total > 0 {
		return fmt.Errorf("%w: %d match(es)", ErrFindings, total)
	}
	return nil
}
