package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/huimingz/commitguard/internal/agent"
	"github.com/huimingz/commitguard/internal/git"
	"github.com/huimingz/commitguard/internal/llm"
	"github.com/huimingz/commitguard/internal/log"
	"github.com/huimingz/commitguard/internal/ui"
)

// recentSubjectCount is how many previous subjects are sent as style examples
const recentSubjectCount = 5

var (
	commitContext   string
	commitLanguage  string
	commitAutoYes   bool
	commitAll       bool
	commitDryRun    bool
	commitNoCopy    bool
	commitStrategy  string
	commitPatterns  string
	commitThreshold string
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate and create a commit",
	Long: `Generate a commit message using AI based on staged changes.

This command will:
1. Read your staged changes (git diff --cached), or a diff piped on stdin
2. Scan them for secrets and block or redact them according to the strategy
3. Generate a commit message following Conventional Commits
4. Reflow the message so no line exceeds the configured width
5. Copy it to the clipboard and ask for confirmation before committing

When a diff is piped on stdin the message is printed and copied, never committed.

Examples:
  commitguard commit
  commitguard commit -c "Bug fix for user authentication"
  commitguard commit --language zh
  commitguard commit --strategy redact
  git diff HEAD~1 | commitguard commit`,
	RunE: runCommit,
}

func init() {
	commitCmd.Flags().StringVarP(&commitContext, "context", "c", "", "Additional context to help AI generate better message")
	commitCmd.Flags().StringVarP(&commitLanguage, "language", "l", "", "Output language (en, zh, ja, etc.)")
	commitCmd.Flags().BoolVarP(&commitAutoYes, "yes", "y", false, "Auto-confirm the commit without prompting")
	commitCmd.Flags().BoolVarP(&commitAll, "all", "a", false, "Stage all changes before generating the message")
	commitCmd.Flags().BoolVar(&commitDryRun, "dry-run", false, "Print the message without committing")
	commitCmd.Flags().BoolVar(&commitNoCopy, "no-copy", false, "Do not copy the message to the clipboard")
	commitCmd.Flags().StringVar(&commitStrategy, "strategy", "", "Secret strategy: block or redact (overrides config)")
	commitCmd.Flags().StringVar(&commitPatterns, "patterns", "", "Secret patterns YAML file (overrides config)")
	commitCmd.Flags().StringVar(&commitThreshold, "threshold", "", "Minimum rule confidence: low, medium, high or 0-1 (overrides config)")
	rootCmd.AddCommand(commitCmd)
}

// changeSet is the input for one generation
type changeSet struct {
	Diff           string
	Status         string
	RecentSubjects []string
	FromStdin      bool
	Executor       git.Executor // nil when the diff came from stdin
}

// collectChanges reads a piped diff, or the staged changes of the repository in
// the working directory
func collectChanges(ctx context.Context, stdin io.Reader, logger *log.Logger) (*changeSet, error) {
	if !stdinIsTerminal() {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) != "" {
			logger.Debug("Read %d bytes of diff from stdin", len(data))
			return &changeSet{Diff: string(data), FromStdin: true}, nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	gitExec := git.NewExecutor(cwd)
	if !gitExec.IsRepository(ctx) {
		return nil, fmt.Errorf("%w: %s", git.ErrNotRepository, cwd)
	}

	if commitAll {
		if err := gitExec.AddAll(ctx); err != nil {
			return nil, fmt.Errorf("failed to stage changes: %w", err)
		}
	}

	diff, err := gitExec.DiffCached(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get staged changes: %w", err)
	}
	if strings.TrimSpace(diff) == "" {
		return nil, agent.ErrNoChanges
	}

	changes := &changeSet{Diff: diff, Executor: gitExec}

	if changes.Status, err = gitExec.StatusPorcelain(ctx); err != nil {
		logger.Warn("Failed to get git status: %v", err)
	}
	if changes.RecentSubjects, err = gitExec.RecentSubjects(ctx, recentSubjectCount); err != nil {
		logger.Warn("Failed to read recent commits: %v", err)
	}
	if branch, err := gitExec.CurrentBranch(ctx); err == nil {
		logger.Debug("Current branch: %s", branch)
	}

	return changes, nil
}

type commitAction int

const (
	actionCommit commitAction = iota
	actionRegenerate
	actionCancel
)

var commitActions = []string{"Commit with this message", "Regenerate", "Cancel"}

// chooseAction asks what to do with a generated message. A message that still
// has an over-long line is never committed without an explicit yes.
func chooseAction(lineErr error, input io.Reader, output io.Writer) (commitAction, error) {
	if lineErr != nil {
		if commitAutoYes {
			return actionCancel, fmt.Errorf("refusing to commit automatically: %w", withHint(lineErr))
		}
		ok, err := ui.ConfirmWithDefault("\nThe message has an over-long line. Commit anyway?", false, input, output)
		if err != nil || !ok {
			return actionCancel, err
		}
		return actionCommit, nil
	}

	if commitAutoYes {
		return actionCommit, nil
	}

	fmt.Fprintln(output)
	idx, err := ui.SelectOption("What would you like to do?", commitActions, int(actionCommit), input, output)
	if errors.Is(err, io.EOF) {
		return actionCancel, nil
	}
	if err != nil {
		return actionCancel, err
	}
	return commitAction(idx), nil
}

func copyToClipboard(text string, printer *ui.StreamPrinter, logger *log.Logger) {
	if commitNoCopy {
		return
	}
	if err := newClipboard().Copy(text); err != nil {
		if errors.Is(err, ui.ErrClipboardUnavailable) {
			logger.Debug("Skipping clipboard: %v", err)
			return
		}
		logger.Warn("Failed to copy to clipboard: %v", err)
		return
	}
	_ = printer.PrintInfo("Commit message copied to clipboard")
}

func runCommit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	interrupt := NewInterruptHandler(cancel, out)
	interrupt.Start()
	defer interrupt.Stop()

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cfg)
	if err != nil {
		return err
	}
	logger.DebugConfig("Configuration", cfg)

	modelConfig, err := cfg.GetModel(modelName)
	if err != nil {
		return fmt.Errorf("failed to get model config: %w", err)
	}
	language := cfg.GetLanguage(commitLanguage)
	logger.Debug("Using model: %s (provider: %s), language: %s", modelConfig.Model, modelConfig.Provider, language)

	guard, err := buildGuard(cfg, guardOverrides{
		Strategy:     commitStrategy,
		PatternsFile: commitPatterns,
		Threshold:    commitThreshold,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to set up secret detection: %w", err)
	}

	changes, err := collectChanges(ctx, in, logger)
	if err != nil {
		return withHint(err)
	}

	provider, err := newProvider(*modelConfig)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}
	logger.Debug("LLM provider created successfully")

	retryConfig := llm.RetryConfigFrom(cfg.GetRetryConfig())
	msgCfg := cfg.GetMessageConfig()
	printer := ui.NewStreamPrinter(out, ui.WithVerbose(debugMode))

	commitAgent, err := agent.NewCommitAgent(agent.CommitAgentOptions{
		Language:      language,
		LLMProvider:   provider,
		Guard:         guard,
		Printer:       printer,
		Output:        out,
		Debug:         debugMode,
		RetryConfig:   &retryConfig,
		MaxTokens:     msgCfg.MaxTokens,
		MaxLineLength: msgCfg.MaxLineLength,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create commit agent: %w", err)
	}

	req := agent.CommitRequest{
		Diff:           changes.Diff,
		Status:         changes.Status,
		Language:       language,
		Context:        commitContext,
		RecentSubjects: changes.RecentSubjects,
	}

	for {
		startTime := time.Now()
		_ = printer.PrintProgress("Starting commit message generation...")

		// A response together with an error means the message is usable but
		// still has a line over the limit.
		resp, genErr := commitAgent.GenerateCommitMessage(ctx, req)
		if resp == nil {
			return withHint(genErr)
		}

		if err := ui.ShowRemark(resp.Remark, out); err != nil {
			return err
		}
		if err := ui.ShowCommitMessage(resp.Message, out); err != nil {
			return err
		}
		if genErr != nil {
			_ = printer.PrintWarning(genErr.Error())
		}
		_ = printer.PrintStats(&ui.ExecutionStats{
			StartTime:        startTime,
			EndTime:          time.Now(),
			PromptTokens:     resp.PromptTokens,
			CompletionTokens: resp.CompletionTokens,
			TotalTokens:      resp.TotalTokens,
			Attempts:         resp.Attempts,
		})
		copyToClipboard(resp.Message, printer, logger)

		if changes.FromStdin || commitDryRun {
			if changes.FromStdin {
				_ = printer.PrintInfo("Diff was read from stdin; nothing was committed")
			}
			return withHint(genErr)
		}

		action, err := chooseAction(genErr, in, out)
		if err != nil {
			return err
		}

		switch action {
		case actionRegenerate:
			continue
		case actionCancel:
			fmt.Fprintln(out, "Commit cancelled.")
			return nil
		}

		if err := changes.Executor.Commit(ctx, resp.Message); err != nil {
			return fmt.Errorf("failed to commit: %w", err)
		}
		_ = printer.PrintSuccess("Commit created successfully!")
		return nil
	}
}
