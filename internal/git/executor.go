package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNotRepository is returned when the working directory is not inside a git work tree
var ErrNotRepository = errors.New("not a git repository")

// Executor defines the interface for git command execution
type Executor interface {
	// IsRepository reports whether the working directory is inside a work tree
	IsRepository(ctx context.Context) bool

	// DiffCached returns the diff of staged changes
	DiffCached(ctx context.Context) (string, error)

	// DiffHead returns staged and unstaged changes against HEAD
	DiffHead(ctx context.Context) (string, error)

	// Status returns the human readable git status
	Status(ctx context.Context) (string, error)

	// StatusPorcelain returns the short machine readable status
	StatusPorcelain(ctx context.Context) (string, error)

	// RecentSubjects returns the subject lines of the last n commits
	RecentSubjects(ctx context.Context, n int) ([]string, error)

	// AddAll stages every change in the work tree
	AddAll(ctx context.Context) error

	// Commit executes a git commit with the given message
	Commit(ctx context.Context, message string) error

	// CurrentBranch returns the current branch name
	CurrentBranch(ctx context.Context) (string, error)
}

// DefaultExecutor is the default implementation of Executor
type DefaultExecutor struct {
	workDir string
}

// NewExecutor creates a new DefaultExecutor
func NewExecutor(workDir string) *DefaultExecutor {
	return &DefaultExecutor{workDir: workDir}
}

// runGit runs a git command and returns the output
func (e *DefaultExecutor) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = e.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if strings.Contains(msg, "not a git repository") {
			return "", fmt.Errorf("%w: %s", ErrNotRepository, strings.TrimSpace(msg))
		}
		return "", fmt.Errorf("git %s failed: %w\n%s", strings.Join(args, " "), err, msg)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// IsRepository reports whether the working directory is inside a work tree
func (e *DefaultExecutor) IsRepository(ctx context.Context) bool {
	out, err := e.runGit(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

func (e *DefaultExecutor) hasCommits(ctx context.Context) bool {
	_, err := e.runGit(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

// DiffCached returns the diff of staged changes
func (e *DefaultExecutor) DiffCached(ctx context.Context) (string, error) {
	return e.runGit(ctx, "diff", "--cached")
}

// DiffHead returns all tracked changes against HEAD. In a repository without
// commits there is no HEAD, so the staged diff is returned instead.
func (e *DefaultExecutor) DiffHead(ctx context.Context) (string, error) {
	if !e.hasCommits(ctx) {
		return e.DiffCached(ctx)
	}
	return e.runGit(ctx, "diff", "HEAD")
}

// Status returns the current git status
func (e *DefaultExecutor) Status(ctx context.Context) (string, error) {
	return e.runGit(ctx, "status")
}

// StatusPorcelain returns `git status --porcelain`
func (e *DefaultExecutor) StatusPorcelain(ctx context.Context) (string, error) {
	return e.runGit(ctx, "status", "--porcelain")
}

// RecentSubjects returns up to n commit subjects, newest first
func (e *DefaultExecutor) RecentSubjects(ctx context.Context, n int) ([]string, error) {
	if n <= 0 || !e.hasCommits(ctx) {
		return nil, nil
	}

	out, err := e.runGit(ctx, "log", "-n", strconv.Itoa(n), "--format=%s")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// AddAll runs `git add -A`
func (e *DefaultExecutor) AddAll(ctx context.Context) error {
	_, err := e.runGit(ctx, "add", "-A")
	return err
}

// Commit executes a git commit with the given message
func (e *DefaultExecutor) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("commit message is empty")
	}
	_, err := e.runGit(ctx, "commit", "-m", message)
	return err
}

// CurrentBranch returns the current branch name
func (e *DefaultExecutor) CurrentBranch(ctx context.Context) (string, error) {
	return e.runGit(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}
