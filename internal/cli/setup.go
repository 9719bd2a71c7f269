package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/huimingz/commitguard/internal/agent"
	"github.com/huimingz/commitguard/internal/config"
	"github.com/huimingz/commitguard/internal/llm"
	"github.com/huimingz/commitguard/internal/log"
	"github.com/huimingz/commitguard/internal/message"
	"github.com/huimingz/commitguard/internal/secrets"
	"github.com/huimingz/commitguard/internal/ui"
)

// Exit codes returned by the commitguard binary
const (
	ExitOK          = 0
	ExitError       = 1
	ExitSecret      = 2
	ExitTokenLimit  = 3
	ExitInterrupted = 130
)

// ErrFindings is returned by `scan --fail` when secrets were found
var ErrFindings = errors.New("potential secrets found")

// ExitCode maps an error returned by Execute to a process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, secrets.ErrSecretDetected), errors.Is(err, ErrFindings):
		return ExitSecret
	case errors.Is(err, llm.ErrTokenLimitExceeded):
		return ExitTokenLimit
	default:
		return ExitError
	}
}

// Replaced in tests
var (
	newProvider = func(cfg config.ModelConfig) (llm.Provider, error) {
		return llm.NewProviderFactory().Create(cfg)
	}
	newClipboard = func() ui.Clipboard {
		return ui.SystemClipboard{}
	}
	stdinIsTerminal = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

// loadConfig loads the configuration file. Commands that can run without a
// model pass optional=true: a missing file yields an empty configuration and
// the models section is not validated.
func loadConfig(optional bool) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		if optional && configFile == "" && errors.Is(err, config.ErrConfigNotFound) {
			log.Debug("No configuration file found, using defaults")
			return &config.Config{}, nil
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if optional {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configureLogger applies --debug, --log-level, COMMITGUARD_LOG_LEVEL and the
// config file to the default logger, in that order of precedence
func configureLogger(cfg *config.Config) (*log.Logger, error) {
	logger := log.Default()
	if debugMode {
		logger.SetLevel(log.LevelDebug)
		return logger, nil
	}

	level, err := log.ParseLevel(cfg.GetLogLevel(logLevel))
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	return logger, nil
}

// guardOverrides are command-line values that take precedence over the secrets section
type guardOverrides struct {
	Strategy     string
	PatternsFile string
	Threshold    string
}

// buildGuard creates the secret guard from configuration and flag overrides
func buildGuard(cfg *config.Config, o guardOverrides, logger *log.Logger) (*secrets.Guard, error) {
	sc := *cfg.GetSecretsConfig()
	if o.Strategy != "" {
		sc.Strategy = o.Strategy
	}
	if o.PatternsFile != "" {
		sc.PatternsFile = o.PatternsFile
	}
	if o.Threshold != "" {
		sc.ConfidenceThreshold = o.Threshold
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	strategy, err := sc.StrategyValue()
	if err != nil {
		return nil, err
	}
	threshold, err := sc.Threshold()
	if err != nil {
		return nil, err
	}

	detector, err := secrets.NewDetectorFromFile(sc.PatternsFile, threshold, logger)
	if err != nil {
		return nil, err
	}
	policy, err := secrets.NewPolicy(strategy)
	if err != nil {
		return nil, err
	}

	logger.Debug("Secret guard: strategy=%s threshold=%s rules=%d", strategy, threshold, len(detector.Rules()))
	return secrets.NewGuard(detector, policy, logger), nil
}

// readInput reads a named file, or stdin when name is empty or "-"
func readInput(name string, stdin io.Reader) (string, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

// withHint adds a next step to errors a user can act on. The original error
// stays in the chain so ExitCode still recognizes it.
func withHint(err error) error {
	var detected *secrets.SecretDetectedError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &detected):
		return fmt.Errorf("%w\nRemove the secret from your changes, or use --strategy redact to send the diff with secrets masked", err)
	case errors.Is(err, llm.ErrTokenLimitExceeded):
		return fmt.Errorf("%w\nTry committing fewer files at a time", err)
	case errors.Is(err, agent.ErrNoChanges):
		return fmt.Errorf("%w. Stage changes with 'git add <file>' or use --all", err)
	case errors.Is(err, message.ErrLineTooLong):
		return fmt.Errorf("%w\nThe line holds a single word that cannot be wrapped", err)
	default:
		return err
	}
}
