package cli

import (
	"github.com/spf13/cobra"

	"github.com/huimingz/commitguard/internal/log"
)

var (
	// Global flags
	debugMode  bool
	configFile string
	modelName  string
	logLevel   string

	// Version info
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commitguard",
	Short: "Commit message generator that keeps secrets out of LLM requests",
	Long: `CommitGuard generates Conventional Commit messages from your changes with an LLM.

Before anything leaves your machine the diff is scanned for secrets
(API keys, tokens, private keys, credentials). Depending on the configured
strategy the request is either blocked or the secrets are redacted.
Generated messages are reflowed so that no line exceeds 100 characters.

Use "commitguard [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(cmd.ErrOrStderr())
		if debugMode {
			log.SetDebugMode(true)
			log.Debug("Debug mode enabled")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, commit, time string) {
	version = v
	gitCommit = commit
	buildTime = time
}

// GetVersionInfo returns version information
func GetVersionInfo() (string, string, string) {
	return version, gitCommit, buildTime
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode for verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: ./.commitguard.yaml or ~/.commitguard.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "LLM model to use (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, silent")
}
