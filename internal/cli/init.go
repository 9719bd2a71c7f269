package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/huimingz/commitguard/internal/config"
	"github.com/huimingz/commitguard/internal/secrets"
)

// PatternsFileName is the sample rules file written next to the config
const PatternsFileName = ".commitguard-patterns.yaml"

const defaultConfigTemplate = `# CommitGuard Configuration File

# Default language for generated messages (en, zh, ja, etc.)
language: en

# Log level: debug, info, warn, error, silent
# log_level: info

# Default model to use (must match a key in the models section)
default_model: deepseek

# LLM Model configurations
models:
  # Deepseek (recommended)
  deepseek:
    provider: deepseek
    api_key: ${DEEPSEEK_API_KEY}
    model: deepseek-chat
    # base_url: https://api.deepseek.com  # optional, uses default

  # OpenAI
  # openai:
  #   provider: openai
  #   api_key: ${OPENAI_API_KEY}
  #   model: gpt-4o
  #   base_url: https://api.openai.com/v1

  # Ollama (local, nothing leaves your machine)
  # ollama:
  #   provider: ollama
  #   model: llama3.2
  #   base_url: http://localhost:11434

  # Google Gemini
  # gemini:
  #   provider: gemini
  #   api_key: ${GOOGLE_API_KEY}
  #   model: gemini-2.0-flash

  # xAI Grok
  # grok:
  #   provider: grok
  #   api_key: ${XAI_API_KEY}
  #   model: grok-beta

# Secret detection, applied to every request before it is sent
secrets:
  # block: refuse to send a diff that contains a secret
  # redact: replace each secret with [REDACTED] and send
  strategy: block
  # Rules below this confidence are ignored (low, medium, high or 0-1)
  confidence_threshold: medium
  # Custom rules; the built-in set is used when unset
  # patterns_file: ~/.commitguard-patterns.yaml

# Generated message
message:
  # No line of the final message is longer than this
  max_line_length: 100
  # Requests estimated above this many tokens are refused
  max_tokens: 100000

# Retry on transient provider errors (rate limits, 5xx, timeouts)
retry:
  enabled: true
  max_attempts: 3
  backoff_base: 1.0
  backoff_max: 8.0
`

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize CommitGuard configuration",
	Long: `Create a default configuration file (~/.commitguard.yaml) and a sample
secret patterns file (~/.commitguard-patterns.yaml).

The configuration has example settings for various LLM providers. Edit it to
add your API keys. The patterns file holds the built-in rules; enable it with
secrets.patterns_file to customize detection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		configPath, err := config.HomeConfigPath()
		if err != nil {
			return err
		}
		patternsPath := filepath.Join(filepath.Dir(configPath), PatternsFileName)

		// Check if file exists
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", configPath)
		}

		if err := os.WriteFile(configPath, []byte(defaultConfigTemplate), 0o600); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		fmt.Fprintf(out, "✅ Configuration file created: %s\n", configPath)

		if _, err := os.Stat(patternsPath); err == nil && !initForce {
			fmt.Fprintf(out, "ℹ️  Keeping existing patterns file: %s\n", patternsPath)
		} else {
			if err := os.WriteFile(patternsPath, secrets.DefaultPatternsYAML(), 0o644); err != nil {
				return fmt.Errorf("failed to write patterns file: %w", err)
			}
			fmt.Fprintf(out, "✅ Sample patterns file created: %s\n", patternsPath)
		}

		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintln(out, "  1. Edit the config file and add your API keys")
		fmt.Fprintln(out, "  2. Set environment variables for sensitive keys (recommended)")
		fmt.Fprintln(out, "  3. Run 'commitguard scan' to check your staged changes for secrets")
		fmt.Fprintln(out, "  4. Run 'commitguard commit' to generate a commit message")

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}
