package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/huimingz/commitguard/internal/secrets"
)

// FileName is the configuration file looked up in the working and home directories
const FileName = ".commitguard.yaml"

// Environment variables that override configuration values
const (
	EnvModel    = "COMMITGUARD_MODEL"
	EnvLanguage = "COMMITGUARD_LANG"
	EnvLogLevel = "COMMITGUARD_LOG_LEVEL"
)

// Supported providers
var supportedProviders = map[string]bool{
	"openai":   true,
	"deepseek": true,
	"ollama":   true,
	"gemini":   true,
	"grok":     true,
}

// SupportedProviders returns a sorted list of supported providers
func SupportedProviders() []string {
	providers := make([]string, 0, len(supportedProviders))
	for p := range supportedProviders {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// Config represents the application configuration
type Config struct {
	DefaultModel string                 `yaml:"default_model" mapstructure:"default_model"`
	Models       map[string]ModelConfig `yaml:"models" mapstructure:"models"`
	Language     string                 `yaml:"language" mapstructure:"language"`
	LogLevel     string                 `yaml:"log_level" mapstructure:"log_level"`
	Retry        *RetryConfig           `yaml:"retry" mapstructure:"retry"`
	Secrets      *SecretsConfig         `yaml:"secrets" mapstructure:"secrets"`
	Message      *MessageConfig         `yaml:"message" mapstructure:"message"`
}

// RetryConfig represents the retry configuration
type RetryConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffBase float64 `yaml:"backoff_base" mapstructure:"backoff_base"` // in seconds
	BackoffMax  float64 `yaml:"backoff_max" mapstructure:"backoff_max"`   // in seconds
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		BackoffBase: 1.0,
		BackoffMax:  8.0,
	}
}

// Validate validates the retry configuration
func (r *RetryConfig) Validate() error {
	if r.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be non-negative")
	}
	if r.BackoffBase < 0 {
		return fmt.Errorf("backoff_base must be non-negative")
	}
	if r.BackoffMax < r.BackoffBase {
		return fmt.Errorf("backoff_max must be greater than or equal to backoff_base")
	}
	return nil
}

// SecretsConfig controls the secret guard that runs before any model call
type SecretsConfig struct {
	Strategy            string `yaml:"strategy" mapstructure:"strategy" validate:"omitempty,strategy"`
	PatternsFile        string `yaml:"patterns_file" mapstructure:"patterns_file"`
	ConfidenceThreshold string `yaml:"confidence_threshold" mapstructure:"confidence_threshold" validate:"omitempty,confidence"`
}

// DefaultSecretsConfig returns the default secrets configuration
func DefaultSecretsConfig() *SecretsConfig {
	return &SecretsConfig{
		Strategy:            string(secrets.StrategyBlock),
		ConfidenceThreshold: secrets.DefaultThreshold.String(),
	}
}

// Validate validates the secrets configuration
func (s *SecretsConfig) Validate() error {
	return validateStruct(s)
}

// StrategyValue returns the parsed strategy
func (s *SecretsConfig) StrategyValue() (secrets.Strategy, error) {
	return secrets.ParseStrategy(s.Strategy)
}

// Threshold returns the parsed confidence threshold
func (s *SecretsConfig) Threshold() (secrets.Confidence, error) {
	return secrets.ParseConfidence(s.ConfidenceThreshold)
}

// MessageConfig controls the generated commit message
type MessageConfig struct {
	MaxLineLength int `yaml:"max_line_length" mapstructure:"max_line_length" validate:"gte=0,lte=1000"`
	MaxTokens     int `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
}

// DefaultMessageConfig returns the default message configuration
func DefaultMessageConfig() *MessageConfig {
	return &MessageConfig{
		MaxLineLength: 100,
		MaxTokens:     100000,
	}
}

// Validate validates the message configuration
func (m *MessageConfig) Validate() error {
	return validateStruct(m)
}

// ModelConfig represents a single model configuration
type ModelConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	Model    string `yaml:"model" mapstructure:"model"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// Validate validates the model configuration
func (m *ModelConfig) Validate() error {
	if m.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !supportedProviders[m.Provider] {
		return fmt.Errorf("unsupported provider: %s", m.Provider)
	}
	if m.Model == "" {
		return fmt.Errorf("model is required")
	}
	// API key is required for all providers except ollama
	if m.Provider != "ollama" && m.APIKey == "" {
		return fmt.Errorf("api_key is required for provider %s", m.Provider)
	}
	return nil
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("no models configured")
	}

	// Validate default model exists
	if c.DefaultModel != "" {
		if _, ok := c.Models[c.DefaultModel]; !ok {
			return fmt.Errorf("default model '%s' not found in models configuration", c.DefaultModel)
		}
	}

	// Validate each model
	for name, model := range c.Models {
		if err := model.Validate(); err != nil {
			return fmt.Errorf("invalid model '%s': %w", name, err)
		}
	}

	if c.Retry != nil {
		if err := c.Retry.Validate(); err != nil {
			return fmt.Errorf("invalid retry configuration: %w", err)
		}
	}

	if c.Secrets != nil {
		if err := c.Secrets.Validate(); err != nil {
			return fmt.Errorf("invalid secrets configuration: %w", err)
		}
	}

	if c.Message != nil {
		if err := c.Message.Validate(); err != nil {
			return fmt.Errorf("invalid message configuration: %w", err)
		}
	}

	return nil
}

// GetModel returns the model configuration by name
// Priority: parameter > env variable (COMMITGUARD_MODEL) > default_model
func (c *Config) GetModel(modelName string) (*ModelConfig, error) {
	if modelName == "" {
		modelName = os.Getenv(EnvModel)
	}

	if modelName == "" {
		modelName = c.DefaultModel
	}

	if modelName == "" {
		return nil, fmt.Errorf("no model specified and no default model configured")
	}

	model, ok := c.Models[modelName]
	if !ok {
		return nil, fmt.Errorf("model '%s' not found in configuration", modelName)
	}

	// Expand environment variables in API key
	model.APIKey = expandEnv(model.APIKey)

	return &model, nil
}

// GetLanguage returns the language to use
// Priority: parameter > env variable (COMMITGUARD_LANG) > config file > default (en)
func (c *Config) GetLanguage(langParam string) string {
	if langParam != "" {
		return langParam
	}

	if envLang := os.Getenv(EnvLanguage); envLang != "" {
		return envLang
	}

	if c.Language != "" {
		return c.Language
	}

	return "en"
}

// GetLogLevel returns the log level name
// Priority: parameter > env variable (COMMITGUARD_LOG_LEVEL) > config file > info
func (c *Config) GetLogLevel(levelParam string) string {
	if levelParam != "" {
		return levelParam
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		return env
	}
	if c != nil && c.LogLevel != "" {
		return c.LogLevel
	}
	return "info"
}

// GetRetryConfig returns the retry configuration with defaults applied
func (c *Config) GetRetryConfig() *RetryConfig {
	if c.Retry == nil {
		return DefaultRetryConfig()
	}
	// Apply defaults for unset values
	defaults := DefaultRetryConfig()
	if c.Retry.MaxAttempts < 0 {
		c.Retry.MaxAttempts = defaults.MaxAttempts
	}
	if c.Retry.BackoffBase < 0 {
		c.Retry.BackoffBase = defaults.BackoffBase
	}
	if c.Retry.BackoffMax < 0 {
		c.Retry.BackoffMax = defaults.BackoffMax
	}
	return c.Retry
}

// GetSecretsConfig returns the secrets configuration with defaults applied.
// A leading ~/ in patterns_file is expanded to the home directory.
func (c *Config) GetSecretsConfig() *SecretsConfig {
	if c == nil || c.Secrets == nil {
		return DefaultSecretsConfig()
	}
	defaults := DefaultSecretsConfig()
	if c.Secrets.Strategy == "" {
		c.Secrets.Strategy = defaults.Strategy
	}
	if c.Secrets.ConfidenceThreshold == "" {
		c.Secrets.ConfidenceThreshold = defaults.ConfidenceThreshold
	}
	c.Secrets.PatternsFile = expandHome(c.Secrets.PatternsFile)
	return c.Secrets
}

// GetMessageConfig returns the message configuration with defaults applied
func (c *Config) GetMessageConfig() *MessageConfig {
	if c == nil || c.Message == nil {
		return DefaultMessageConfig()
	}
	defaults := DefaultMessageConfig()
	if c.Message.MaxLineLength <= 0 {
		c.Message.MaxLineLength = defaults.MaxLineLength
	}
	if c.Message.MaxTokens <= 0 {
		c.Message.MaxTokens = defaults.MaxTokens
	}
	return c.Message
}

// expandEnv expands environment variables in the format ${VAR} or $VAR
func expandEnv(s string) string {
	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envName := s[2 : len(s)-1]
		return os.Getenv(envName)
	}
	// Handle $VAR format
	if strings.HasPrefix(s, "$") {
		envName := s[1:]
		return os.Getenv(envName)
	}
	return s
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}

// LoadFromFile loads configuration from a file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ErrConfigNotFound is returned by Load when no configuration file exists
var ErrConfigNotFound = errors.New("no configuration file found")

// Load loads configuration with the following priority:
// 1. Custom path if provided
// 2. Current directory .commitguard.yaml
// 3. Home directory ~/.commitguard.yaml
//
// A file that exists but cannot be parsed is an error; it is not skipped.
func Load(customPath string) (*Config, error) {
	if customPath != "" {
		return LoadFromFile(customPath)
	}

	candidates := []string{FileName}
	if homeCfgPath, err := HomeConfigPath(); err == nil {
		candidates = append(candidates, homeCfgPath)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFromFile(path)
	}

	return nil, fmt.Errorf("%w. Run 'commitguard init' to create one", ErrConfigNotFound)
}

// HomeConfigPath returns ~/.commitguard.yaml
func HomeConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, FileName), nil
}
