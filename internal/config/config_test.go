package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huimingz/commitguard/internal/secrets"
)

func TestModelConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ModelConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid openai config",
			config: ModelConfig{
				Provider: "openai",
				APIKey:   "sk-xxx",
				Model:    "gpt-4o",
			},
			wantErr: false,
		},
		{
			name: "valid deepseek config",
			config: ModelConfig{
				Provider: "deepseek",
				APIKey:   "sk-xxx",
				Model:    "deepseek-chat",
			},
			wantErr: false,
		},
		{
			name: "valid ollama config without api key",
			config: ModelConfig{
				Provider: "ollama",
				Model:    "qwen2.5:14b",
				BaseURL:  "http://localhost:11434/v1",
			},
			wantErr: false,
		},
		{
			name: "missing provider",
			config: ModelConfig{
				APIKey: "sk-xxx",
				Model:  "gpt-4o",
			},
			wantErr: true,
			errMsg:  "provider is required",
		},
		{
			name: "invalid provider",
			config: ModelConfig{
				Provider: "invalid",
				APIKey:   "sk-xxx",
				Model:    "gpt-4o",
			},
			wantErr: true,
			errMsg:  "unsupported provider",
		},
		{
			name: "missing model",
			config: ModelConfig{
				Provider: "openai",
				APIKey:   "sk-xxx",
			},
			wantErr: true,
			errMsg:  "model is required",
		},
		{
			name: "missing api key for openai",
			config: ModelConfig{
				Provider: "openai",
				Model:    "gpt-4o",
			},
			wantErr: true,
			errMsg:  "api_key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_GetModel(t *testing.T) {
	cfg := &Config{
		DefaultModel: "deepseek",
		Models: map[string]ModelConfig{
			"deepseek": {
				Provider: "deepseek",
				APIKey:   "sk-deepseek",
				Model:    "deepseek-chat",
			},
			"gpt4": {
				Provider: "openai",
				APIKey:   "sk-openai",
				Model:    "gpt-4o",
			},
		},
		Language: "en",
	}

	t.Run("get existing model", func(t *testing.T) {
		model, err := cfg.GetModel("gpt4")
		require.NoError(t, err)
		assert.Equal(t, "openai", model.Provider)
		assert.Equal(t, "gpt-4o", model.Model)
	})

	t.Run("get default model when empty name", func(t *testing.T) {
		model, err := cfg.GetModel("")
		require.NoError(t, err)
		assert.Equal(t, "deepseek", model.Provider)
		assert.Equal(t, "deepseek-chat", model.Model)
	})

	t.Run("get non-existing model", func(t *testing.T) {
		_, err := cfg.GetModel("nonexistent")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestConfig_GetModelWithEnvOverride(t *testing.T) {
	cfg := &Config{
		DefaultModel: "deepseek",
		Models: map[string]ModelConfig{
			"deepseek": {
				Provider: "deepseek",
				APIKey:   "sk-deepseek",
				Model:    "deepseek-chat",
			},
			"gpt4": {
				Provider: "openai",
				APIKey:   "sk-openai",
				Model:    "gpt-4o",
			},
		},
	}

	t.Run("env variable overrides default", func(t *testing.T) {
		os.Setenv("COMMITGUARD_MODEL", "gpt4")
		defer os.Unsetenv("COMMITGUARD_MODEL")

		model, err := cfg.GetModel("")
		require.NoError(t, err)
		assert.Equal(t, "openai", model.Provider)
	})

	t.Run("explicit name overrides env", func(t *testing.T) {
		os.Setenv("COMMITGUARD_MODEL", "gpt4")
		defer os.Unsetenv("COMMITGUARD_MODEL")

		model, err := cfg.GetModel("deepseek")
		require.NoError(t, err)
		assert.Equal(t, "deepseek", model.Provider)
	})
}

func TestConfig_ExpandEnvInAPIKey(t *testing.T) {
	os.Setenv("TEST_API_KEY", "my-secret-key")
	defer os.Unsetenv("TEST_API_KEY")

	cfg := &Config{
		DefaultModel: "test",
		Models: map[string]ModelConfig{
			"test": {
				Provider: "openai",
				APIKey:   "${TEST_API_KEY}",
				Model:    "gpt-4o",
			},
		},
	}

	model, err := cfg.GetModel("test")
	require.NoError(t, err)
	assert.Equal(t, "my-secret-key", model.APIKey)
}

func TestConfig_GetLanguage(t *testing.T) {
	t.Run("returns configured language", func(t *testing.T) {
		cfg := &Config{Language: "zh"}
		assert.Equal(t, "zh", cfg.GetLanguage(""))
	})

	t.Run("override with parameter", func(t *testing.T) {
		cfg := &Config{Language: "zh"}
		assert.Equal(t, "ja", cfg.GetLanguage("ja"))
	})

	t.Run("env variable override", func(t *testing.T) {
		os.Setenv("COMMITGUARD_LANG", "ko")
		defer os.Unsetenv("COMMITGUARD_LANG")

		cfg := &Config{Language: "zh"}
		assert.Equal(t, "ko", cfg.GetLanguage(""))
	})

	t.Run("parameter overrides env", func(t *testing.T) {
		os.Setenv("COMMITGUARD_LANG", "ko")
		defer os.Unsetenv("COMMITGUARD_LANG")

		cfg := &Config{Language: "zh"}
		assert.Equal(t, "ja", cfg.GetLanguage("ja"))
	})

	t.Run("default to en when empty", func(t *testing.T) {
		cfg := &Config{}
		assert.Equal(t, "en", cfg.GetLanguage(""))
	})
}

func TestLoadFromFile(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".commitguard.yaml")

	configContent := `
default_model: deepseek
models:
  deepseek:
    provider: deepseek
    api_key: sk-test
    model: deepseek-chat
  gpt4:
    provider: openai
    api_key: sk-openai
    model: gpt-4o
language: zh
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, "deepseek", cfg.DefaultModel)
	assert.Equal(t, "zh", cfg.Language)
	assert.Len(t, cfg.Models, 2)

	deepseek, ok := cfg.Models["deepseek"]
	assert.True(t, ok)
	assert.Equal(t, "deepseek", deepseek.Provider)
	assert.Equal(t, "deepseek-chat", deepseek.Model)
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/.commitguard.yaml")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{
			DefaultModel: "deepseek",
			Models: map[string]ModelConfig{
				"deepseek": {
					Provider: "deepseek",
					APIKey:   "sk-test",
					Model:    "deepseek-chat",
				},
			},
			Language: "en",
		}
		err := cfg.Validate()
		assert.NoError(t, err)
	})

	t.Run("no models configured", func(t *testing.T) {
		cfg := &Config{
			DefaultModel: "deepseek",
			Models:       map[string]ModelConfig{},
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no models configured")
	})

	t.Run("default model not found", func(t *testing.T) {
		cfg := &Config{
			DefaultModel: "nonexistent",
			Models: map[string]ModelConfig{
				"deepseek": {
					Provider: "deepseek",
					APIKey:   "sk-test",
					Model:    "deepseek-chat",
				},
			},
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "default model")
	})

	t.Run("invalid model config", func(t *testing.T) {
		cfg := &Config{
			DefaultModel: "deepseek",
			Models: map[string]ModelConfig{
				"deepseek": {
					Provider: "invalid-provider",
					APIKey:   "sk-test",
					Model:    "deepseek-chat",
				},
			},
		}
		err := cfg.Validate()
		assert.Error(t, err)
	})
}

func TestSupportedProviders(t *testing.T) {
	providers := SupportedProviders()
	assert.Contains(t, providers, "openai")
	assert.Contains(t, providers, "deepseek")
	assert.Contains(t, providers, "ollama")
	assert.Contains(t, providers, "gemini")
	assert.Contains(t, providers, "grok")
}

func TestSupportedProviders_Sorted(t *testing.T) {
	assert.Equal(t, []string{"deepseek", "gemini", "grok", "ollama", "openai"}, SupportedProviders())
}

func TestSecretsConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  SecretsConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty uses defaults",
			config:  SecretsConfig{},
			wantErr: false,
		},
		{
			name:    "redact with numeric threshold",
			config:  SecretsConfig{Strategy: "redact", ConfidenceThreshold: "0.7"},
			wantErr: false,
		},
		{
			name:    "unknown strategy",
			config:  SecretsConfig{Strategy: "warn"},
			wantErr: true,
			errMsg:  "strategy must be one of block, redact",
		},
		{
			name:    "bad threshold",
			config:  SecretsConfig{ConfidenceThreshold: "extreme"},
			wantErr: true,
			errMsg:  "confidence_threshold",
		},
		{
			name:    "threshold out of range",
			config:  SecretsConfig{ConfidenceThreshold: "2"},
			wantErr: true,
			errMsg:  "confidence_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMessageConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultMessageConfig().Validate())

	err := (&MessageConfig{MaxLineLength: -1}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_line_length must be at least 0")

	err = (&MessageConfig{MaxLineLength: 5000}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_line_length must be at most 1000")
}

func TestConfig_GetSecretsConfig(t *testing.T) {
	t.Run("defaults when section missing", func(t *testing.T) {
		cfg := &Config{}
		sc := cfg.GetSecretsConfig()
		assert.Equal(t, "block", sc.Strategy)
		assert.Equal(t, "medium", sc.ConfidenceThreshold)
		assert.Empty(t, sc.PatternsFile)

		strategy, err := sc.StrategyValue()
		require.NoError(t, err)
		assert.Equal(t, secrets.StrategyBlock, strategy)

		threshold, err := sc.Threshold()
		require.NoError(t, err)
		assert.Equal(t, secrets.ConfidenceMedium, threshold)
	})

	t.Run("fills unset values and expands home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		cfg := &Config{Secrets: &SecretsConfig{Strategy: "redact", PatternsFile: "~/patterns.yaml"}}
		sc := cfg.GetSecretsConfig()
		assert.Equal(t, "redact", sc.Strategy)
		assert.Equal(t, "medium", sc.ConfidenceThreshold)
		assert.Equal(t, filepath.Join(home, "patterns.yaml"), sc.PatternsFile)
	})
}

func TestConfig_GetMessageConfig(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultMessageConfig(), cfg.GetMessageConfig())

	cfg = &Config{Message: &MessageConfig{MaxLineLength: 72}}
	mc := cfg.GetMessageConfig()
	assert.Equal(t, 72, mc.MaxLineLength)
	assert.Equal(t, 100000, mc.MaxTokens)
}

func TestConfig_GetLogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "warn"}
	assert.Equal(t, "warn", cfg.GetLogLevel(""))
	assert.Equal(t, "debug", cfg.GetLogLevel("debug"))

	t.Setenv(EnvLogLevel, "error")
	assert.Equal(t, "error", cfg.GetLogLevel(""))
	assert.Equal(t, "debug", cfg.GetLogLevel("debug"))

	var nilCfg *Config
	t.Setenv(EnvLogLevel, "")
	assert.Equal(t, "info", nilCfg.GetLogLevel(""))
}

func TestConfig_ValidateSections(t *testing.T) {
	base := func() *Config {
		return &Config{
			Models: map[string]ModelConfig{
				"local": {Provider: "ollama", Model: "qwen2.5"},
			},
		}
	}

	cfg := base()
	cfg.Secrets = &SecretsConfig{Strategy: "mask"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid secrets configuration")

	cfg = base()
	cfg.Message = &MessageConfig{MaxTokens: -5}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid message configuration")

	cfg = base()
	cfg.Retry = &RetryConfig{MaxAttempts: 1, BackoffBase: 2, BackoffMax: 1}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid retry configuration")
}

func TestLoadFromFile_Sections(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	configContent := `
default_model: local
models:
  local:
    provider: ollama
    model: qwen2.5
log_level: debug
secrets:
  strategy: redact
  patterns_file: ./patterns.yaml
  confidence_threshold: 0.7
message:
  max_line_length: 72
  max_tokens: 50000
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	require.NotNil(t, cfg.Secrets)
	assert.Equal(t, "redact", cfg.Secrets.Strategy)
	assert.Equal(t, "./patterns.yaml", cfg.Secrets.PatternsFile)
	assert.Equal(t, "0.7", cfg.Secrets.ConfidenceThreshold)
	require.NotNil(t, cfg.Message)
	assert.Equal(t, 72, cfg.Message.MaxLineLength)
	assert.Equal(t, 50000, cfg.Message.MaxTokens)
}

func TestLoad(t *testing.T) {
	const content = "default_model: local\nmodels:\n  local:\n    provider: ollama\n    model: qwen2.5\n"

	t.Run("not found", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Chdir(t.TempDir())

		_, err := Load("")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigNotFound)
		assert.Contains(t, err.Error(), "commitguard init")
	})

	t.Run("home directory", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Chdir(t.TempDir())
		require.NoError(t, os.WriteFile(filepath.Join(home, FileName), []byte(content), 0600))

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "local", cfg.DefaultModel)
	})

	t.Run("working directory wins", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		require.NoError(t, os.WriteFile(filepath.Join(home, FileName), []byte("default_model: home\n"), 0600))

		wd := t.TempDir()
		t.Chdir(wd)
		require.NoError(t, os.WriteFile(filepath.Join(wd, FileName), []byte(content), 0600))

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "local", cfg.DefaultModel)
	})

	t.Run("broken file is reported", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		wd := t.TempDir()
		t.Chdir(wd)
		require.NoError(t, os.WriteFile(filepath.Join(wd, FileName), []byte("models: [unclosed"), 0600))

		_, err := Load("")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("custom path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "local", cfg.DefaultModel)
	})
}
