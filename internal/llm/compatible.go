package llm

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/huimingz/commitguard/internal/config"
)

// Default API base URLs of the OpenAI-compatible providers
const (
	DeepseekDefaultBaseURL = "https://api.deepseek.com/v1"
	OllamaDefaultBaseURL   = "http://localhost:11434/v1"
	GrokDefaultBaseURL     = "https://api.x.ai/v1"
)

// compatibleDefaults holds the base URL used when none is configured.
// An empty value means the client library default.
var compatibleDefaults = map[string]string{
	"openai":   "",
	"deepseek": DeepseekDefaultBaseURL,
	"ollama":   OllamaDefaultBaseURL,
	"grok":     GrokDefaultBaseURL,
}

// CompatibleProvider implements Provider for every API that speaks the
// OpenAI chat completions protocol
type CompatibleProvider struct {
	name string
	cfg  config.ModelConfig
}

// NewCompatibleProvider creates a provider for one of openai, deepseek,
// ollama or grok, filling in the provider's default base URL
func NewCompatibleProvider(name string, cfg config.ModelConfig) *CompatibleProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = compatibleDefaults[name]
	}
	// Ollama doesn't require API key, set a placeholder
	if name == "ollama" && cfg.APIKey == "" {
		cfg.APIKey = "ollama"
	}
	return &CompatibleProvider{name: name, cfg: cfg}
}

// Name returns the provider name
func (p *CompatibleProvider) Name() string {
	return p.name
}

// GetConfig returns the model configuration
func (p *CompatibleProvider) GetConfig() config.ModelConfig {
	return p.cfg
}

// CreateChatModel creates an Eino ChatModel through the OpenAI client
func (p *CompatibleProvider) CreateChatModel(ctx context.Context) (model.ChatModel, error) {
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  p.cfg.APIKey,
		Model:   p.cfg.Model,
		BaseURL: p.cfg.BaseURL,
	})
}
