package llm

import (
	"fmt"

	"github.com/huimingz/commitguard/internal/config"
)

// ProviderFactory creates LLM providers based on configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new ProviderFactory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// Create creates a Provider based on the model configuration
func (f *ProviderFactory) Create(cfg config.ModelConfig) (Provider, error) {
	if cfg.Provider == "gemini" {
		return NewGeminiProvider(cfg), nil
	}
	if _, ok := compatibleDefaults[cfg.Provider]; ok {
		return NewCompatibleProvider(cfg.Provider, cfg), nil
	}
	return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
}

// CreateFromConfig creates a Provider from application config by model name
func (f *ProviderFactory) CreateFromConfig(appCfg *config.Config, modelName string) (Provider, error) {
	modelCfg, err := appCfg.GetModel(modelName)
	if err != nil {
		return nil, err
	}
	return f.Create(*modelCfg)
}
