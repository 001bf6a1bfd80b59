package llm

import (
	"fmt"

	"github.com/nguyentantai21042004/video-digest/internal/config"
	"github.com/nguyentantai21042004/video-digest/internal/logger"
)

// New builds the Generator selected by cfg.Name.
func New(cfg config.ProviderConfig, log logger.Logger) (Generator, error) {
	switch cfg.Name {
	case config.ProviderGemini:
		return NewGemini(cfg.APIKeys, cfg.Model, cfg.Timeout, log), nil
	case config.ProviderOpenRouter:
		key := ""
		if len(cfg.APIKeys) > 0 {
			key = cfg.APIKeys[0]
		}
		return NewOpenRouter(cfg.BaseURL, key, cfg.Model, cfg.Timeout), nil
	case config.ProviderOllama:
		return NewOllama(cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case config.ProviderLlamaCpp:
		return NewLlamaCpp(cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}
