package pipeline

import (
	"fmt"

	"github.com/matsen/skillpath/internal/config"
	"github.com/matsen/skillpath/internal/embedding"
)

// NewProvider builds the embedding provider named by cfg, wrapped in an
// in-memory cache.
func NewProvider(cfg config.EmbeddingConfig) (*embedding.Cached, error) {
	var inner embedding.Provider
	switch cfg.Provider {
	case config.ProviderOllama:
		inner = embedding.NewOllamaProvider(
			embedding.WithBaseURL(cfg.OllamaURL),
			embedding.WithModel(cfg.Model),
			embedding.WithDimensions(cfg.Dimensions),
			embedding.WithBatchSize(cfg.BatchSize),
			embedding.WithConcurrency(cfg.Concurrency),
			embedding.WithRateLimit(cfg.RateLimit),
			embedding.WithTimeout(cfg.Timeout),
		)
	case config.ProviderHash:
		inner = embedding.NewHashProvider(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	return embedding.NewCached(inner), nil
}
