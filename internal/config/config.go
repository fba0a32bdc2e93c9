package config

import (
	"os"
	"strconv"

	"clusterlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Embedding EmbeddingConfig
	Analysis  AnalysisConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// EmbeddingConfig holds settings for the external embedding service
type EmbeddingConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	BatchSize      int
	MaxRetries     int
	MaxConcurrency int
	TimeoutMs      int
}

// AnalysisConfig caps the analysis parameters accepted at the HTTP
// boundary. These are presentation-tier limits; the core pipeline itself
// accepts any positive integers within the data's actual bounds.
type AnalysisConfig struct {
	MaxDimensions int
	MaxClusters   int
}

// Load builds configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Embedding: EmbeddingConfig{
			BaseURL:        getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),
			APIKey:         os.Getenv("EMBEDDING_API_KEY"),
			Model:          getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			BatchSize:      getEnvInt("EMBEDDING_BATCH_SIZE", 64),
			MaxRetries:     getEnvInt("EMBEDDING_MAX_RETRIES", 4),
			MaxConcurrency: getEnvInt("EMBEDDING_MAX_CONCURRENCY", 4),
			TimeoutMs:      getEnvInt("EMBEDDING_TIMEOUT_MS", 30000),
		},
		Analysis: AnalysisConfig{
			MaxDimensions: getEnvInt("ANALYSIS_MAX_DIMENSIONS", 100),
			MaxClusters:   getEnvInt("ANALYSIS_MAX_CLUSTERS", 6),
		},
	}

	if cfg.Embedding.BatchSize < 1 {
		return nil, errors.ConfigInvalid("EMBEDDING_BATCH_SIZE must be positive")
	}
	if cfg.Analysis.MaxDimensions < 1 || cfg.Analysis.MaxClusters < 1 {
		return nil, errors.ConfigInvalid("analysis limits must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
