package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "ollama", cfg.EmbeddingProvider)
	assert.Equal(t, "bge-m3", cfg.OllamaModel)
	assert.Equal(t, 1024, cfg.EmbeddingDimension)
	assert.Equal(t, 50, cfg.EmbedBatchSize)
	assert.Equal(t, 2*time.Minute, cfg.EmbedInterval)
	assert.Equal(t, 6*time.Hour, cfg.InsightInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("OPENAI_EMBED_MODEL", "text-embedding-3-large")
	t.Setenv("EMBEDDING_DIMENSION", "3072")
	t.Setenv("EMBED_INTERVAL", "45s")

	cfg := Load()

	assert.Equal(t, "openai", cfg.EmbeddingProvider)
	assert.Equal(t, "text-embedding-3-large", cfg.OpenAIModel)
	assert.Equal(t, 3072, cfg.EmbeddingDimension)
	assert.Equal(t, 45*time.Second, cfg.EmbedInterval)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("EMBEDDING_DIMENSION", "not-a-number")
	t.Setenv("EMBED_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 1024, cfg.EmbeddingDimension)
	assert.Equal(t, 2*time.Minute, cfg.EmbedInterval)
}
