package config_test

import (
	"testing"

	"rag-streamprobe/internal/infra/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "http://localhost:8081", cfg.RagBaseURL)
	assert.Equal(t, "multimodal_data", cfg.CollectionName)
	assert.Equal(t, 60, cfg.GenerateTimeout)
	assert.Equal(t, 30, cfg.DirectTimeout)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 200, cfg.MaxTokens)
	assert.Equal(t, 1, cfg.SuiteInterval)
	assert.Equal(t, 32, cfg.SuiteCacheSize)
	assert.Equal(t, 20, cfg.StubChunkDelay)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("RAG_URL", "http://rag.internal:8000")
	t.Setenv("RAG_COLLECTION", "docs")
	t.Setenv("RAG_GENERATE_TIMEOUT", "120")
	t.Setenv("RAG_TEMPERATURE", "0.7")
	t.Setenv("RAG_MAX_TOKENS", "512")

	cfg := config.Load()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://rag.internal:8000", cfg.RagBaseURL)
	assert.Equal(t, "docs", cfg.CollectionName)
	assert.Equal(t, 120, cfg.GenerateTimeout)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 512, cfg.MaxTokens)
}

func TestLoad_BaseURLAlternateKey(t *testing.T) {
	t.Setenv("RAG_BASE_URL", "http://alt.internal:8000")

	cfg := config.Load()
	assert.Equal(t, "http://alt.internal:8000", cfg.RagBaseURL)
}

func TestLoad_BaseURLPrimaryKeyWins(t *testing.T) {
	t.Setenv("RAG_URL", "http://primary.internal:8000")
	t.Setenv("RAG_BASE_URL", "http://alt.internal:8000")

	cfg := config.Load()
	assert.Equal(t, "http://primary.internal:8000", cfg.RagBaseURL)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("RAG_GENERATE_TIMEOUT", "not-a-number")
	t.Setenv("RAG_TEMPERATURE", "warm")

	cfg := config.Load()
	assert.Equal(t, 60, cfg.GenerateTimeout)
	assert.Equal(t, 0.2, cfg.Temperature)
}
