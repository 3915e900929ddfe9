package config

import (
	"os"
	"strconv"
)

type Config struct {
	Env             string
	Port            string
	RagBaseURL      string
	CollectionName  string
	GenerateTimeout int
	DirectTimeout   int
	Temperature     float64
	MaxTokens       int
	SuiteInterval   int
	SuiteCacheSize  int
	StubChunkDelay  int
}

func Load() *Config {
	return &Config{
		Env:             getEnv("ENV", "development"),
		Port:            getEnv("PORT", "8081"),
		RagBaseURL:      getEnvWithAlt("RAG_URL", "RAG_BASE_URL", "http://localhost:8081"),
		CollectionName:  getEnv("RAG_COLLECTION", "multimodal_data"),
		GenerateTimeout: getEnvInt("RAG_GENERATE_TIMEOUT", 60),
		DirectTimeout:   getEnvInt("RAG_DIRECT_TIMEOUT", 30),
		Temperature:     getEnvFloat("RAG_TEMPERATURE", 0.2),
		MaxTokens:       getEnvInt("RAG_MAX_TOKENS", 200),
		SuiteInterval:   getEnvInt("PROBE_SUITE_INTERVAL", 1),
		SuiteCacheSize:  getEnvInt("PROBE_SUITE_CACHE_SIZE", 32),
		StubChunkDelay:  getEnvInt("STUB_CHUNK_DELAY_MS", 20),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvWithAlt(key, altKey, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if value, ok := os.LookupEnv(altKey); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
