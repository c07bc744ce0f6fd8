// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting. Auth follows gateway precedence:
// client credentials when TOKEN_URL, CLIENT_ID and CLIENT_SECRET are all
// set, otherwise the static INFERENCE_API_KEY, otherwise unauthenticated.
type Config struct {
	// Gateway
	BaseURL           string
	EmbeddingsBaseURL string
	TokenURL          string
	ClientID          string
	ClientSecret      string
	APIKey            string

	// Models
	EmbeddingModel string
	InferenceModel string

	// Index
	VectorStorePath string

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	TopK           int
	EmbedBatchSize int

	// HTTP
	MaxFileSize int64
	Port        string
	ServerMode  bool
}

// Load reads the configuration from the environment. A .env file is loaded
// first when present (local development), real environment variables win.
func Load() (*Config, error) {
	godotenv.Load()

	baseURL := getEnv("BASE_URL", "https://api.example.com")

	cfg := &Config{
		BaseURL:           baseURL,
		EmbeddingsBaseURL: getEnv("EMBEDDINGS_BASE_URL", baseURL),
		TokenURL:          os.Getenv("TOKEN_URL"),
		ClientID:          os.Getenv("CLIENT_ID"),
		ClientSecret:      os.Getenv("CLIENT_SECRET"),
		APIKey:            os.Getenv("INFERENCE_API_KEY"),
		EmbeddingModel:    getEnv("EMBEDDINGS_MODEL_NAME", "bge-base-en-v1.5"),
		InferenceModel:    getEnv("INFERENCE_MODEL_NAME", "meta-llama/Llama-3.1-8B-Instruct"),
		VectorStorePath:   getEnv("VECTOR_STORE_PATH", "data/index.gob"),
		Port:              getEnv("PORT", "8080"),
		ServerMode:        getEnv("SERVER_MODE", "false") == "true",
	}

	var err error
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 200); err != nil {
		return nil, err
	}
	if cfg.TopK, err = getEnvInt("TOP_K_DOCUMENTS", 4); err != nil {
		return nil, err
	}
	if cfg.EmbedBatchSize, err = getEnvInt("EMBED_BATCH_SIZE", 32); err != nil {
		return nil, err
	}

	maxFileSize, err := getEnvInt("MAX_FILE_SIZE", 50*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.MaxFileSize = int64(maxFileSize)

	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE, got %d", cfg.ChunkOverlap)
	}

	return cfg, nil
}

// HasClientCredentials reports whether the client-credentials flow is fully
// configured.
func (c *Config) HasClientCredentials() bool {
	return c.TokenURL != "" && c.ClientID != "" && c.ClientSecret != ""
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return i, nil
}
