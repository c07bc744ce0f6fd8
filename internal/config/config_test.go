package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BASE_URL", "EMBEDDINGS_BASE_URL", "TOKEN_URL", "CLIENT_ID",
		"CLIENT_SECRET", "INFERENCE_API_KEY", "EMBEDDINGS_MODEL_NAME",
		"INFERENCE_MODEL_NAME", "VECTOR_STORE_PATH", "CHUNK_SIZE",
		"CHUNK_OVERLAP", "TOP_K_DOCUMENTS", "EMBED_BATCH_SIZE",
		"MAX_FILE_SIZE", "PORT", "SERVER_MODE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, cfg.BaseURL, cfg.EmbeddingsBaseURL)
	assert.Equal(t, "bge-base-en-v1.5", cfg.EmbeddingModel)
	assert.Equal(t, "meta-llama/Llama-3.1-8B-Instruct", cfg.InferenceModel)
	assert.Equal(t, "data/index.gob", cfg.VectorStorePath)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 4, cfg.TopK)
	assert.Equal(t, 32, cfg.EmbedBatchSize)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.ServerMode)
	assert.False(t, cfg.HasClientCredentials())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE_URL", "https://gateway.internal")
	t.Setenv("EMBEDDINGS_BASE_URL", "https://embeddings.internal")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("CHUNK_OVERLAP", "100")
	t.Setenv("SERVER_MODE", "true")
	t.Setenv("MAX_FILE_SIZE", "1048576")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.internal", cfg.BaseURL)
	assert.Equal(t, "https://embeddings.internal", cfg.EmbeddingsBaseURL)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.True(t, cfg.ServerMode)
	assert.Equal(t, int64(1048576), cfg.MaxFileSize)
}

func TestLoad_ClientCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN_URL", "https://auth.internal/token")
	t.Setenv("CLIENT_ID", "rag")
	t.Setenv("CLIENT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.HasClientCredentials())
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHUNK_SIZE", "lots")
	_, err := Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHUNK_OVERLAP")
}
