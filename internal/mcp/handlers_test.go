package mcp

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/chunk"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/retrieval"
)

type fixedExtractor struct {
	pages []string
}

func (f *fixedExtractor) Extract(data []byte) ([]string, error) {
	return f.pages, nil
}

type histogramEmbedder struct{}

func (histogramEmbedder) vector(text string) []float32 {
	v := make([]float32, 4)
	for i := 0; i < len(text); i++ {
		v[int(text[i])%4]++
	}
	return v
}

func (h histogramEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.vector(t)
	}
	return out, nil
}

func (h histogramEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return h.vector(text), nil
}

func newToolService(t *testing.T, pages []string) *retrieval.Service {
	t.Helper()
	chunker, err := chunk.NewChunker(64, 16)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return retrieval.NewService(
		&fixedExtractor{pages: pages}, chunker, histogramEmbedder{}, nil,
		filepath.Join(t.TempDir(), "index.gob"), "test-model", logger,
	)
}

func TestSearchIndexTool(t *testing.T) {
	svc := newToolService(t, []string{"the quick brown fox"})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, nil, "animals.pdf")
	require.NoError(t, err)

	handler := makeSearchHandler(svc)
	_, out, err := handler(ctx, nil, SearchIndexInput{Query: "the quick brown fox", MaxResults: 3})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "the quick brown fox", out.Results[0].Text)
	assert.Equal(t, "animals.pdf", out.Results[0].DocName)
	assert.Empty(t, out.Message)
}

func TestSearchIndexTool_EmptyIndex(t *testing.T) {
	svc := newToolService(t, nil)

	handler := makeSearchHandler(svc)
	_, out, err := handler(context.Background(), nil, SearchIndexInput{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.NotEmpty(t, out.Message)
}

func TestStatusAndResetTools(t *testing.T) {
	svc := newToolService(t, []string{"the quick brown fox"})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, nil, "animals.pdf")
	require.NoError(t, err)

	_, status, err := makeStatusHandler(svc)(ctx, nil, StatusInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, status.Entries)
	assert.Equal(t, 1, status.Documents)
	assert.Equal(t, "test-model", status.Model)
	assert.Equal(t, 4, status.Dimension)

	_, reset, err := makeResetHandler(svc)(ctx, nil, ResetInput{})
	require.NoError(t, err)
	assert.Equal(t, "reset", reset.Status)

	_, status, err = makeStatusHandler(svc)(ctx, nil, StatusInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, status.Entries)
}
