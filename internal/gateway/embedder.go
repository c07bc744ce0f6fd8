package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

const (
	// DefaultBatchSize bounds request payload size per embeddings call.
	DefaultBatchSize = 32

	// defaultMaxRetries is the number of retries after the first attempt,
	// for 3 attempts total per batch on transient failures.
	defaultMaxRetries = 2
)

// Embedder generates embedding vectors through the gateway. It batches
// inputs, preserves input order end-to-end, and retries transient failures
// with bounded exponential backoff.
type Embedder struct {
	client    *Client
	batchSize int

	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
}

// NewEmbedder creates an Embedder with the given batch size. A batch size
// of 0 selects DefaultBatchSize (32).
func NewEmbedder(client *Client, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Embedder{
		client:          client,
		batchSize:       batchSize,
		maxRetries:      defaultMaxRetries,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     10 * time.Second,
	}
}

// EmbedTexts returns one vector per input text, in input order. Order is the
// only correlation key back to the caller's chunks, so batching never
// reorders.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var all [][]float32

	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		batch := texts[i:end]

		vectors, err := e.embedBatchWithRetry(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, vectors...)
	}

	return all, nil
}

// EmbedQuery embeds a single query text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for 1 query", ErrEmbeddingCount, len(vectors))
	}
	return vectors[0], nil
}

// embedBatchWithRetry embeds one batch, retrying on network errors, 5xx and
// 429. Auth failures and other 4xx responses are permanent.
func (e *Embedder) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		resp, err := e.client.embeddings.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: openai.EmbeddingModel(e.client.embeddingModel),
		})
		if err != nil {
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		if len(resp.Data) != len(texts) {
			return backoff.Permanent(fmt.Errorf("%w: sent %d texts, got %d vectors",
				ErrEmbeddingCount, len(texts), len(resp.Data)))
		}

		vectors = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			vectors[i] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.initialInterval
	b.MaxInterval = e.maxInterval

	err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.WithContext(b, ctx), e.maxRetries))
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// isTransient reports whether the error is worth retrying: timeouts and
// transport failures, 5xx, and rate limiting. Credential failures and other
// client errors are not.
func isTransient(err error) bool {
	if errors.Is(err, ErrAuth) {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	// Network errors and per-request timeouts reach here undecorated.
	return true
}

// toFloat32 narrows the API's float64 vectors for storage.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
