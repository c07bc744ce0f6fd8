package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/chunk"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/extract"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/index"
)

const (
	// DefaultTopK is the number of chunks retrieved when the caller does
	// not ask for a specific count.
	DefaultTopK = 4

	answerMaxTokens   = 200
	answerTemperature = 0

	noDocumentsAnswer = "I could not find any relevant documents to answer your question."
	emptyModelAnswer  = "I could not find a relevant answer in the documents."
)

// TextExtractor produces per-page text from a raw document payload.
type TextExtractor interface {
	Extract(data []byte) ([]string, error)
}

// Embedder turns texts into vectors via the inference gateway.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Completer generates a chat completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int64, temperature float64) (string, error)
}

// IngestSummary contains statistics about a single document ingest.
type IngestSummary struct {
	DocID    string
	DocName  string
	Chunks   int
	Pages    int
	Duration time.Duration
}

// AnswerResult is a generated answer plus the chunks it was grounded on.
type AnswerResult struct {
	Answer  string
	Query   string
	Sources []index.Result
}

// Status reports the current state of the index.
type Status struct {
	EntryCount int
	DocCount   int
	Model      string
	Dimension  int
}

// Service orchestrates the retrieval pipeline: extraction, chunking,
// embedding, indexing and answer generation over a single on-disk index.
type Service struct {
	extractor TextExtractor
	chunker   *chunk.Chunker
	embedder  Embedder
	completer Completer
	index     *index.Index
	model     string
	storePath string
	topK      int
	logger    *slog.Logger

	// writeMu serializes ingest and reset so at most one mutation is in
	// flight. Reads go through the index's own lock.
	writeMu sync.Mutex
}

// NewService creates a retrieval service over the index file at storePath
// and loads any persisted state. completer may be nil when the answer
// surface is not needed.
func NewService(
	extractor TextExtractor,
	chunker *chunk.Chunker,
	embedder Embedder,
	completer Completer,
	storePath string,
	model string,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	ix := index.New()
	if err := ix.Load(storePath, logger); err != nil {
		logger.Warn("Could not load persisted index", "path", storePath, "error", err)
	}

	return &Service{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		completer: completer,
		index:     ix,
		model:     model,
		storePath: storePath,
		topK:      DefaultTopK,
		logger:    logger,
	}
}

// SetTopK overrides the default retrieval depth used when a caller passes
// k <= 0.
func (s *Service) SetTopK(k int) {
	if k > 0 {
		s.topK = k
	}
}

// Ingest runs the full pipeline for one document: extract, chunk, embed,
// index, persist. The document is committed atomically: if any stage fails,
// neither the in-memory index nor the persisted file gains any entry.
func (s *Service) Ingest(ctx context.Context, data []byte, name string) (*IngestSummary, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Callers may hand over a path; the document is known by its bare name.
	name = filepath.Base(name)

	start := time.Now()
	s.logger.Info("Ingesting document", "name", name, "size", len(data))

	pages, err := s.extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}
	text, spans := extract.JoinPages(pages)
	s.logger.Debug("Extracted text", "name", name, "pages", len(pages), "bytes", len(text))

	chunks := s.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("extract %s: %w", name, extract.ErrNoText)
	}
	s.logger.Debug("Chunked document", "name", name, "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", name, err)
	}

	docID := newDocID(name)
	entries := make([]index.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = index.Entry{
			ID:      uuid.New().String(),
			DocID:   docID,
			DocName: name,
			Seq:     c.Seq,
			Page:    extract.PageFor(spans, c.Start),
			Start:   c.Start,
			End:     c.End,
			Text:    c.Text,
			Vector:  vectors[i],
		}
	}

	if err := s.index.Add(entries, s.model); err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	if err := s.index.Save(s.storePath); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}

	summary := &IngestSummary{
		DocID:    docID,
		DocName:  name,
		Chunks:   len(chunks),
		Pages:    len(pages),
		Duration: time.Since(start),
	}
	s.logger.Info("Indexed document",
		"name", name,
		"doc_id", docID,
		"chunks", summary.Chunks,
		"duration", summary.Duration,
	)
	return summary, nil
}

// Retrieve embeds the query and returns the k most similar chunks. A
// non-positive k falls back to the configured default.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]index.Result, error) {
	if k <= 0 {
		k = s.topK
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.index.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	s.logger.Debug("Retrieved chunks", "query_length", len(query), "results", len(results))
	return results, nil
}

// Answer retrieves the most similar chunks and asks the inference model to
// answer the query from them. An empty retrieval short-circuits to a fixed
// answer without calling the model.
func (s *Service) Answer(ctx context.Context, query string, k int) (*AnswerResult, error) {
	if s.completer == nil {
		return nil, fmt.Errorf("answer: no inference model configured")
	}

	results, err := s.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &AnswerResult{Answer: noDocumentsAnswer, Query: query}, nil
	}

	answer, err := s.completer.Complete(ctx, buildAnswerPrompt(query, results), answerMaxTokens, answerTemperature)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = emptyModelAnswer
	}

	return &AnswerResult{Answer: answer, Query: query, Sources: results}, nil
}

// Status reports the index size and its established metadata.
func (s *Service) Status() Status {
	return Status{
		EntryCount: s.index.Len(),
		DocCount:   s.index.DocCount(),
		Model:      s.index.Model(),
		Dimension:  s.index.Dimension(),
	}
}

// Reset clears the in-memory index and removes the persisted file.
func (s *Service) Reset() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.index.Clear()
	if err := os.Remove(s.storePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove index file: %w", err)
	}
	s.logger.Info("Index reset", "path", s.storePath)
	return nil
}

func buildAnswerPrompt(query string, results []index.Result) string {
	var b strings.Builder
	b.WriteString("Based on the following documents, provide a clear answer that addresses the question.\n\nDocuments:\n")
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Document %d:\n%s", i+1, r.Entry.Text)
	}
	fmt.Fprintf(&b, "\n\nQuestion: %s\n\nAnswer:", query)
	return b.String()
}

func newDocID(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, base)
	return fmt.Sprintf("%s-%d", base, time.Now().UnixMilli())
}
