// Package main provides the operator CLI for the document index.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/chunk"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/config"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/extract"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/gateway"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/retrieval"
)

var topK int

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Document index management tool",
	Long:  "CLI tool for ingesting and querying the local document index",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <files...>",
	Short: "Ingest PDF documents into the index",
	Long: `Extracts text from each PDF, chunks it, embeds the chunks through the
inference gateway and commits them to the index. Each document is ingested
atomically: a failure leaves the index exactly as it was.

Environment variables:
  BASE_URL               Inference gateway base URL
  EMBEDDINGS_BASE_URL    Separate embeddings base URL (optional)
  TOKEN_URL, CLIENT_ID, CLIENT_SECRET
                         OAuth2 client-credentials (preferred)
  INFERENCE_API_KEY      Static API key fallback
  EMBEDDINGS_MODEL_NAME  Embedding model served by the gateway
  VECTOR_STORE_PATH      Index file location (default: data/index.gob)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Search the index for chunks similar to the query",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index entry counts and metadata",
	RunE:  runStatus,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the index and delete its persisted file",
	RunE:  runReset,
}

func init() {
	queryCmd.Flags().IntVarP(&topK, "top", "k", 0, "number of chunks to return (default from TOP_K_DOCUMENTS)")
	rootCmd.AddCommand(ingestCmd, queryCmd, statusCmd, resetCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newService builds the retrieval service. withGateway controls whether the
// embedding client is constructed; status and reset work offline.
func newService(withGateway bool) (*retrieval.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	chunker, err := chunk.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking configuration: %w", err)
	}

	var embedder retrieval.Embedder
	var completer retrieval.Completer
	if withGateway {
		client, err := gateway.NewClient(gateway.Config{
			BaseURL:           cfg.BaseURL,
			EmbeddingsBaseURL: cfg.EmbeddingsBaseURL,
			EmbeddingModel:    cfg.EmbeddingModel,
			InferenceModel:    cfg.InferenceModel,
			APIKey:            cfg.APIKey,
			TokenURL:          cfg.TokenURL,
			ClientID:          cfg.ClientID,
			ClientSecret:      cfg.ClientSecret,
		})
		if err != nil {
			return nil, fmt.Errorf("create gateway client: %w", err)
		}
		embedder = gateway.NewEmbedder(client, cfg.EmbedBatchSize)
		completer = client
	}

	service := retrieval.NewService(
		extract.NewExtractor(), chunker, embedder, completer,
		cfg.VectorStorePath, cfg.EmbeddingModel, slog.Default(),
	)
	service.SetTopK(cfg.TopK)
	return service, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	service, err := newService(true)
	if err != nil {
		return err
	}

	var failed int
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("  %s: %v\n", path, err)
			failed++
			continue
		}

		summary, err := service.Ingest(ctx, data, path)
		if err != nil {
			fmt.Printf("  %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("  %s: %d chunks from %d pages\n", path, summary.Chunks, summary.Pages)
	}

	status := service.Status()
	fmt.Println()
	fmt.Println("Ingest complete!")
	fmt.Printf("  Documents: %d/%d\n", len(args)-failed, len(args))
	fmt.Printf("  Index entries: %d\n", status.EntryCount)
	fmt.Printf("  Duration: %s\n", time.Since(start).Round(time.Millisecond))

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	service, err := newService(true)
	if err != nil {
		return err
	}

	results, err := service.Retrieve(context.Background(), args[0], topK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching chunks. Is the index empty?")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. [%.4f] %s (page %d, chunk %d)\n", i+1, r.Score, r.Entry.DocName, r.Entry.Page, r.Entry.Seq)
		fmt.Printf("   %s\n", firstLine(r.Entry.Text, 160))
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	service, err := newService(false)
	if err != nil {
		return err
	}

	status := service.Status()
	fmt.Printf("Entries:   %d\n", status.EntryCount)
	fmt.Printf("Documents: %d\n", status.DocCount)
	if status.Model != "" {
		fmt.Printf("Model:     %s\n", status.Model)
		fmt.Printf("Dimension: %d\n", status.Dimension)
	}
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	service, err := newService(false)
	if err != nil {
		return err
	}

	if err := service.Reset(); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	fmt.Println("Index cleared")
	return nil
}

// firstLine trims text to a single line of at most max characters.
func firstLine(text string, max int) string {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			text = text[:i]
			break
		}
	}
	if len(text) > max {
		text = text[:max] + "…"
	}
	return text
}
