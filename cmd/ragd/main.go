// Package main provides the retrieval server: HTTP API plus MCP tools.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/api"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/chunk"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/config"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/extract"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/gateway"
	mcpserver "github.com/VPC-Repo/Dell-Inference-Blueprints/internal/mcp"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/retrieval"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := slog.Default()

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
		log.Fatalf("failed to create gateway client: %v", err)
	}
	logger.Info("Gateway client ready", "auth", client.AuthMode(), "embedding_model", cfg.EmbeddingModel)

	chunker, err := chunk.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("invalid chunking configuration: %v", err)
	}

	embedder := gateway.NewEmbedder(client, cfg.EmbedBatchSize)
	service := retrieval.NewService(
		extract.NewExtractor(), chunker, embedder, client,
		cfg.VectorStorePath, cfg.EmbeddingModel, logger,
	)
	service.SetTopK(cfg.TopK)

	// REST API at the root, MCP Streamable HTTP at /mcp
	apiServer := api.NewServer(service, cfg.MaxFileSize, logger)
	toolServer := mcpserver.NewServer(service)

	mux := http.NewServeMux()
	mux.Handle("/", apiServer.Handler())
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(toolServer, nil))

	addr := "0.0.0.0:" + cfg.Port

	if cfg.ServerMode {
		// HTTP mode: REST API plus MCP over HTTP for remote clients
		log.Printf("Starting HTTP server on %s (API at /, MCP at /mcp)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP over stdin/stdout for local clients.
		// The HTTP surface stays up in the background for local testing.
		go func() {
			log.Printf("Starting HTTP server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("HTTP server error: %v", err)
			}
		}()

		log.Println("Starting document index MCP server (stdio mode)...")
		if err := toolServer.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}
