package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/retrieval"
)

// Server wraps the MCP server with its retrieval dependency.
type Server struct {
	server  *mcp.Server
	service *retrieval.Service
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(service *retrieval.Service) *Server {
	impl := &mcp.Implementation{
		Name:    "document-index-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_index",
		Description: "Search the ingested documents semantically. Returns the most similar chunks with their source document, page and similarity score.",
	}, makeSearchHandler(service))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_status",
		Description: "Get the current status of the document index including chunk and document counts, embedding model and vector dimension.",
	}, makeStatusHandler(service))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reset_index",
		Description: "Clear the document index and remove its persisted file. All ingested documents are forgotten.",
	}, makeResetHandler(service))

	return &Server{
		server:  server,
		service: service,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
