package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/retrieval"
)

// makeSearchHandler creates the search_index tool handler.
// The query is embedded and matched against the index; results come back
// most similar first.
func makeSearchHandler(service *retrieval.Service) func(
	context.Context, *mcp.CallToolRequest, SearchIndexInput,
) (*mcp.CallToolResult, SearchIndexOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchIndexInput) (
		*mcp.CallToolResult, SearchIndexOutput, error,
	) {
		results, err := service.Retrieve(ctx, input.Query, input.MaxResults)
		if err != nil {
			return nil, SearchIndexOutput{}, fmt.Errorf("search failed: %w", err)
		}

		if len(results) == 0 {
			return nil, SearchIndexOutput{
				Results: []SearchResult{},
				Message: "No matching chunks found. Ingest documents first or try broader search terms.",
			}, nil
		}

		out := make([]SearchResult, len(results))
		for i, r := range results {
			out[i] = SearchResult{
				Text:    r.Entry.Text,
				Score:   r.Score,
				DocName: r.Entry.DocName,
				Page:    r.Entry.Page,
				Seq:     r.Entry.Seq,
			}
		}
		return nil, SearchIndexOutput{Results: out}, nil
	}
}

// makeStatusHandler creates the index_status tool handler.
func makeStatusHandler(service *retrieval.Service) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		status := service.Status()
		return nil, StatusOutput{
			Entries:   status.EntryCount,
			Documents: status.DocCount,
			Model:     status.Model,
			Dimension: status.Dimension,
		}, nil
	}
}

// makeResetHandler creates the reset_index tool handler.
func makeResetHandler(service *retrieval.Service) func(
	context.Context, *mcp.CallToolRequest, ResetInput,
) (*mcp.CallToolResult, ResetOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ResetInput) (
		*mcp.CallToolResult, ResetOutput, error,
	) {
		if err := service.Reset(); err != nil {
			return nil, ResetOutput{}, fmt.Errorf("reset failed: %w", err)
		}
		return nil, ResetOutput{Status: "reset"}, nil
	}
}
