// Package mcp exposes the document index to agent clients over the Model
// Context Protocol.
package mcp

// SearchIndexInput defines the input parameters for the search_index tool.
type SearchIndexInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query for finding relevant document chunks"`
	// MaxResults is the maximum number of chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=4,description=Maximum number of chunks to return"`
}

// SearchIndexOutput contains the search results.
type SearchIndexOutput struct {
	// Results is the list of matching chunks, most similar first.
	Results []SearchResult `json:"results"`
	// Message provides informational context (e.g., "No matching chunks found").
	Message string `json:"message,omitempty"`
}

// SearchResult represents a single chunk match from semantic search.
type SearchResult struct {
	// Text is the chunk text.
	Text string `json:"text"`
	// Score is the cosine similarity score.
	Score float64 `json:"score"`
	// DocName is the name of the source document.
	DocName string `json:"doc_name"`
	// Page is the 1-based page the chunk starts on.
	Page int `json:"page"`
	// Seq is the chunk's position within its document.
	Seq int `json:"seq"`
}

// StatusInput defines the input parameters for the index_status tool.
// This tool takes no parameters.
type StatusInput struct{}

// StatusOutput describes the current state of the index.
type StatusOutput struct {
	// Entries is the total number of indexed chunks.
	Entries int `json:"entries"`
	// Documents is the number of distinct ingested documents.
	Documents int `json:"documents"`
	// Model is the embedding model the index was built with.
	Model string `json:"model,omitempty"`
	// Dimension is the vector dimension established by the first ingest.
	Dimension int `json:"dimension,omitempty"`
}

// ResetInput defines the input parameters for the reset_index tool.
// This tool takes no parameters.
type ResetInput struct{}

// ResetOutput confirms the reset.
type ResetOutput struct {
	// Status is "reset" on success.
	Status string `json:"status"`
}
