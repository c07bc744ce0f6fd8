package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/extract"
	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/index"
)

type uploadResponse struct {
	DocID  string `json:"doc_id"`
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
	Pages  int    `json:"pages"`
}

type queryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type chunkResult struct {
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
	DocName string  `json:"doc_name"`
	Page    int     `json:"page"`
	Seq     int     `json:"seq"`
}

type queryResponse struct {
	Query   string        `json:"query"`
	Results []chunkResult `json:"results"`
}

type answerResponse struct {
	Answer  string        `json:"answer"`
	Query   string        `json:"query"`
	Sources []chunkResult `json:"sources"`
}

type statusResponse struct {
	Entries   int    `json:"entries"`
	Documents int    `json:"documents"`
	Model     string `json:"model,omitempty"`
	Dimension int    `json:"dimension,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// handleUpload ingests one PDF from a multipart form field named "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Some slack over the document cap for the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxFileSize+1024*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds the %d byte limit", s.maxFileSize))
			return
		}
		s.writeError(w, http.StatusBadRequest, "multipart form with a \"file\" field is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		s.writeError(w, http.StatusBadRequest, "only .pdf files are accepted")
		return
	}
	if header.Size > s.maxFileSize {
		s.writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.maxFileSize))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	summary, err := s.service.Ingest(r.Context(), data, header.Filename)
	if err != nil {
		s.logger.Warn("Ingest failed", "name", header.Filename, "error", err)
		s.writeError(w, ingestStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		DocID:  summary.DocID,
		Name:   summary.DocName,
		Chunks: summary.Chunks,
		Pages:  summary.Pages,
	})
}

// ingestStatus maps ingest errors to response codes: document problems are
// client errors, everything downstream is a bad gateway.
func ingestStatus(err error) int {
	switch {
	case errors.Is(err, extract.ErrInvalidPDF), errors.Is(err, extract.ErrNoText):
		return http.StatusBadRequest
	case errors.Is(err, index.ErrDimensionMismatch), errors.Is(err, index.ErrModelMismatch):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	results, err := s.service.Retrieve(r.Context(), req.Query, req.K)
	if err != nil {
		s.logger.Warn("Query failed", "error", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Query:   req.Query,
		Results: toChunkResults(results),
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	result, err := s.service.Answer(r.Context(), req.Query, req.K)
	if err != nil {
		s.logger.Warn("Answer failed", "error", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{
		Answer:  result.Answer,
		Query:   result.Query,
		Sources: toChunkResults(result.Sources),
	})
}

func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (queryRequest, bool) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be JSON")
		return req, false
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query must not be empty")
		return req, false
	}
	return req, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.service.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		Entries:   status.EntryCount,
		Documents: status.DocCount,
		Model:     status.Model,
		Dimension: status.Dimension,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reset(); err != nil {
		s.logger.Error("Reset failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func toChunkResults(results []index.Result) []chunkResult {
	out := make([]chunkResult, len(results))
	for i, r := range results {
		out[i] = chunkResult{
			Text:    r.Entry.Text,
			Score:   r.Score,
			DocName: r.Entry.DocName,
			Page:    r.Entry.Page,
			Seq:     r.Entry.Seq,
		}
	}
	return out
}
