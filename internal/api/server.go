// Package api exposes the retrieval service over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/VPC-Repo/Dell-Inference-Blueprints/internal/retrieval"
)

// DefaultMaxFileSize caps uploaded documents at 50MB.
const DefaultMaxFileSize = 50 * 1024 * 1024

// Server routes HTTP requests to the retrieval service. It holds no
// retrieval logic of its own.
type Server struct {
	service     *retrieval.Service
	maxFileSize int64
	logger      *slog.Logger
}

// NewServer creates an HTTP server over the given retrieval service.
// maxFileSize <= 0 selects the default upload cap.
func NewServer(service *retrieval.Service, maxFileSize int64, logger *slog.Logger) *Server {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Handler returns the routing handler with CORS applied to every route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /documents", s.handleUpload)
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("POST /answer", s.handleAnswer)
	mux.HandleFunc("GET /index/status", s.handleStatus)
	mux.HandleFunc("DELETE /index", s.handleReset)
	mux.HandleFunc("GET /health", s.handleHealth)
	return withCORS(mux)
}

// withCORS applies permissive cross-origin headers and answers preflight
// requests directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
