// Package gateway talks to an OpenAI-compatible inference gateway: batched
// embeddings for the index and chat completions for answer generation.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultRequestTimeout bounds every outbound call; the gateway is an
// untrusted network dependency.
const DefaultRequestTimeout = 30 * time.Second

// Auth modes, in configuration precedence order.
const (
	AuthClientCredentials = "client_credentials"
	AuthAPIKey            = "api_key"
	AuthNone              = "none"
)

// Config holds gateway connection settings. Client-credentials fields take
// precedence over the static API key; with neither, calls go out
// unauthenticated.
type Config struct {
	BaseURL           string
	EmbeddingsBaseURL string // defaults to BaseURL
	EmbeddingModel    string
	InferenceModel    string

	APIKey       string
	TokenURL     string
	ClientID     string
	ClientSecret string

	RequestTimeout time.Duration
}

// Client wraps OpenAI-compatible clients for the embeddings and inference
// endpoints, which may live behind different base URLs.
type Client struct {
	embeddings     *openai.Client
	inference      *openai.Client
	embeddingModel string
	inferenceModel string
	authMode       string
}

// NewClient builds a gateway client from config. Token acquisition for
// client-credentials mode is lazy: the first request fetches a token and the
// token source caches it until near expiry.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	if cfg.EmbeddingModel == "" {
		return nil, fmt.Errorf("embedding model is required")
	}

	embeddingsBase := cfg.EmbeddingsBaseURL
	if embeddingsBase == "" {
		embeddingsBase = cfg.BaseURL
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	// Retrying is owned by the Embedder, not the transport.
	common := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}

	authMode := AuthNone
	switch {
	case cfg.TokenURL != "" && cfg.ClientID != "" && cfg.ClientSecret != "":
		source := (&clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}).TokenSource(context.Background())
		common = append(common, option.WithMiddleware(bearerMiddleware(source)))
		authMode = AuthClientCredentials
	case cfg.APIKey != "":
		common = append(common, option.WithAPIKey(cfg.APIKey))
		authMode = AuthAPIKey
	}

	embeddings := openai.NewClient(append(common,
		option.WithBaseURL(normalizeBase(embeddingsBase)))...)
	inference := openai.NewClient(append(common,
		option.WithBaseURL(normalizeBase(cfg.BaseURL)))...)

	return &Client{
		embeddings:     &embeddings,
		inference:      &inference,
		embeddingModel: cfg.EmbeddingModel,
		inferenceModel: cfg.InferenceModel,
		authMode:       authMode,
	}, nil
}

// EmbeddingModel returns the model identifier sent with embedding requests.
// The index stamps this into its metadata.
func (c *Client) EmbeddingModel() string {
	return c.embeddingModel
}

// AuthMode reports which credential mode the client resolved to.
func (c *Client) AuthMode() string {
	return c.authMode
}

// bearerMiddleware attaches a bearer token from the token source to every
// request. Token fetch failure surfaces as ErrAuth.
func bearerMiddleware(source oauth2.TokenSource) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		token, err := source.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAuth, err)
		}
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		return next(req)
	}
}

// normalizeBase ensures the base URL ends with /v1/ exactly once, accepting
// any of host, host/, host/v1 and host/v1/.
func normalizeBase(url string) string {
	cleaned := strings.TrimRight(url, "/")
	if !strings.HasSuffix(cleaned, "/v1") {
		cleaned += "/v1"
	}
	return cleaned + "/"
}
