package gateway

import "errors"

var (
	// ErrAuth means credential exchange with the token endpoint failed.
	// It is a configuration problem and is never retried.
	ErrAuth = errors.New("gateway authentication failed")

	// ErrEmbeddingCount means the endpoint returned a different number of
	// vectors than texts were sent. The affected ingest fails; nothing is
	// committed.
	ErrEmbeddingCount = errors.New("embedding count does not match input count")
)
