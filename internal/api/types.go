package api

import (
	"context"
	"encoding/json"

	"streamlist/internal/pipeline"
)

// BatchRunner resolves a batch of titles. pipeline.Runner satisfies it.
type BatchRunner interface {
	RunBatch(ctx context.Context, titles []string) ([]pipeline.Movie, error)
}

// ListImporter turns a list URL into titles. letterboxd.Importer satisfies it.
type ListImporter interface {
	Import(ctx context.Context, listURL string) ([]string, error)
}

// FetchMoviesRequest is the body of POST /api/fetch-movies. Titles is kept
// raw so a malformed list degrades to "no titles" instead of a decode error.
type FetchMoviesRequest struct {
	Titles json.RawMessage `json:"titles"`
}

// TitlesResponse is returned by the list import route.
type TitlesResponse struct {
	Titles []string `json:"titles"`
}

// ShareRequest is the body of POST /api/share.
type ShareRequest struct {
	Titles   []string `json:"titles"`
	Services []string `json:"services"`
}

// ShareResponse carries an encoded share token.
type ShareResponse struct {
	State string `json:"state"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}
