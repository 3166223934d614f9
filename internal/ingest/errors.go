package ingest

import "errors"

// Sentinel conditions detected by the pipeline itself, before or while
// streaming chunks. Handlers map these to client-error responses.
var (
	// ErrEmptyDocument: extraction yielded zero text across all pages
	// (image-only PDF and the like).
	ErrEmptyDocument = errors.New("no extractable text found in document")

	// ErrNoChunks: pages held text but chunking emitted nothing, e.g.
	// everything trimmed to whitespace.
	ErrNoChunks = errors.New("chunking produced no chunks")

	// ErrTooManyChunks: the document exceeded the configured chunk cap.
	ErrTooManyChunks = errors.New("document produced too many chunks")
)

// EmbeddingError marks a failure of the embedding collaborator,
// including a response whose length does not match the request.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return "embedding failed: " + e.Err.Error() }
func (e *EmbeddingError) Unwrap() error { return e.Err }

// PersistenceError marks a failure of the vector index collaborator.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "vector upsert failed: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
