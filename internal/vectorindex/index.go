// Package vectorindex defines the contract with the external vector
// index and the record shape persisted there. The rest of the service
// only ever sees these types; backend SDK shapes stay behind the
// adapters in this package.
package vectorindex

import "context"

// Metadata is the per-vector payload stored alongside the embedding.
// Text holds a bounded preview of the chunk, not necessarily the full
// text that was embedded.
type Metadata struct {
	FileID     string `json:"file_id"`
	ChunkIndex int    `json:"chunk_index"`
	Page       int    `json:"page"`
	Text       string `json:"text"`
}

// Vector is one record to persist: a deterministic id, the embedding
// values, and the metadata payload.
type Vector struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// Match is one query hit, ranked by the backend. Callers must treat the
// returned order as authoritative; the similarity metric and tie-break
// belong to the backend.
type Match struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Index is the vector index capability consumed by the ingestion and
// retrieval pipelines. Query with fileID == "" searches all files;
// otherwise results are restricted to that file by equality filter.
// DeleteByFile is idempotent: deleting an unknown file id is not an
// error.
type Index interface {
	Upsert(ctx context.Context, vectors []Vector) error
	Query(ctx context.Context, embedding []float32, topK int, fileID string) ([]Match, error)
	DeleteByFile(ctx context.Context, fileID string) error
}
