// Package ingest drives the document-to-vector pipeline: pages are
// chunked into records, embedded in order, and upserted to the vector
// index in bounded batches.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/askpdf/askpdf/internal/vectorindex"
	"github.com/askpdf/askpdf/pkg/chunker"
)

const (
	DefaultBatchSize = 128
	DefaultMaxChunks = 20000

	// PreviewLen bounds the chunk text stored in vector metadata. The
	// full text is embedded; only the stored preview is truncated.
	PreviewLen = 1000
)

// Embedder is the embedding collaborator: texts in, one fixed-length
// vector per text out, in the same order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	ChunkSize int
	Overlap   int
	BatchSize int
	MaxChunks int
}

func (o *Options) applyDefaults() {
	if o.ChunkSize <= 0 {
		o.ChunkSize = chunker.DefaultChunkSize
	}
	if o.Overlap < 0 {
		o.Overlap = chunker.DefaultOverlap
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxChunks <= 0 {
		o.MaxChunks = DefaultMaxChunks
	}
}

// Pipeline streams records through the embed and upsert collaborators.
// Peak memory is O(BatchSize) regardless of document size.
type Pipeline struct {
	embedder Embedder
	index    vectorindex.Index
	opts     Options
}

func NewPipeline(embedder Embedder, index vectorindex.Index, opts Options) *Pipeline {
	opts.applyDefaults()
	return &Pipeline{embedder: embedder, index: index, opts: opts}
}

// Ingest chunks, embeds, and persists a document's pages, returning the
// number of chunks produced. Batches are embedded and upserted strictly
// in chunk-index order; a full batch is flushed before more records are
// buffered. The chunk cap is checked incrementally so an oversized
// document aborts without materializing the rest.
//
// Failures are distinguishable: ErrEmptyDocument, ErrNoChunks,
// ErrTooManyChunks, *EmbeddingError, *PersistenceError.
func (p *Pipeline) Ingest(ctx context.Context, fileID string, pages []string) (int, error) {
	totalText := 0
	for _, pg := range pages {
		totalText += len(pg)
	}
	if totalText == 0 {
		return 0, ErrEmptyDocument
	}

	batch := make([]Record, 0, p.opts.BatchSize)
	count := 0
	for rec := range Records(fileID, pages, p.opts.ChunkSize, p.opts.Overlap) {
		count++
		if count > p.opts.MaxChunks {
			return 0, fmt.Errorf("%w (limit %d)", ErrTooManyChunks, p.opts.MaxChunks)
		}

		batch = append(batch, rec)
		if len(batch) >= p.opts.BatchSize {
			if err := p.flush(ctx, batch); err != nil {
				return 0, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := p.flush(ctx, batch); err != nil {
			return 0, err
		}
	}

	if count == 0 {
		return 0, ErrNoChunks
	}

	slog.Info("document ingested", "file_id", fileID, "pages", len(pages), "chunks", count)
	return count, nil
}

func (p *Pipeline) flush(ctx context.Context, batch []Record) error {
	texts := make([]string, len(batch))
	for i, r := range batch {
		texts[i] = r.Text
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return &EmbeddingError{Err: err}
	}
	if len(embeddings) != len(batch) {
		// zipping records[i] with embeddings[i] would be wrong; never
		// truncate or pad
		return &EmbeddingError{Err: fmt.Errorf("provider returned %d embeddings for %d texts", len(embeddings), len(batch))}
	}

	vectors := make([]vectorindex.Vector, len(batch))
	for i, r := range batch {
		vectors[i] = vectorindex.Vector{
			ID:     r.ID,
			Values: embeddings[i],
			Metadata: vectorindex.Metadata{
				FileID:     r.FileID,
				ChunkIndex: r.ChunkIndex,
				Page:       r.Page,
				Text:       truncate(r.Text, PreviewLen),
			},
		}
	}

	if err := p.index.Upsert(ctx, vectors); err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
