package ingest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpdf/askpdf/internal/vectorindex"
)

type fakeEmbedder struct {
	batches [][]string
	err     error
	short   bool // return one embedding fewer than requested
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, slices.Clone(texts))
	n := len(texts)
	if f.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type captureIndex struct {
	upserts [][]vectorindex.Vector
	err     error
}

func (c *captureIndex) Upsert(ctx context.Context, vectors []vectorindex.Vector) error {
	if c.err != nil {
		return c.err
	}
	c.upserts = append(c.upserts, slices.Clone(vectors))
	return nil
}

func (c *captureIndex) Query(ctx context.Context, embedding []float32, topK int, fileID string) ([]vectorindex.Match, error) {
	return nil, nil
}

func (c *captureIndex) DeleteByFile(ctx context.Context, fileID string) error { return nil }

func TestIngestBatchBoundaries(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &captureIndex{}
	p := NewPipeline(embedder, index, Options{ChunkSize: 2, Overlap: 0, BatchSize: 128, MaxChunks: 20000})

	// 260 characters in 2-rune windows: exactly 130 chunks
	pages := []string{strings.Repeat("ab", 130)}
	count, err := p.Ingest(context.Background(), "f1", pages)

	require.NoError(t, err)
	assert.Equal(t, 130, count)

	require.Len(t, embedder.batches, 2)
	assert.Len(t, embedder.batches[0], 128)
	assert.Len(t, embedder.batches[1], 2)

	require.Len(t, index.upserts, 2)
	assert.Equal(t, "f1::chunk::0", index.upserts[0][0].ID)
	assert.Equal(t, "f1::chunk::127", index.upserts[0][127].ID)
	assert.Equal(t, "f1::chunk::129", index.upserts[1][1].ID)
}

func TestIngestTooManyChunksAbortsBeforeEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &captureIndex{}
	p := NewPipeline(embedder, index, Options{ChunkSize: 2, Overlap: 0, BatchSize: 128, MaxChunks: 5})

	pages := []string{strings.Repeat("ab", 10)}
	_, err := p.Ingest(context.Background(), "f1", pages)

	require.ErrorIs(t, err, ErrTooManyChunks)
	// cap is hit while buffering the first batch, so no collaborator ran
	assert.Empty(t, embedder.batches)
	assert.Empty(t, index.upserts)
}

func TestIngestTooManyChunksAfterFullBatches(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &captureIndex{}
	p := NewPipeline(embedder, index, Options{ChunkSize: 2, Overlap: 0, BatchSize: 4, MaxChunks: 5})

	pages := []string{strings.Repeat("ab", 10)}
	_, err := p.Ingest(context.Background(), "f1", pages)

	require.ErrorIs(t, err, ErrTooManyChunks)
	// exactly one full batch was persisted before the cap tripped; prior
	// batches are not rolled back
	assert.Len(t, embedder.batches, 1)
	assert.Len(t, index.upserts, 1)
}

func TestIngestEmptyDocument(t *testing.T) {
	embedder := &fakeEmbedder{}
	p := NewPipeline(embedder, &captureIndex{}, Options{})

	_, err := p.Ingest(context.Background(), "f1", []string{"", ""})
	require.ErrorIs(t, err, ErrEmptyDocument)
	assert.Empty(t, embedder.batches)
}

func TestIngestNoChunksProduced(t *testing.T) {
	p := NewPipeline(&fakeEmbedder{}, &captureIndex{}, Options{})

	// pages hold text, but everything trims away during chunking
	_, err := p.Ingest(context.Background(), "f1", []string{"   "})
	require.ErrorIs(t, err, ErrNoChunks)
}

func TestIngestEmbeddingFailure(t *testing.T) {
	cause := errors.New("provider down")
	p := NewPipeline(&fakeEmbedder{err: cause}, &captureIndex{}, Options{})

	_, err := p.Ingest(context.Background(), "f1", []string{"some text"})

	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.ErrorIs(t, err, cause)
}

func TestIngestEmbeddingLengthMismatch(t *testing.T) {
	index := &captureIndex{}
	p := NewPipeline(&fakeEmbedder{short: true}, index, Options{})

	_, err := p.Ingest(context.Background(), "f1", []string{"some text"})

	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.Empty(t, index.upserts, "a mismatched batch must never be persisted")
}

func TestIngestPersistenceFailure(t *testing.T) {
	cause := errors.New("index unreachable")
	p := NewPipeline(&fakeEmbedder{}, &captureIndex{err: cause}, Options{})

	_, err := p.Ingest(context.Background(), "f1", []string{"some text"})

	var persErr *PersistenceError
	require.ErrorAs(t, err, &persErr)
	assert.ErrorIs(t, err, cause)
}

func TestIngestPreviewTruncation(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &captureIndex{}
	p := NewPipeline(embedder, index, Options{ChunkSize: 1500, Overlap: 0})

	pages := []string{strings.Repeat("z", 1500)}
	count, err := p.Ingest(context.Background(), "f1", pages)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// the full chunk is embedded; only the stored preview is truncated
	assert.Len(t, embedder.batches[0][0], 1500)
	assert.Len(t, index.upserts[0][0].Metadata.Text, PreviewLen)
}
