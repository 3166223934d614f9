package document

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpdf/askpdf/internal/ingest"
	"github.com/askpdf/askpdf/internal/lock"
	"github.com/askpdf/askpdf/internal/storage"
	"github.com/askpdf/askpdf/internal/vectorindex"
)

// fakeExtractor returns canned pages regardless of the stored file.
type fakeExtractor struct {
	pages []string
	err   error
}

func (f *fakeExtractor) ExtractPages(path string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type unitEmbedder struct{}

func (unitEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func newTestService(t *testing.T, extractor *fakeExtractor, index vectorindex.Index) *Service {
	t.Helper()
	pipeline := ingest.NewPipeline(unitEmbedder{}, index, ingest.Options{ChunkSize: 8, Overlap: 0})
	store := storage.NewLocalStorage(t.TempDir())
	return NewService(store, extractor, pipeline, index, lock.NewLocalLocker())
}

func TestAddRejectsNonPDF(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{}, vectorindex.NewMemoryIndex())

	_, err := svc.Add(context.Background(), "notes.txt", "text/plain", strings.NewReader("hi"))
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestAddIngestsDocument(t *testing.T) {
	index := vectorindex.NewMemoryIndex()
	svc := newTestService(t, &fakeExtractor{pages: []string{"page one text", "page two"}}, index)

	res, err := svc.Add(context.Background(), "report.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)

	assert.Len(t, res.FileID, 32, "file id is a hex-encoded uuid")
	assert.Greater(t, res.Chunks, 0)
	assert.Equal(t, res.Chunks, index.Len())
}

func TestAddEmptyDocument(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{pages: []string{"", ""}}, vectorindex.NewMemoryIndex())

	_, err := svc.Add(context.Background(), "scan.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.ErrorIs(t, err, ingest.ErrEmptyDocument)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{}, vectorindex.NewMemoryIndex())

	require.NoError(t, svc.Delete(context.Background(), "never-ingested"))
}

func TestUpdateReplacesAllVectors(t *testing.T) {
	ctx := context.Background()
	index := vectorindex.NewMemoryIndex()
	extractor := &fakeExtractor{pages: []string{"original content of the document"}}
	svc := newTestService(t, extractor, index)

	res, err := svc.Add(ctx, "doc.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	fileID := res.FileID

	extractor.pages = []string{"replaced"}
	updated, err := svc.Update(ctx, fileID, "doc.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, fileID, updated.FileID)

	// no chunk from the old generation survives
	matches, err := index.Query(ctx, []float32{1, 0}, 50, fileID)
	require.NoError(t, err)
	require.Len(t, matches, updated.Chunks)
	for _, m := range matches {
		assert.NotContains(t, m.Text, "original")
	}
}

func TestUpdateDeletesBeforeReingest(t *testing.T) {
	// an update whose ingestion fails must still have cleared the old
	// vectors: delete happens first
	ctx := context.Background()
	index := vectorindex.NewMemoryIndex()
	extractor := &fakeExtractor{pages: []string{"old text to be removed"}}
	svc := newTestService(t, extractor, index)

	res, err := svc.Add(ctx, "doc.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)

	extractor.pages = []string{"", ""}
	_, err = svc.Update(ctx, res.FileID, "doc.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.ErrorIs(t, err, ingest.ErrEmptyDocument)
	assert.Equal(t, 0, index.Len())
}
