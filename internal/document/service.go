// Package document owns the document lifecycle: uploads are saved,
// extracted, and ingested; updates fully replace a file's vectors;
// deletes remove them. All mutation is scoped by file id and
// serialized per file id.
package document

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/askpdf/askpdf/internal/extract"
	"github.com/askpdf/askpdf/internal/ingest"
	"github.com/askpdf/askpdf/internal/lock"
	"github.com/askpdf/askpdf/internal/storage"
	"github.com/askpdf/askpdf/internal/vectorindex"
)

// ErrUnsupportedType rejects non-PDF uploads before any side effect.
var ErrUnsupportedType = errors.New("unsupported content type, upload a PDF")

// ErrUnreadable marks a document the extractor could not open.
var ErrUnreadable = errors.New("could not read document")

type Service struct {
	storage   storage.Storage
	extractor extract.PageExtractor
	pipeline  *ingest.Pipeline
	index     vectorindex.Index
	locks     lock.Locker
}

func NewService(store storage.Storage, extractor extract.PageExtractor, pipeline *ingest.Pipeline, index vectorindex.Index, locks lock.Locker) *Service {
	return &Service{
		storage:   store,
		extractor: extractor,
		pipeline:  pipeline,
		index:     index,
		locks:     locks,
	}
}

type IngestResult struct {
	FileID string `json:"file_id"`
	Chunks int    `json:"chunks"`
}

// NewFileID returns a fresh opaque file identifier (hex-encoded UUID).
func NewFileID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// Add ingests a new document under a fresh file id.
func (s *Service) Add(ctx context.Context, filename, contentType string, data io.Reader) (*IngestResult, error) {
	if !isPDF(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	fileID := NewFileID()
	release, err := s.locks.Acquire(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("acquire file lock: %w", err)
	}
	defer release()

	return s.ingestFile(ctx, fileID, filename, data)
}

// Update replaces a document's vectors under the same file id. The
// delete completes before any new record is persisted, so readers
// never observe a mix of old and new chunks for one file id.
func (s *Service) Update(ctx context.Context, fileID, filename, contentType string, data io.Reader) (*IngestResult, error) {
	if !isPDF(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	release, err := s.locks.Acquire(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("acquire file lock: %w", err)
	}
	defer release()

	if err := s.index.DeleteByFile(ctx, fileID); err != nil {
		return nil, &ingest.PersistenceError{Err: err}
	}

	return s.ingestFile(ctx, fileID, filename, data)
}

// Delete removes all vectors for a file id. Deleting an unknown id
// succeeds.
func (s *Service) Delete(ctx context.Context, fileID string) error {
	release, err := s.locks.Acquire(ctx, fileID)
	if err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer release()

	if err := s.index.DeleteByFile(ctx, fileID); err != nil {
		return &ingest.PersistenceError{Err: err}
	}
	return nil
}

func (s *Service) ingestFile(ctx context.Context, fileID, filename string, data io.Reader) (*IngestResult, error) {
	name := fileID + extension(filename)
	path, err := s.storage.Save(ctx, name, data)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	// the upload only exists to be extracted from
	defer func() {
		if err := s.storage.Remove(ctx, name); err != nil {
			slog.Warn("failed to remove upload", "file_id", fileID, "error", err)
		}
	}()

	pages, err := s.extractor.ExtractPages(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	chunks, err := s.pipeline.Ingest(ctx, fileID, pages)
	if err != nil {
		return nil, err
	}

	return &IngestResult{FileID: fileID, Chunks: chunks}, nil
}

func isPDF(contentType string) bool {
	switch contentType {
	case "application/pdf", "application/octet-stream":
		return true
	}
	return false
}

func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".pdf"
	}
	return ext
}
