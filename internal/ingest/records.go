package ingest

import (
	"fmt"
	"iter"

	"github.com/askpdf/askpdf/pkg/chunker"
)

// Record is a chunk addressed for the vector index, embedding not yet
// attached.
type Record struct {
	ID         string
	Text       string
	FileID     string
	ChunkIndex int
	Page       int
}

// Records lazily turns a document's pages into addressable records.
// Chunk indices are dense and zero-based across the whole document:
// the counter runs in page order, is never reset between pages, and
// empty pages contribute nothing without breaking continuity. Record
// ids follow "{fileID}::chunk::{chunkIndex}".
//
// The sequence is a pure function of its inputs and restartable;
// nothing is materialized until the consumer pulls.
func Records(fileID string, pages []string, chunkSize, overlap int) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		chunkIndex := 0
		for pageIndex, pageText := range pages {
			if pageText == "" {
				continue
			}
			for text := range chunker.Chunk(pageText, chunkSize, overlap) {
				rec := Record{
					ID:         fmt.Sprintf("%s::chunk::%d", fileID, chunkIndex),
					Text:       text,
					FileID:     fileID,
					ChunkIndex: chunkIndex,
					Page:       pageIndex,
				}
				if !yield(rec) {
					return
				}
				chunkIndex++
			}
		}
	}
}
