// Package chunker turns raw extracted text into clean, bounded,
// overlapping windows suitable for embedding.
package chunker

import (
	"iter"
	"strings"
)

const (
	DefaultChunkSize = 1200
	DefaultOverlap   = 200
)

// Normalize cleans raw extracted text: null bytes are stripped, CRLF/CR
// line endings become LF, runs of spaces and tabs collapse to a single
// space, and surrounding whitespace is trimmed. It is idempotent and
// total over any input string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))

	prevCR := false
	pendingSpace := false
	for _, r := range raw {
		switch r {
		case '\x00':
			// stripped; does not break a whitespace run
		case '\r':
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteByte('\n')
			prevCR = true
		case '\n':
			if prevCR {
				// second half of a CRLF, already emitted
				prevCR = false
				continue
			}
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteByte('\n')
		case ' ', '\t':
			pendingSpace = true
			prevCR = false
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
			prevCR = false
		}
	}

	return strings.TrimSpace(b.String())
}

// Chunk returns a lazy sequence of trimmed windows of at most chunkSize
// runes, consecutive windows sharing up to overlap runes. The text is
// normalized first; windows that trim to empty are dropped but still
// advance the scan. The sequence is finite and restartable, and each
// window is produced on demand, so total work is O(len(text)).
//
// An overlap >= chunkSize would stall the scan, so it is clamped to
// chunkSize/5 to guarantee forward progress.
func Chunk(text string, chunkSize, overlap int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if chunkSize <= 0 {
			chunkSize = DefaultChunkSize
		}
		if overlap < 0 {
			overlap = 0
		}
		if overlap >= chunkSize {
			overlap = chunkSize / 5
		}

		runes := []rune(Normalize(text))
		n := len(runes)
		if n == 0 {
			return
		}

		step := max(1, chunkSize-overlap)
		for start := 0; start < n; start += step {
			end := min(start+chunkSize, n)
			window := strings.TrimSpace(string(runes[start:end]))
			if window != "" && !yield(window) {
				return
			}
			if end >= n {
				return
			}
		}
	}
}
