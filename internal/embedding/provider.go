// Package embedding abstracts the embedding model behind a single
// batch operation. The concrete provider is chosen once at
// construction from configuration, never by scattered conditionals.
package embedding

import "context"

// Provider turns a batch of texts into one fixed-length vector per
// text, in the same order. The vector dimension is a property of the
// configured model, not something measured at runtime.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}
