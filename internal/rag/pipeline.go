// Package rag implements the two-stage retrieval-augmented answer
// protocol: retrieve the nearest chunks for a question, then generate a
// grounded answer from them. There is no branching, retrying, or
// fallback between the stages; failures propagate.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/askpdf/askpdf/internal/embedding"
	"github.com/askpdf/askpdf/internal/llm"
	"github.com/askpdf/askpdf/internal/vectorindex"
)

const DefaultTopK = 5

const systemPrompt = "Use ONLY the provided sources; if unsure, say you don't know. Cite like [1],[2] matching the source order."

type Pipeline struct {
	embedder embedding.Provider
	index    vectorindex.Index
	llm      llm.Provider
	model    string
}

func NewPipeline(embedder embedding.Provider, index vectorindex.Index, provider llm.Provider, model string) *Pipeline {
	return &Pipeline{embedder: embedder, index: index, llm: provider, model: model}
}

// Answer is the assembled response plus the ordered contexts it was
// grounded on, so callers can render citations.
type Answer struct {
	Answer   string              `json:"answer"`
	Contexts []vectorindex.Match `json:"contexts"`
}

// Answer retrieves the topK most similar chunks (optionally restricted
// to one file by equality filter) and generates a grounded answer from
// them. The index's returned order is authoritative and is never
// re-sorted here. Zero retrieved contexts is a valid state: generation
// still runs and the model is expected to report it cannot answer.
func (p *Pipeline) Answer(ctx context.Context, question string, topK int, fileID string) (*Answer, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	// Retrieve
	vecs, err := p.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed question: provider returned %d embeddings for one text", len(vecs))
	}

	contexts, err := p.index.Query(ctx, vecs[0], topK, fileID)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	// Generate
	sources := make([]string, len(contexts))
	for i, c := range contexts {
		sources[i] = c.Text
	}

	resp, err := p.llm.ChatCompletion(ctx, llm.ChatRequest{
		Model:       p.model,
		Temperature: 0.2,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Question: %s\n\nSources:\n%s", question, strings.Join(sources, "\n\n"))},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	if contexts == nil {
		contexts = []vectorindex.Match{}
	}
	return &Answer{
		Answer:   strings.TrimSpace(resp.Content),
		Contexts: contexts,
	}, nil
}
