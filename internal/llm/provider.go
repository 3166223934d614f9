// Package llm abstracts the language-model collaborator behind a
// single chat-completion operation.
package llm

import "context"

// Provider abstracts a chat-completion backend (OpenAI, Anthropic).
type Provider interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Name() string
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	Content     string `json:"content"`
	Model       string `json:"model"`
	TotalTokens int    `json:"total_tokens"`
}
