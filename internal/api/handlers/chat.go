package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/askpdf/askpdf/internal/rag"
)

// AnswerService answers a question from retrieved context.
type AnswerService interface {
	Answer(ctx context.Context, question string, topK int, fileID string) (*rag.Answer, error)
}

type ChatHandler struct {
	svc AnswerService
}

func NewChatHandler(svc AnswerService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type chatRequest struct {
	Query  string `json:"query"`
	TopK   int    `json:"top_k"`
	FileID string `json:"file_id"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query required"})
		return
	}

	ans, err := h.svc.Answer(r.Context(), req.Query, req.TopK, req.FileID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ans)
}
