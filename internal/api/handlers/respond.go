package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/askpdf/askpdf/internal/document"
	"github.com/askpdf/askpdf/internal/ingest"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps pipeline failures to status codes: bad input is the
// client's fault, the chunk cap is a payload-size condition, and
// collaborator failures are upstream errors. Full detail is logged
// server-side; the client sees the surface message.
func writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= 500 {
		slog.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, document.ErrUnsupportedType),
		errors.Is(err, document.ErrUnreadable),
		errors.Is(err, ingest.ErrEmptyDocument),
		errors.Is(err, ingest.ErrNoChunks):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrTooManyChunks):
		return http.StatusRequestEntityTooLarge
	}

	var embErr *ingest.EmbeddingError
	var persErr *ingest.PersistenceError
	if errors.As(err, &embErr) || errors.As(err, &persErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
