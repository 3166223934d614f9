package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/askpdf/askpdf/internal/document"
)

// DocumentService is the slice of the document lifecycle the HTTP
// layer needs.
type DocumentService interface {
	Add(ctx context.Context, filename, contentType string, data io.Reader) (*document.IngestResult, error)
	Update(ctx context.Context, fileID, filename, contentType string, data io.Reader) (*document.IngestResult, error)
	Delete(ctx context.Context, fileID string) error
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

const maxUploadBytes = 64 << 20

func (h *DocumentHandler) Add(w http.ResponseWriter, r *http.Request) {
	file, header, ok := uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	res, err := h.svc.Add(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	file, header, ok := uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	res, err := h.svc.Update(r.Context(), fileID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	if err := h.svc.Delete(r.Context(), fileID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "file_id": fileID})
}

func uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return nil, nil, false
	}
	return file, header, true
}
