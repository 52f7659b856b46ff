package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/traveldesk/internal/domain"
	"go.uber.org/zap"
)

// Лимит размера multipart-формы при загрузке вложения.
const maxUploadBytes = 10 << 20 // 10 MiB

// DocumentService Описываем, что нам нужно от сервиса
type DocumentService interface {
	Upload(ctx context.Context, travelRequestID, fileName string, docType domain.DocumentType,
		description *string, content io.Reader) (*domain.Document, error)
	List(ctx context.Context, travelRequestID string) ([]*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

type DocumentHandler struct {
	service DocumentService
	logger  *zap.Logger
}

func NewDocumentHandler(s DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{service: s, logger: logger.Named("document-handler")}
}

// Upload принимает multipart/form-data: файл в поле "file",
// тип документа в "document_type", описание (опционально) в "description".
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	travelRequestID := chi.URLParam(r, "travelRequestId")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, domain.NewValidationError("Invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, domain.NewValidationError("File is required"))
		return
	}
	defer file.Close()

	docType, err := domain.ParseDocumentType(r.FormValue("document_type"))
	if err != nil {
		writeError(w, err)
		return
	}

	var description *string
	if d := r.FormValue("description"); d != "" {
		description = &d
	}

	doc, err := h.service.Upload(r.Context(), travelRequestID, header.Filename, docType, description, file)
	if err != nil {
		h.logger.Error("document upload failed",
			zap.String("travel_request_id", travelRequestID), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context(), chi.URLParam(r, "travelRequestId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
