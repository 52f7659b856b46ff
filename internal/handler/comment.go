package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/traveldesk/internal/domain"
	"github.com/xela07ax/traveldesk/internal/infra/auth"
	"github.com/xela07ax/traveldesk/internal/lifecycle"
)

// CommentService Описываем, что нам нужно от сервиса
type CommentService interface {
	AddComment(ctx context.Context, id string, actor domain.Actor, commentText string) (*lifecycle.Outcome, error)
	ListComments(ctx context.Context, travelRequestID string) ([]*domain.Comment, error)
}

type CommentHandler struct {
	service CommentService
}

func NewCommentHandler(s CommentService) *CommentHandler {
	return &CommentHandler{service: s}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "travelRequestId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

type addCommentRequest struct {
	CommentText string `json:"comment_text"`
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("Invalid request body"))
		return
	}

	out, err := h.service.AddComment(r.Context(), chi.URLParam(r, "travelRequestId"), actor, body.CommentText)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, out.Comment)
}
