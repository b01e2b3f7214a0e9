package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/dongne/internal/model"
	"github.com/sakif/dongne/internal/service"
)

// CommentHandler serves comment CRUD. Edits and deletes are owner-only.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type commentRequest struct {
	UserID  string `json:"userId" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type commentOwnerRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type createCommentResponse struct {
	Message   string `json:"message"`
	CommentID string `json:"commentId"`
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	Content   string `json:"content"`
}

// HandleCreate adds a comment to a post.
//
// HTTP: POST /posts/{postId}/comments
// REQUEST BODY: {"userId": "...", "content": "..."}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.comments.Create(r.Context(), chi.URLParam(r, "postId"), req.UserID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createCommentResponse{
		Message:   "Comment created successfully!",
		CommentID: c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Content:   c.Content,
	})
}

// HandleList returns a post's comments, oldest first.
//
// HTTP: GET /posts/{postId}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByPost(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Comment{"comments": comments})
}

// HTTP: PUT /posts/comments/{commentId}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.comments.Update(r.Context(), chi.URLParam(r, "commentId"), req.UserID, req.Content); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Comment updated successfully!"})
}

// HTTP: DELETE /posts/comments/{commentId}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req commentOwnerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.comments.Delete(r.Context(), chi.URLParam(r, "commentId"), req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Comment deleted successfully!"})
}
