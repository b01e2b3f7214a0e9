package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/dongne/internal/service"
)

type LikeHandler struct {
	likes  *service.LikeService
	logger *slog.Logger
}

func NewLikeHandler(likes *service.LikeService, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{likes: likes, logger: logger}
}

type likeRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type toggleLikeResponse struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
}

// HandleToggle flips the caller's like on a post: 201 when a like was added,
// 200 when it was removed.
//
// HTTP: POST /posts/{postId}/likes
// REQUEST BODY: {"userId": "..."}
func (h *LikeHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	var req likeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	liked, err := h.likes.Toggle(r.Context(), chi.URLParam(r, "postId"), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	if liked {
		writeJSON(w, http.StatusCreated, toggleLikeResponse{Message: "Like added successfully!", Liked: true})
		return
	}
	writeJSON(w, http.StatusOK, toggleLikeResponse{Message: "Like removed successfully!", Liked: false})
}

// HTTP: GET /posts/{postId}/likes/count
func (h *LikeHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.likes.Count(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"likeCount": n})
}

// HTTP: GET /posts/{postId}/likes/status/{userId}
func (h *LikeHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	liked, err := h.likes.Status(r.Context(), chi.URLParam(r, "postId"), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}
