package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/dongne/internal/apperror"
	"github.com/sakif/dongne/internal/model"
	"github.com/sakif/dongne/internal/service"
)

// multipartMemory is how much of a multipart body ParseMultipartForm keeps
// in memory before spilling file parts to temporary files.
const multipartMemory = 8 << 20

// formOverhead is the room left in a multipart body for the text fields and
// part headers on top of the image itself.
const formOverhead = 1 << 20

// ImageStore saves uploaded images and removes them again. upload.Store is
// the production implementation.
type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(url string) error
	MaxBytes() int64
}

// PostHandler serves post CRUD.
//
// Create and update take multipart forms because they may carry an image.
// The image is stored before the service runs; if the service then rejects
// the request the stored file is removed again.
type PostHandler struct {
	posts  *service.PostService
	images ImageStore
	logger *slog.Logger
}

func NewPostHandler(posts *service.PostService, images ImageStore, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, images: images, logger: logger}
}

type createPostResponse struct {
	Message        string  `json:"message"`
	PostID         string  `json:"postId"`
	UserID         string  `json:"userId"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	ImageURL       *string `json:"imageUrl"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	AdminDong      string  `json:"adminDong"`
	UpperAdminDong string  `json:"upperAdminDong"`
}

type postMessageResponse struct {
	Message string `json:"message"`
	PostID  string `json:"postId"`
}

// HandleCreate creates a post at the given coordinate.
//
// HTTP: POST /posts
// FORM: userId, title, content, lat, lon, image (optional file)
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		writeError(w, err)
		return
	}

	lat, err := formFloat(r, "lat")
	if err != nil {
		writeError(w, err)
		return
	}
	lon, err := formFloat(r, "lon")
	if err != nil {
		writeError(w, err)
		return
	}
	if lat == nil || lon == nil {
		writeError(w, apperror.ValidationFailed("location", "lat and lon are required"))
		return
	}

	imageURL, err := h.saveImage(r)
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), service.NewPost{
		UserID:   r.FormValue("userId"),
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		Lat:      *lat,
		Lon:      *lon,
		ImageURL: imageURL,
	})
	if err != nil {
		h.discardImage(imageURL)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createPostResponse{
		Message:        "Post created successfully!",
		PostID:         post.ID,
		UserID:         post.UserID,
		Title:          post.Title,
		Content:        post.Content,
		ImageURL:       post.ImageURL,
		Lat:            post.Lat,
		Lon:            post.Lon,
		AdminDong:      post.AdminDong,
		UpperAdminDong: post.UpperAdminDong,
	})
}

// HandleGet returns one post with its author's nickname.
//
// HTTP: GET /posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleListByUser returns every post a user wrote, newest first.
//
// HTTP: GET /posts/user/{userId}
func (h *PostHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Post{"posts": posts})
}

// HandleUpdate edits a post. Only its author may do so.
//
// HTTP: PUT /posts/{id}
// FORM: userId, title, content, image_url_delete_flag, image_url_update_flag, image
//
// Empty title or content keep the stored value. image_url_update_flag=true
// must come with an image file, which replaces the current image.
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		writeError(w, err)
		return
	}

	replace := formBool(r, "image_url_update_flag")
	if replace && formImage(r) == nil {
		writeError(w, apperror.ValidationFailed("image", "An image file is required when image_url_update_flag is set"))
		return
	}

	var newImage *string
	if replace {
		url, err := h.saveImage(r)
		if err != nil {
			writeError(w, err)
			return
		}
		newImage = url
	}

	post, err := h.posts.Update(r.Context(), service.PostUpdate{
		PostID:      chi.URLParam(r, "id"),
		UserID:      r.FormValue("userId"),
		Title:       r.FormValue("title"),
		Content:     r.FormValue("content"),
		DeleteImage: formBool(r, "image_url_delete_flag"),
		NewImageURL: newImage,
	})
	if err != nil {
		h.discardImage(newImage)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postMessageResponse{
		Message: "Post updated successfully!",
		PostID:  post.ID,
	})
}

type deletePostRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// HandleDelete removes a post together with its comments and likes.
//
// HTTP: DELETE /posts/{id}
// REQUEST BODY: {"userId": "..."}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req deletePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	postID := chi.URLParam(r, "id")
	if err := h.posts.Delete(r.Context(), postID, req.UserID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postMessageResponse{
		Message: "Post deleted successfully!",
		PostID:  postID,
	})
}

// parseForm reads a multipart body, or a urlencoded one when the client sent
// no file at all.
func (h *PostHandler) parseForm(w http.ResponseWriter, r *http.Request) error {
	limit := h.images.MaxBytes() + formOverhead
	if r.ContentLength > limit {
		return &http.MaxBytesError{Limit: limit}
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return err
	}
	h.logger.Warn("failed to parse post form", slog.String("error", err.Error()))
	return apperror.ValidationFailed("body", "Invalid form body")
}

// saveImage stores the "image" file part if there is one.
func (h *PostHandler) saveImage(r *http.Request) (*string, error) {
	fh := formImage(r)
	if fh == nil {
		return nil, nil
	}
	url, err := h.images.Save(fh)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (h *PostHandler) discardImage(url *string) {
	if url == nil {
		return
	}
	if err := h.images.Remove(*url); err != nil {
		h.logger.Warn("failed to remove orphaned image",
			slog.String("url", *url),
			slog.String("error", err.Error()),
		)
	}
}

func formImage(r *http.Request) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// formBool treats "true" and "1" (any case) as set.
func formBool(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(name))) {
	case "true", "1":
		return true
	}
	return false
}
