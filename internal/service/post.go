package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/dongne/internal/apperror"
	"github.com/sakif/dongne/internal/model"
	"github.com/sakif/dongne/internal/repository"
)

// PostService creates, edits and deletes posts.
//
// A post's region labels are computed once, in Create, from the coordinate it
// was written at. Update and Delete never look at them again.
type PostService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	resolver RegionResolver
	images   ImageRemover
	logger   *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	resolver RegionResolver,
	images ImageRemover,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		resolver: resolver,
		images:   images,
		logger:   logger,
	}
}

// NewPost is the input to PostService.Create.
type NewPost struct {
	UserID   string
	Title    string
	Content  string
	Lat      float64
	Lon      float64
	ImageURL *string // already stored by the upload collaborator, or nil
}

// PostUpdate is the input to PostService.Update. Empty Title or Content leave
// the stored value alone.
type PostUpdate struct {
	PostID      string
	UserID      string
	Title       string
	Content     string
	DeleteImage bool    // clear the current image
	NewImageURL *string // replace the current image; wins over DeleteImage
}

// Create validates the author, resolves both region labels with a single
// geocoder call and stores the post.
func (s *PostService) Create(ctx context.Context, in NewPost) (*model.Post, error) {
	userID := strings.TrimSpace(in.UserID)
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)

	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "userId is required")
	}
	if err := validateTitle(title, true); err != nil {
		return nil, err
	}
	if err := validateContent(content, true); err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fine, coarse := s.resolver.Resolve(ctx, in.Lon, in.Lat)

	post := &model.Post{
		UserID:         author.ID,
		Title:          title,
		Content:        content,
		ImageURL:       in.ImageURL,
		Lat:            in.Lat,
		Lon:            in.Lon,
		AdminDong:      fine.String(),
		UpperAdminDong: coarse.String(),
		Nickname:       author.Nickname,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("user_id", post.UserID),
		slog.String("fine_status", fine.Status.String()),
		slog.String("coarse_status", coarse.Status.String()),
	)
	return post, nil
}

func (s *PostService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "post ID is required")
	}
	return s.posts.GetByID(ctx, id)
}

// ListByUser returns the user's posts, newest first. An unknown user is a
// NotFound rather than an empty list.
func (s *PostService) ListByUser(ctx context.Context, userID string) ([]model.Post, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "userId is required")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing posts of user %s: %w", userID, err)
	}
	return posts, nil
}

// Update edits title, content and image of a post owned by in.UserID.
//
// STRATEGY: fetch, check owner, apply, save. The coordinate and both region
// labels are carried through untouched.
func (s *PostService) Update(ctx context.Context, in PostUpdate) (*model.Post, error) {
	post, err := s.ownedPost(ctx, in.PostID, in.UserID, "You are not authorized to update this post.")
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		if err := validateTitle(title, false); err != nil {
			return nil, err
		}
		post.Title = title
	}
	if content := strings.TrimSpace(in.Content); content != "" {
		if err := validateContent(content, false); err != nil {
			return nil, err
		}
		post.Content = content
	}

	previous := post.ImageURL
	switch {
	case in.NewImageURL != nil:
		post.ImageURL = in.NewImageURL
	case in.DeleteImage:
		post.ImageURL = nil
	}

	if err := s.posts.Update(ctx, post); err != nil {
		s.logger.Error("failed to update post",
			slog.String("id", post.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating post: %w", err)
	}

	if previous != nil && (post.ImageURL == nil || *post.ImageURL != *previous) {
		s.removeImage(*previous)
	}

	s.logger.Info("post updated", slog.String("id", post.ID))
	return post, nil
}

// Delete removes a post owned by userID together with its comments, likes and
// stored image.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	post, err := s.ownedPost(ctx, postID, userID, "You are not authorized to delete this post.")
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	if post.ImageURL != nil {
		s.removeImage(*post.ImageURL)
	}

	s.logger.Info("post deleted", slog.String("id", post.ID))
	return nil
}

// ownedPost loads a post and checks that userID owns it. Ownership is a plain
// string comparison of user ids.
func (s *PostService) ownedPost(ctx context.Context, postID, userID, forbidden string) (*model.Post, error) {
	postID = strings.TrimSpace(postID)
	userID = strings.TrimSpace(userID)
	if postID == "" {
		return nil, apperror.ValidationFailed("id", "post ID is required")
	}
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "userId is required")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, apperror.Forbidden(forbidden)
	}
	return post, nil
}

func (s *PostService) removeImage(url string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(url); err != nil {
		s.logger.Warn("failed to remove image",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}

func validateTitle(title string, required bool) error {
	if title == "" && required {
		return apperror.ValidationFailed("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	return nil
}

func validateContent(content string, required bool) error {
	if content == "" && required {
		return apperror.ValidationFailed("content", "content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	return nil
}
