package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/dongne/internal/apperror"
	"github.com/sakif/dongne/internal/repository"
)

// LikeService flips and reads the per-(post, user) like state.
type LikeService struct {
	likes  repository.LikeRepository
	posts  repository.PostRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewLikeService(
	likes repository.LikeRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *LikeService {
	return &LikeService{
		likes:  likes,
		posts:  posts,
		users:  users,
		logger: logger,
	}
}

// Toggle likes the post if userID has not liked it yet, and unlikes it
// otherwise. It returns the new state. The flip itself is atomic in storage.
func (s *LikeService) Toggle(ctx context.Context, postID, userID string) (bool, error) {
	if err := requireIDs(postID, userID); err != nil {
		return false, err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return false, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return false, err
	}

	liked, err := s.likes.Toggle(ctx, postID, userID)
	if err != nil {
		return false, fmt.Errorf("toggling like: %w", err)
	}

	s.logger.Info("like toggled",
		slog.String("post_id", postID),
		slog.String("user_id", userID),
		slog.Bool("liked", liked),
	)
	return liked, nil
}

func (s *LikeService) Count(ctx context.Context, postID string) (int, error) {
	if strings.TrimSpace(postID) == "" {
		return 0, apperror.ValidationFailed("postId", "postId is required")
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return 0, err
	}

	n, err := s.likes.Count(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("counting likes: %w", err)
	}
	return n, nil
}

// Status reports whether userID currently likes postID.
func (s *LikeService) Status(ctx context.Context, postID, userID string) (bool, error) {
	if err := requireIDs(postID, userID); err != nil {
		return false, err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return false, err
	}

	liked, err := s.likes.Exists(ctx, postID, userID)
	if err != nil {
		return false, fmt.Errorf("reading like status: %w", err)
	}
	return liked, nil
}
