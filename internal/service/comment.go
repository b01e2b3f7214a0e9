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

// CommentService manages comments on posts. Only a comment's author may edit
// or delete it.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		users:    users,
		logger:   logger,
	}
}

func (s *CommentService) Create(ctx context.Context, postID, userID, content string) (*model.Comment, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}
	if err := requireIDs(postID, userID); err != nil {
		return nil, err
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:   postID,
		UserID:   userID,
		Content:  content,
		Nickname: author.Nickname,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("post_id", postID),
	)
	return comment, nil
}

// ListByPost returns the post's comments, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, apperror.ValidationFailed("postId", "postId is required")
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) Update(ctx context.Context, commentID, userID, content string) error {
	content, err := validateComment(content)
	if err != nil {
		return err
	}
	if _, err := s.ownedComment(ctx, commentID, userID, "You are not authorized to update this comment."); err != nil {
		return err
	}

	if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		return err
	}
	s.logger.Info("comment updated", slog.String("id", commentID))
	return nil
}

func (s *CommentService) Delete(ctx context.Context, commentID, userID string) error {
	if _, err := s.ownedComment(ctx, commentID, userID, "You are not authorized to delete this comment."); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}
	s.logger.Info("comment deleted", slog.String("id", commentID))
	return nil
}

func (s *CommentService) ownedComment(ctx context.Context, commentID, userID, forbidden string) (*model.Comment, error) {
	if strings.TrimSpace(commentID) == "" {
		return nil, apperror.ValidationFailed("commentId", "commentId is required")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, apperror.ValidationFailed("userId", "userId is required")
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, apperror.Forbidden(forbidden)
	}
	return comment, nil
}

func validateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperror.ValidationFailed("content", "content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return "", apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}
	return content, nil
}

func requireIDs(postID, userID string) error {
	if strings.TrimSpace(postID) == "" {
		return apperror.ValidationFailed("postId", "postId is required")
	}
	if strings.TrimSpace(userID) == "" {
		return apperror.ValidationFailed("userId", "userId is required")
	}
	return nil
}
