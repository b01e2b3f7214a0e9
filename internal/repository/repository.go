// Package repository declares the storage contracts the service layer depends
// on. repository/sqlite implements them.
package repository

import (
	"context"
	"time"

	"github.com/sakif/dongne/internal/model"
)

type UserRepository interface {
	// Create assigns ID and LastActiveAt. A taken nickname yields apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	NicknameExists(ctx context.Context, nickname string) (bool, error)
	// UpdateLocation stores the new coordinate and label and refreshes LastActiveAt.
	UpdateLocation(ctx context.Context, id string, lat, lon float64, adminDong string, at time.Time) error
}

// PostRepository reads always join the author's nickname and list newest
// first. Equal timestamps fall back to id order, which follows insertion.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListByAdminDong(ctx context.Context, adminDong string) ([]model.Post, error)
	ListByUpperAdminDong(ctx context.Context, upperAdminDong string) ([]model.Post, error)
	ListByUser(ctx context.Context, userID string) ([]model.Post, error)
	// ListAll is an unbounded scan used by the viewport and radius queries.
	ListAll(ctx context.Context) ([]model.Post, error)
	// Update writes Title, Content and ImageURL only.
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	// ListByPost returns comments oldest first.
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

type LikeRepository interface {
	// Toggle flips the (postID, userID) like atomically and returns the new state.
	Toggle(ctx context.Context, postID, userID string) (liked bool, err error)
	Count(ctx context.Context, postID string) (int, error)
	Exists(ctx context.Context, postID, userID string) (bool, error)
}
