package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/dongne/internal/apperror"
	"github.com/sakif/dongne/internal/model"
)

type socialFixture struct {
	comments *CommentService
	likes    *LikeService
	posts    *mockPostRepo
	users    *mockUserRepo
	author   *model.User
	post     *model.Post
}

// newSocialFixture seeds one author and one post for comment and like tests.
func newSocialFixture(t *testing.T) *socialFixture {
	t.Helper()
	f := &socialFixture{posts: newMockPostRepo(), users: newMockUserRepo()}
	f.comments = NewCommentService(&mockCommentRepo{}, f.posts, f.users, testLogger())
	f.likes = NewLikeService(newMockLikeRepo(), f.posts, f.users, testLogger())

	f.author = seedUser(t, f.users, "author")
	f.post = &model.Post{UserID: f.author.ID, Title: "t", Content: "c"}
	if err := f.posts.Create(context.Background(), f.post); err != nil {
		t.Fatalf("seeding post: %v", err)
	}
	return f
}

func TestCommentCreate(t *testing.T) {
	f := newSocialFixture(t)

	c, err := f.comments.Create(context.Background(), f.post.ID, f.author.ID, "  hello  ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.ID == "" || c.Content != "hello" || c.Nickname != "author" {
		t.Errorf("Create() = %+v", c)
	}
}

func TestCommentCreate_Errors(t *testing.T) {
	f := newSocialFixture(t)

	tests := []struct {
		name    string
		postID  string
		userID  string
		content string
		want    error
	}{
		{"empty content", f.post.ID, f.author.ID, " ", apperror.ErrValidation},
		{"too long", f.post.ID, f.author.ID, strings.Repeat("a", MaxCommentLength+1), apperror.ErrValidation},
		{"missing user id", f.post.ID, "", "x", apperror.ErrValidation},
		{"unknown post", "ghost", f.author.ID, "x", apperror.ErrNotFound},
		{"unknown user", f.post.ID, "ghost", "x", apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.comments.Create(context.Background(), tt.postID, tt.userID, tt.content)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCommentListByPost(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()
	first, _ := f.comments.Create(ctx, f.post.ID, f.author.ID, "one")
	second, _ := f.comments.Create(ctx, f.post.ID, f.author.ID, "two")

	list, err := f.comments.ListByPost(ctx, f.post.ID)
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("ListByPost() = %+v, want oldest first", list)
	}

	if _, err := f.comments.ListByPost(ctx, "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ListByPost(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestCommentUpdateAndDelete_Ownership(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()
	other := seedUser(t, f.users, "other")
	c, err := f.comments.Create(ctx, f.post.ID, f.author.ID, "mine")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := f.comments.Update(ctx, c.ID, other.ID, "hijack"); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Update() by other error = %v, want ErrForbidden", err)
	}
	if err := f.comments.Delete(ctx, c.ID, other.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() by other error = %v, want ErrForbidden", err)
	}

	if err := f.comments.Update(ctx, c.ID, f.author.ID, "edited"); err != nil {
		t.Fatalf("Update() by owner error = %v", err)
	}
	list, _ := f.comments.ListByPost(ctx, f.post.ID)
	if len(list) != 1 || list[0].Content != "edited" {
		t.Errorf("after update: %+v", list)
	}

	if err := f.comments.Delete(ctx, c.ID, f.author.ID); err != nil {
		t.Fatalf("Delete() by owner error = %v", err)
	}
	list, _ = f.comments.ListByPost(ctx, f.post.ID)
	if len(list) != 0 {
		t.Errorf("after delete: %d comments remain", len(list))
	}
}

func TestCommentUpdate_NotFound(t *testing.T) {
	f := newSocialFixture(t)

	err := f.comments.Update(context.Background(), "ghost", f.author.ID, "x")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
