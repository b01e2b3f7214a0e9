package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/dongne/internal/apperror"
	"github.com/sakif/dongne/internal/model"
	"github.com/sakif/dongne/internal/region"
)

// =========================================================================
// MOCK REPOSITORIES
// =========================================================================
//
// Hand-written in-memory fakes of the repository interfaces. They keep just
// enough behavior (ids, NotFound, newest-first ordering) for the service
// rules to be tested without SQLite.

var errStorage = errors.New("storage is down")

var baseTime = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
	err    error // returned by every call when set
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.Nickname == user.Nickname {
			return apperror.Conflict("Nickname already exists. Please choose another.")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.LastActiveAt = baseTime
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) NicknameExists(_ context.Context, nickname string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.users {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) UpdateLocation(_ context.Context, id string, lat, lon float64, adminDong string, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	u, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Lat, u.Lon, u.AdminDong, u.LastActiveAt = lat, lon, adminDong, at
	return nil
}

// mockPostRepo keeps posts in insertion order; reads return newest first.
type mockPostRepo struct {
	posts  []*model.Post
	nextID int
	err    error
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{}
}

func (m *mockPostRepo) Create(_ context.Context, post *model.Post) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	post.ID = fmt.Sprintf("post-%d", m.nextID)
	post.CreatedAt = baseTime.Add(time.Duration(m.nextID) * time.Minute)
	stored := *post
	m.posts = append(m.posts, &stored)
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.posts {
		if p.ID == id {
			result := *p
			return &result, nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

func (m *mockPostRepo) filter(keep func(*model.Post) bool) ([]model.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := []model.Post{}
	for i := len(m.posts) - 1; i >= 0; i-- {
		if keep(m.posts[i]) {
			result = append(result, *m.posts[i])
		}
	}
	return result, nil
}

func (m *mockPostRepo) ListByAdminDong(_ context.Context, adminDong string) ([]model.Post, error) {
	return m.filter(func(p *model.Post) bool { return p.AdminDong == adminDong })
}

func (m *mockPostRepo) ListByUpperAdminDong(_ context.Context, upper string) ([]model.Post, error) {
	return m.filter(func(p *model.Post) bool { return p.UpperAdminDong == upper })
}

func (m *mockPostRepo) ListByUser(_ context.Context, userID string) ([]model.Post, error) {
	return m.filter(func(p *model.Post) bool { return p.UserID == userID })
}

func (m *mockPostRepo) ListAll(_ context.Context) ([]model.Post, error) {
	return m.filter(func(*model.Post) bool { return true })
}

func (m *mockPostRepo) Update(_ context.Context, post *model.Post) error {
	if m.err != nil {
		return m.err
	}
	for _, p := range m.posts {
		if p.ID == post.ID {
			p.Title, p.Content, p.ImageURL = post.Title, post.Content, post.ImageURL
			return nil
		}
	}
	return apperror.NotFound("post", post.ID)
}

func (m *mockPostRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("post", id)
}

type mockCommentRepo struct {
	comments []*model.Comment
	nextID   int
}

func (m *mockCommentRepo) Create(_ context.Context, c *model.Comment) error {
	m.nextID++
	c.ID = fmt.Sprintf("comment-%d", m.nextID)
	c.CreatedAt = baseTime.Add(time.Duration(m.nextID) * time.Minute)
	stored := *c
	m.comments = append(m.comments, &stored)
	return nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id string) (*model.Comment, error) {
	for _, c := range m.comments {
		if c.ID == id {
			result := *c
			return &result, nil
		}
	}
	return nil, apperror.NotFound("comment", id)
}

func (m *mockCommentRepo) ListByPost(_ context.Context, postID string) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCommentRepo) UpdateContent(_ context.Context, id, content string) error {
	for _, c := range m.comments {
		if c.ID == id {
			c.Content = content
			return nil
		}
	}
	return apperror.NotFound("comment", id)
}

func (m *mockCommentRepo) Delete(_ context.Context, id string) error {
	for i, c := range m.comments {
		if c.ID == id {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("comment", id)
}

type likeKey struct{ postID, userID string }

type mockLikeRepo struct {
	likes map[likeKey]bool
}

func newMockLikeRepo() *mockLikeRepo {
	return &mockLikeRepo{likes: make(map[likeKey]bool)}
}

func (m *mockLikeRepo) Toggle(_ context.Context, postID, userID string) (bool, error) {
	k := likeKey{postID, userID}
	if m.likes[k] {
		delete(m.likes, k)
		return false, nil
	}
	m.likes[k] = true
	return true, nil
}

func (m *mockLikeRepo) Count(_ context.Context, postID string) (int, error) {
	n := 0
	for k := range m.likes {
		if k.postID == postID {
			n++
		}
	}
	return n, nil
}

func (m *mockLikeRepo) Exists(_ context.Context, postID, userID string) (bool, error) {
	return m.likes[likeKey{postID, userID}], nil
}

// =========================================================================
// STUB RESOLVER AND IMAGE STORE
// =========================================================================

// stubResolver returns fixed results and counts how often it was asked.
type stubResolver struct {
	fine   region.Result
	coarse region.Result
	calls  int
}

func resolvedTo(fine, coarse string) *stubResolver {
	return &stubResolver{
		fine:   region.Result{Depth: region.Fine, Status: region.Resolved, Label: fine},
		coarse: region.Result{Depth: region.Coarse, Status: region.Resolved, Label: coarse},
	}
}

func failingResolver(status region.Status) *stubResolver {
	return &stubResolver{
		fine:   region.Result{Depth: region.Fine, Status: status},
		coarse: region.Result{Depth: region.Coarse, Status: status},
	}
}

func (s *stubResolver) ResolveFine(context.Context, float64, float64) region.Result {
	s.calls++
	return s.fine
}

func (s *stubResolver) ResolveCoarse(context.Context, float64, float64) region.Result {
	s.calls++
	return s.coarse
}

func (s *stubResolver) Resolve(context.Context, float64, float64) (region.Result, region.Result) {
	s.calls++
	return s.fine, s.coarse
}

type mockImages struct {
	removed []string
}

func (m *mockImages) Remove(url string) error {
	m.removed = append(m.removed, url)
	return nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// seedUser stores a user directly in the mock, bypassing UserService.
func seedUser(t *testing.T, users *mockUserRepo, nickname string) *model.User {
	t.Helper()
	u := &model.User{Nickname: nickname, Lat: 36.3504, Lon: 127.3845}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return u
}

func strPtr(s string) *string { return &s }
