package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/dongne/internal/apperror"
	"github.com/sakif/dongne/internal/model"
	"github.com/sakif/dongne/internal/repository"
)

var _ repository.PostRepository = (*PostDB)(nil)

// PostDB stores posts.
type PostDB struct {
	conn *sql.DB
}

// postSelect is shared by every read so all of them return the same shape,
// author nickname included.
const postSelect = `
	SELECT p.id, p.user_id, p.title, p.content, p.image_url, p.lat, p.lon,
	       p.admin_dong, p.upper_admin_dong, p.created_at, u.nickname
	FROM posts p
	JOIN users u ON p.user_id = u.id`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (model.Post, error) {
	var (
		p        model.Post
		imageURL sql.NullString
	)
	err := s.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Content, &imageURL,
		&p.Lat, &p.Lon, &p.AdminDong, &p.UpperAdminDong,
		&p.CreatedAt, &p.Nickname,
	)
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	return p, err
}

// Create inserts a post, assigning ID and CreatedAt.
//
// xid IDs are 20 URL-safe chars and sort by creation time.
func (d *PostDB) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	post.CreatedAt = time.Now().UTC()

	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, title, content, image_url, lat, lon,
		                    admin_dong, upper_admin_dong, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.UserID,
		post.Title,
		post.Content,
		nullableString(post.ImageURL),
		post.Lat,
		post.Lon,
		post.AdminDong,
		post.UpperAdminDong,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetByID returns apperror.ErrNotFound if the post does not exist.
func (d *PostDB) GetByID(ctx context.Context, id string) (*model.Post, error) {
	p, err := scanPost(d.conn.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}
	return &p, nil
}

func (d *PostDB) ListByAdminDong(ctx context.Context, adminDong string) ([]model.Post, error) {
	return d.list(ctx, postSelect+` WHERE p.admin_dong = ? ORDER BY p.created_at DESC, p.id DESC`, adminDong)
}

func (d *PostDB) ListByUpperAdminDong(ctx context.Context, upperAdminDong string) ([]model.Post, error) {
	return d.list(ctx, postSelect+` WHERE p.upper_admin_dong = ? ORDER BY p.created_at DESC, p.id DESC`, upperAdminDong)
}

func (d *PostDB) ListByUser(ctx context.Context, userID string) ([]model.Post, error) {
	return d.list(ctx, postSelect+` WHERE p.user_id = ? ORDER BY p.created_at DESC, p.id DESC`, userID)
}

// ListAll returns every post, newest first. It is unbounded:
// viewport and radius queries filter the full set in memory.
func (d *PostDB) ListAll(ctx context.Context) ([]model.Post, error) {
	return d.list(ctx, postSelect+` ORDER BY p.created_at DESC, p.id DESC`)
}

func (d *PostDB) list(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Update writes title, content and image_url. Location columns and region
// labels are never part of an update.
func (d *PostDB) Update(ctx context.Context, post *model.Post) error {
	result, err := d.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, image_url = ? WHERE id = ?`,
		post.Title,
		post.Content,
		nullableString(post.ImageURL),
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	return expectOneRow(result, "post", post.ID)
}

// Delete removes the post; its comments and likes go with it (ON DELETE CASCADE).
func (d *PostDB) Delete(ctx context.Context, id string) error {
	result, err := d.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	return expectOneRow(result, "post", id)
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// expectOneRow turns "0 rows affected" into apperror.NotFound.
func expectOneRow(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
