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

var _ repository.CommentRepository = (*CommentDB)(nil)

// CommentDB stores comments.
type CommentDB struct {
	conn *sql.DB
}

const commentSelect = `
	SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, u.nickname
	FROM comments c
	JOIN users u ON c.user_id = u.id`

func (d *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now().UTC()

	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, user_id, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PostID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment on post %s: %w", comment.PostID, err)
	}
	return nil
}

func (d *CommentDB) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := d.conn.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id).Scan(
		&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.Nickname,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return &c, nil
}

func (d *CommentDB) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := d.conn.QueryContext(ctx,
		commentSelect+` WHERE c.post_id = ? ORDER BY c.created_at ASC, c.id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of post %s: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.Nickname); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

func (d *CommentDB) UpdateContent(ctx context.Context, id, content string) error {
	result, err := d.conn.ExecContext(ctx,
		`UPDATE comments SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", id, err)
	}
	return expectOneRow(result, "comment", id)
}

func (d *CommentDB) Delete(ctx context.Context, id string) error {
	result, err := d.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	return expectOneRow(result, "comment", id)
}
