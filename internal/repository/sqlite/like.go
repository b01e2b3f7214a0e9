package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/dongne/internal/repository"
)

var _ repository.LikeRepository = (*LikeDB)(nil)

// LikeDB stores likes. At most one row per (post_id, user_id).
type LikeDB struct {
	conn *sql.DB
}

// Toggle removes the like if present, otherwise adds it, inside a single
// transaction. The returned bool is the state after the toggle.
//
// With the pool capped at one connection two toggles can never interleave,
// and the UNIQUE constraint backs that up: the INSERT uses ON CONFLICT DO
// NOTHING, so even a second writer could not create a duplicate row.
func (d *LikeDB) Toggle(ctx context.Context, postID, userID string) (bool, error) {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning like toggle: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	result, err := tx.ExecContext(ctx,
		`DELETE FROM likes WHERE post_id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("sqlite: removing like: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	liked := removed == 0
	if liked {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO likes (id, post_id, user_id, created_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (post_id, user_id) DO NOTHING`,
			xid.New().String(), postID, userID, time.Now().UTC(),
		)
		if err != nil {
			return false, fmt.Errorf("sqlite: adding like: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing like toggle: %w", err)
	}
	return liked, nil
}

func (d *LikeDB) Count(ctx context.Context, postID string) (int, error) {
	var n int
	err := d.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting likes of post %s: %w", postID, err)
	}
	return n, nil
}

func (d *LikeDB) Exists(ctx context.Context, postID, userID string) (bool, error) {
	var exists bool
	err := d.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE post_id = ? AND user_id = ?)`,
		postID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking like: %w", err)
	}
	return exists, nil
}
