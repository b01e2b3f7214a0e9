package model

import "time"

// Comment belongs to one post and one user. Comments carry no location.
type Comment struct {
	ID        string    `json:"id"         db:"id"`
	PostID    string    `json:"post_id"    db:"post_id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	Content   string    `json:"content"    db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Nickname  string    `json:"nickname"   db:"nickname"` // joined from users
}

// Like marks that a user likes a post. At most one row exists per
// (PostID, UserID); its presence is the "liked" state.
type Like struct {
	ID        string    `json:"id"         db:"id"`
	PostID    string    `json:"post_id"    db:"post_id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
