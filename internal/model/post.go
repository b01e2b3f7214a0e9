package model

import "time"

// Post is a feed entry pinned to the coordinate it was written at.
//
// JSON TAGS:
// Posts are served with snake_case keys (admin_dong, image_url, ...) because
// that is the row shape existing clients read.
//
// AdminDong and UpperAdminDong are stamped once at creation and never
// recomputed: editing a post touches only Title, Content and ImageURL.
//
// Nickname is not a column of posts; it is filled from a join with users on
// every read.
type Post struct {
	ID             string    `json:"id"               db:"id"`
	UserID         string    `json:"user_id"          db:"user_id"`
	Title          string    `json:"title"            db:"title"`
	Content        string    `json:"content"          db:"content"`
	ImageURL       *string   `json:"image_url"        db:"image_url"` // nil when the post has no image
	Lat            float64   `json:"lat"              db:"lat"`
	Lon            float64   `json:"lon"              db:"lon"`
	AdminDong      string    `json:"admin_dong"       db:"admin_dong"`
	UpperAdminDong string    `json:"upper_admin_dong" db:"upper_admin_dong"`
	CreatedAt      time.Time `json:"created_at"       db:"created_at"`
	Nickname       string    `json:"nickname"         db:"nickname"`
}
