// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a member of the feed. There are no credentials: the ID is the only
// proof of identity and is compared verbatim for ownership checks.
//
// AdminDong is derived from (Lat, Lon) by the region resolver every time the
// location changes. When resolution fails it holds the failure sentinel string.
type User struct {
	ID           string    `json:"id"             db:"id"`
	Nickname     string    `json:"nickname"       db:"nickname"` // globally unique
	Lat          float64   `json:"lat"            db:"lat"`
	Lon          float64   `json:"lon"            db:"lon"`
	AdminDong    string    `json:"admin_dong"     db:"admin_dong"`
	LastActiveAt time.Time `json:"last_active_at" db:"last_active_at"`
}
