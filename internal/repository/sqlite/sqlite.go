// Package sqlite implements the repository interfaces on top of SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, cross-compiles
// like any other Go package. It registers itself with database/sql under the
// driver name "sqlite".
//
// LAYOUT:
// DB owns the connection pool and the schema. Each table gets a small typed
// repository (UserDB, PostDB, CommentDB, LikeDB) sharing that pool:
//
//	db, _ := sqlite.New("data/database.sqlite")
//	users := db.Users()   // implements repository.UserRepository
//	posts := db.Posts()   // implements repository.PostRepository
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlitedrv "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool. Create it once at startup and pass it to
// whoever needs storage; there is no package-level handle.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, applies pragmas and runs migrations.
//
// dbPath examples:
//   - "data/database.sqlite" → file-based database (persistent)
//   - ":memory:"             → in-memory database (tests)
//
// ONE CONNECTION:
// The pool is capped at a single connection. SQLite allows one writer at a
// time anyway, every PRAGMA below then applies to the only connection there
// is, and ":memory:" databases stay one database instead of one per pooled
// connection. Transactions (see LikeDB.Toggle) are serialized as a result.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	// Ping forces a real connection so a bad path fails at startup, not on
	// the first request.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON", // off by default; needed for ON DELETE CASCADE
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable. Used by /healthz.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Users() *UserDB       { return &UserDB{conn: db.conn} }
func (db *DB) Posts() *PostDB       { return &PostDB{conn: db.conn} }
func (db *DB) Comments() *CommentDB { return &CommentDB{conn: db.conn} }
func (db *DB) Likes() *LikeDB       { return &LikeDB{conn: db.conn} }

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id             TEXT PRIMARY KEY,
			nickname       TEXT NOT NULL UNIQUE,
			lat            REAL NOT NULL,
			lon            REAL NOT NULL,
			admin_dong     TEXT NOT NULL DEFAULT '',
			last_active_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL REFERENCES users(id),
			title            TEXT NOT NULL,
			content          TEXT NOT NULL,
			image_url        TEXT,
			lat              REAL NOT NULL,
			lon              REAL NOT NULL,
			admin_dong       TEXT NOT NULL DEFAULT '',
			upper_admin_dong TEXT NOT NULL DEFAULT '',
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_admin_dong ON posts(admin_dong);
		CREATE INDEX IF NOT EXISTS idx_posts_upper_admin_dong ON posts(upper_admin_dong);
		CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	// UNIQUE (post_id, user_id) is what guarantees one like per pair even if
	// two toggles race.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS likes (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (post_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating likes table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		return se.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
