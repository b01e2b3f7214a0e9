package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/dongne/internal/apperror"
	"github.com/sakif/dongne/internal/model"
	"github.com/sakif/dongne/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB stores users.
type UserDB struct {
	conn *sql.DB
}

// Create inserts a user with a fresh random UUID.
//
// The service checks nickname availability first for a friendly error, but the
// UNIQUE constraint is what actually enforces it: a concurrent onboarding that
// slips past the check still ends up here as a Conflict.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.NewString()
	user.LastActiveAt = time.Now().UTC()

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (id, nickname, lat, lon, admin_dong, last_active_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Nickname,
		user.Lat,
		user.Lon,
		user.AdminDong,
		user.LastActiveAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Nickname already exists. Please choose another.")
		}
		return fmt.Errorf("sqlite: creating user %q: %w", user.Nickname, err)
	}

	return nil
}

// GetByID returns apperror.ErrNotFound if no user has that ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User

	err := u.conn.QueryRowContext(ctx,
		`SELECT id, nickname, lat, lon, admin_dong, last_active_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&user.ID,
		&user.Nickname,
		&user.Lat,
		&user.Lon,
		&user.AdminDong,
		&user.LastActiveAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &user, nil
}

func (u *UserDB) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	var exists bool
	err := u.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE nickname = ?)`,
		nickname,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking nickname %q: %w", nickname, err)
	}
	return exists, nil
}

// UpdateLocation overwrites the coordinate, its label and last_active_at.
// Returns apperror.ErrNotFound when no row matched.
func (u *UserDB) UpdateLocation(ctx context.Context, id string, lat, lon float64, adminDong string, at time.Time) error {
	result, err := u.conn.ExecContext(ctx,
		`UPDATE users
		 SET lat = ?, lon = ?, admin_dong = ?, last_active_at = ?
		 WHERE id = ?`,
		lat, lon, adminDong, at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating location of user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}
