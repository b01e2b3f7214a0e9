package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/dongne/internal/apperror"
	"github.com/sakif/dongne/internal/model"
	"github.com/sakif/dongne/internal/repository"
)

// UserService onboards users and keeps their location label current.
type UserService struct {
	users    repository.UserRepository
	resolver RegionResolver
	logger   *slog.Logger
	now      func() time.Time
}

func NewUserService(users repository.UserRepository, resolver RegionResolver, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// Onboard creates a user at (lat, lon) and stamps the fine region label of
// that coordinate onto it.
//
// The nickname is checked before the geocoder is called so a taken name never
// costs a provider request. The UNIQUE column still has the last word if two
// onboardings race for the same name.
func (s *UserService) Onboard(ctx context.Context, nickname string, lat, lon float64) (*model.User, error) {
	nickname, err := validateNickname(nickname)
	if err != nil {
		return nil, err
	}

	taken, err := s.users.NicknameExists(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("checking nickname: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("Nickname already exists. Please choose another.")
	}

	fine := s.resolver.ResolveFine(ctx, lon, lat)

	user := &model.User{
		Nickname:  nickname,
		Lat:       lat,
		Lon:       lon,
		AdminDong: fine.String(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user onboarded",
		slog.String("id", user.ID),
		slog.String("nickname", user.Nickname),
		slog.String("region_status", fine.Status.String()),
	)
	return user, nil
}

// UpdateLocation moves an existing user and re-resolves their fine label.
// It returns the label that was stored.
func (s *UserService) UpdateLocation(ctx context.Context, userID string, lat, lon float64) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", apperror.ValidationFailed("userId", "userId is required")
	}

	// Fail on an unknown id before spending a geocoder call on it.
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return "", err
	}

	fine := s.resolver.ResolveFine(ctx, lon, lat)
	label := fine.String()

	if err := s.users.UpdateLocation(ctx, userID, lat, lon, label, s.now()); err != nil {
		return "", err
	}

	s.logger.Info("user location updated",
		slog.String("id", userID),
		slog.String("region_status", fine.Status.String()),
	)
	return label, nil
}

// CheckNickname reports whether nickname is still free.
func (s *UserService) CheckNickname(ctx context.Context, nickname string) (bool, error) {
	nickname, err := validateNickname(nickname)
	if err != nil {
		return false, err
	}

	taken, err := s.users.NicknameExists(ctx, nickname)
	if err != nil {
		return false, fmt.Errorf("checking nickname: %w", err)
	}
	return !taken, nil
}

func validateNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return "", apperror.ValidationFailed("nickname", "nickname is required")
	}
	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return "", apperror.ValidationFailed("nickname",
			fmt.Sprintf("nickname must be %d characters or less", MaxNicknameLength))
	}
	return nickname, nil
}
