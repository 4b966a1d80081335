package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/marquee/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	SetRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error
	ClearRefreshToken(ctx context.Context, id string) error
	UpdateImage(ctx context.Context, id, image string) (*models.User, error)
}

// AvatarStore lists selectable avatars on the media-asset host
type AvatarStore interface {
	ListFolders(ctx context.Context) ([]models.AvatarFolder, error)
	ListImages(ctx context.Context, folderPath string) ([]models.AvatarImage, error)
}

// ErrAvatarsUnavailable is returned when no asset host is configured
var ErrAvatarsUnavailable = errors.New("avatar host not configured")

// UserService handles avatar listing and profile updates
type UserService struct {
	repo    UserRepository
	avatars AvatarStore
	logger  *slog.Logger
}

// NewUserService creates a new UserService. avatars may be nil.
func NewUserService(repo UserRepository, avatars AvatarStore, logger *slog.Logger) *UserService {
	return &UserService{
		repo:    repo,
		avatars: avatars,
		logger:  logger,
	}
}

// AvatarFolders lists the avatar collections under the configured root
func (s *UserService) AvatarFolders(ctx context.Context) ([]models.AvatarFolder, error) {
	if s.avatars == nil {
		return nil, ErrAvatarsUnavailable
	}

	folders, err := s.avatars.ListFolders(ctx)
	if err != nil {
		s.logger.Error("failed to list avatar folders", slog.Any("error", err))
		return nil, err
	}
	return folders, nil
}

// AvatarImages lists the avatars under folderPath
func (s *UserService) AvatarImages(ctx context.Context, folderPath string) ([]models.AvatarImage, error) {
	if folderPath = strings.TrimSpace(folderPath); folderPath == "" {
		return nil, models.ErrBadRequest
	}
	if s.avatars == nil {
		return nil, ErrAvatarsUnavailable
	}

	images, err := s.avatars.ListImages(ctx, folderPath)
	if err != nil {
		s.logger.Error("failed to list avatars", slog.String("path", folderPath), slog.Any("error", err))
		return nil, err
	}
	return images, nil
}

// UpdateAvatar sets the user's image and returns the updated record
func (s *UserService) UpdateAvatar(ctx context.Context, userID, avatarURL string) (*models.User, error) {
	if avatarURL = strings.TrimSpace(avatarURL); avatarURL == "" {
		return nil, models.ErrBadRequest
	}

	user, err := s.repo.UpdateImage(ctx, userID, avatarURL)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("avatar update for missing user", slog.String("user_id", userID))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update avatar", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("avatar updated", slog.String("user_id", userID))
	return user, nil
}
